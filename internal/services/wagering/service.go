// Package wagering serializes ledger operations, persists what each of them
// changed and drives outbound token transfers to completion.
package wagering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fastprodman/wagerledger/internal/infra/metrics"
	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/token"
)

// TokenClient sends tokens from the contract to an account.
type TokenClient interface {
	Transfer(ctx context.Context, req token.TransferRequest) error
}

type Service struct {
	mu    sync.Mutex
	state *ledger.State
	stale bool

	// withdrawals currently being sent, keyed by transfer id
	dispatching map[string]struct{}
	inflight    sync.WaitGroup

	store   Store
	tokens  TokenClient
	rng     ledger.Randomness
	metrics *metrics.Metrics
}

func New(store Store, tokens TokenClient, rng ledger.Randomness, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.New()
	}

	return &Service{
		dispatching: make(map[string]struct{}),
		store:       store,
		tokens:      tokens,
		rng:         rng,
		metrics:     m,
	}
}

// Start loads the persisted ledger. A store that was never initialized is not an error.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reload(ctx)
}

// Init creates the contract. It fails with ledger.ErrAlreadyInitialized if one exists.
func (s *Service) Init(ctx context.Context, owner, nftAccount string) (ledger.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale {
		err := s.reload(ctx)
		if err != nil {
			return ledger.Meta{}, err
		}
	}

	if s.state != nil {
		return ledger.Meta{}, ledger.ErrAlreadyInitialized
	}

	st, err := ledger.New(owner, nftAccount, s.rng)
	if err != nil {
		return ledger.Meta{}, err
	}

	err = s.store.Init(ctx, st.Flush())
	if err != nil {
		return ledger.Meta{}, err
	}

	s.state = st

	slog.Info("contract initialized", "owner_id", owner, "nft_account", nftAccount)

	return st.Meta(), nil
}

// Wait blocks until every in-flight withdrawal has been resolved.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// reload replaces the in-memory state with the persisted one. Caller holds mu.
func (s *Service) reload(ctx context.Context) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, ledger.ErrNotInitialized) {
			s.state = nil
			s.stale = false

			return nil
		}

		return fmt.Errorf("load ledger: %w", err)
	}

	st, err := ledger.Restore(snap, s.rng)
	if err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}

	s.state = st
	s.stale = false

	slog.Info("ledger loaded",
		"games", st.Games().Len(),
		"pending_withdrawals", len(st.PendingWithdrawals()),
	)

	return nil
}

// ready returns the live state. Caller holds mu.
func (s *Service) ready(ctx context.Context) (*ledger.State, error) {
	if s.stale {
		err := s.reload(ctx)
		if err != nil {
			return nil, err
		}
	}

	if s.state == nil {
		return nil, ledger.ErrNotInitialized
	}

	return s.state, nil
}

// persist saves whatever the last operation touched. A failed write leaves the
// in-memory state ahead of the store, so it is dropped and reloaded on next use.
// Caller holds mu.
func (s *Service) persist(ctx context.Context, notes ...Notification) error {
	snap := s.state.Flush()
	if snap.Empty() && len(notes) == 0 {
		return nil
	}

	err := s.store.Save(context.WithoutCancel(ctx), snap, notes...)
	if err != nil {
		s.stale = true
		slog.Error("persist ledger", "error", err)

		return fmt.Errorf("persist ledger: %w", err)
	}

	return nil
}

func (s *Service) read(ctx context.Context, fn func(st *ledger.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.ready(ctx)
	if err != nil {
		return err
	}

	return fn(st)
}

func (s *Service) mutate(ctx context.Context, fn func(st *ledger.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.ready(ctx)
	if err != nil {
		return err
	}

	err = fn(st)
	if err != nil {
		return err
	}

	return s.persist(ctx)
}
