package wagering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/token"
)

// InboundTransfer is a transfer-with-message notification from the token collaborator.
type InboundTransfer struct {
	// NotificationID deduplicates redelivered notifications. Optional.
	NotificationID string
	Token          string
	Sender         string
	Amount         decimal.Decimal
	Msg            string
}

// OnTransfer records an inbound transfer as pending. It returns the amount the
// collaborator must refund: the whole amount on refusal, zero otherwise. A
// notification id seen before returns the transfer it created the first time.
func (s *Service) OnTransfer(ctx context.Context, in InboundTransfer) (decimal.Decimal, ledger.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.ready(ctx)
	if err != nil {
		return in.Amount, ledger.Transfer{}, err
	}

	if in.NotificationID != "" {
		id, err := s.store.NotificationTransfer(ctx, in.NotificationID)
		switch {
		case err == nil:
			t, err := st.Transfer(id)
			if err != nil {
				return in.Amount, ledger.Transfer{}, err
			}

			slog.Info("duplicate transfer notification", "notification_id", in.NotificationID, "transfer_id", id)

			return decimal.Zero, t, nil
		case !errors.Is(err, ErrUnknownNotification):
			return in.Amount, ledger.Transfer{}, err
		}
	}

	unused, t, err := st.OnTransfer(in.Token, in.Sender, in.Amount, in.Msg)
	if err != nil {
		s.metrics.Rejected.Inc(1)
		slog.Info("inbound transfer refused", "token_contract", in.Token, "sender_id", in.Sender, "error", err)

		return unused, ledger.Transfer{}, err
	}

	var notes []Notification
	if in.NotificationID != "" {
		notes = append(notes, Notification{ID: in.NotificationID, TransferID: t.ID})
	}

	err = s.persist(ctx, notes...)
	if err != nil {
		return in.Amount, ledger.Transfer{}, err
	}

	s.metrics.Deposits.Inc(1)
	slog.Info("inbound transfer pending",
		"transfer_id", t.ID,
		"kind", t.Kind,
		"sender_id", t.Account,
		"amount", t.Amount.String(),
	)

	return unused, *t, nil
}

// ResolveDeposit applies the collaborator's verdict on an inbound transfer.
func (s *Service) ResolveDeposit(ctx context.Context, id string, success bool) (ledger.Transfer, error) {
	var (
		t      ledger.Transfer
		before ledger.TransferStatus
	)

	err := s.mutate(ctx, func(st *ledger.State) error {
		prev, err := st.Transfer(id)
		if err != nil {
			return err
		}

		before = prev.Status

		t, err = st.ResolveDeposit(id, success)

		return err
	})
	if err != nil {
		return ledger.Transfer{}, err
	}

	if before == ledger.StatusPending {
		s.countResolution(t)
		slog.Info("deposit resolved", "transfer_id", id, "status", t.Status)
	}

	return t, nil
}

func (s *Service) RetrieveCredits(ctx context.Context, caller, tokenContract string, amount decimal.Decimal) (ledger.Transfer, error) {
	return s.withdraw(ctx, func(st *ledger.State) (*ledger.Transfer, error) {
		return st.RetrieveCredits(caller, tokenContract, amount)
	})
}

func (s *Service) RetrievePartnerBalance(ctx context.Context, caller, code string) (ledger.Transfer, error) {
	return s.withdraw(ctx, func(st *ledger.State) (*ledger.Transfer, error) {
		return st.RetrievePartnerBalance(caller, code)
	})
}

func (s *Service) RetrieveHouseFunds(ctx context.Context, caller, code string, amount decimal.Decimal) (ledger.Transfer, error) {
	return s.withdraw(ctx, func(st *ledger.State) (*ledger.Transfer, error) {
		return st.RetrieveHouseFunds(caller, code, amount)
	})
}

func (s *Service) RetrieveOwnerFunds(ctx context.Context, caller, code string) (ledger.Transfer, error) {
	return s.withdraw(ctx, func(st *ledger.State) (*ledger.Transfer, error) {
		return st.RetrieveOwnerFunds(caller, code)
	})
}

func (s *Service) RetrieveNftFunds(ctx context.Context, caller, code string) (ledger.Transfer, error) {
	return s.withdraw(ctx, func(st *ledger.State) (*ledger.Transfer, error) {
		return st.RetrieveNftFunds(caller, code)
	})
}

// withdraw debits the source, persists the pending transfer and then sends the
// tokens. The returned transfer is Confirmed, or Compensated together with
// ledger.ErrTransferFailed.
func (s *Service) withdraw(ctx context.Context, fn func(st *ledger.State) (*ledger.Transfer, error)) (ledger.Transfer, error) {
	var t *ledger.Transfer

	err := s.mutate(ctx, func(st *ledger.State) error {
		var err error

		t, err = fn(st)
		if err != nil {
			return err
		}

		s.dispatching[t.ID] = struct{}{}

		return nil
	})
	if err != nil {
		if t != nil {
			s.release(t.ID)
		}

		return ledger.Transfer{}, err
	}

	s.metrics.Withdrawals.Inc(1)
	slog.Info("withdrawal pending",
		"transfer_id", t.ID,
		"kind", t.Kind,
		"receiver_id", t.Account,
		"amount", t.Amount.String(),
	)

	return s.dispatch(context.WithoutCancel(ctx), *t)
}

// dispatch sends one pending withdrawal and records the outcome. The transfer id
// must already be in s.dispatching.
func (s *Service) dispatch(ctx context.Context, t ledger.Transfer) (ledger.Transfer, error) {
	s.inflight.Add(1)
	defer s.inflight.Done()
	defer s.release(t.ID)

	start := time.Now()
	callErr := s.tokens.Transfer(ctx, token.TransferRequest{
		RequestID: t.ID,
		Token:     t.Token,
		Receiver:  t.Account,
		Amount:    t.Amount,
		Memo:      string(t.Kind),
	})
	s.metrics.TransferLatency.UpdateSince(start)

	var res ledger.Transfer

	err := s.mutate(ctx, func(st *ledger.State) error {
		var err error
		res, err = st.ResolveTransfer(t.ID, callErr == nil)

		return err
	})
	if err != nil {
		slog.Error("resolve withdrawal", "transfer_id", t.ID, "transfer_error", callErr, "error", err)

		return t, fmt.Errorf("resolve withdrawal %s: %w", t.ID, err)
	}

	s.countResolution(res)

	if callErr != nil {
		slog.Warn("withdrawal compensated", "transfer_id", t.ID, "receiver_id", t.Account, "error", callErr)

		return res, fmt.Errorf("%w: %v", ledger.ErrTransferFailed, callErr)
	}

	slog.Info("withdrawal confirmed", "transfer_id", t.ID, "receiver_id", t.Account)

	return res, nil
}

func (s *Service) release(id string) {
	s.mu.Lock()
	delete(s.dispatching, id)
	s.mu.Unlock()
}

func (s *Service) countResolution(t ledger.Transfer) {
	switch t.Status {
	case ledger.StatusConfirmed:
		s.metrics.Confirmed.Inc(1)
	case ledger.StatusCompensated:
		s.metrics.Compensated.Inc(1)
	}
}

// ResumePending sends every persisted withdrawal that is still pending and not
// already being sent, and returns how many it resolved.
func (s *Service) ResumePending(ctx context.Context) int {
	s.mu.Lock()

	st, err := s.ready(ctx)
	if err != nil {
		s.mu.Unlock()

		if !errors.Is(err, ledger.ErrNotInitialized) {
			slog.Error("resume pending withdrawals", "error", err)
		}

		return 0
	}

	var todo []ledger.Transfer

	for _, t := range st.PendingWithdrawals() {
		if _, busy := s.dispatching[t.ID]; busy {
			continue
		}

		s.dispatching[t.ID] = struct{}{}
		todo = append(todo, t)
	}

	s.mu.Unlock()

	resolved := 0

	for i, t := range todo {
		if ctx.Err() != nil {
			for _, rest := range todo[i:] {
				s.release(rest.ID)
			}

			break
		}

		_, err := s.dispatch(context.WithoutCancel(ctx), t)
		if err == nil || errors.Is(err, ledger.ErrTransferFailed) {
			resolved++
		}
	}

	if len(todo) > 0 {
		slog.Info("resumed pending withdrawals", "found", len(todo), "resolved", resolved)
	}

	return resolved
}

// RunResumer calls ResumePending every interval until ctx is done.
func (s *Service) RunResumer(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.ResumePending(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
