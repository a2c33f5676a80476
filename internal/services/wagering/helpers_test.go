package wagering

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/wagerledger/internal/infra/metrics"
	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/token"
)

const (
	ownerID     = "owner.near"
	nftAccount  = "nft-holder.near"
	partnerID   = "partner.near"
	playerID    = "player.near"
	tokenID     = "usdc.near"
	nftContract = "game-nft.near"
)

var errStoreDown = errors.New("store down")

func (m *MemoryStore) failSaves(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

type fakeTokens struct {
	mu   sync.Mutex
	err  error
	reqs []token.TransferRequest
}

func (f *fakeTokens) Transfer(_ context.Context, req token.TransferRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reqs = append(f.reqs, req)

	return f.err
}

func (f *fakeTokens) sent() []token.TransferRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]token.TransferRequest(nil), f.reqs...)
}

type fixedDraw bool

func (d fixedDraw) Draw(int64, int64) (bool, error) { return bool(d), nil }

func amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := ledger.ParseAmount(s, 24)
	require.NoError(t, err)

	return d
}

func requireAmount(t *testing.T, want, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, want.Equal(got), "want %s, got %s", want, got)
}

type fixture struct {
	svc     *Service
	store   *MemoryStore
	tokens  *fakeTokens
	metrics *metrics.Metrics
}

// newFixture returns an initialized service with one registered game.
func newFixture(t *testing.T, rng ledger.Randomness) *fixture {
	t.Helper()

	ctx := context.Background()
	f := &fixture{store: NewMemoryStore(), tokens: &fakeTokens{}, metrics: metrics.New()}
	f.svc = New(f.store, f.tokens, rng, f.metrics)

	require.NoError(t, f.svc.Start(ctx))

	_, err := f.svc.Init(ctx, ownerID, nftAccount)
	require.NoError(t, err)

	_, err = f.svc.RegisterGame(ctx, ownerID, ledger.NewGame{
		PartnerOwner:  partnerID,
		TokenContract: tokenID,
		NftContract:   nftContract,
		Fees: ledger.FeeConfig{
			PartnerFee:           10_000,
			HouseFee:             5_000,
			OwnerFee:             5_000,
			NftFee:               2_000,
			BetPaymentAdjustment: ledger.FractionalBase,
			MinBet:               amount(t, "0.1"),
			MaxBet:               amount(t, "5"),
			MinOdds:              110,
			MaxOdds:              200,
		},
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) deposit(t *testing.T, sender, msg, amt string) ledger.Transfer {
	t.Helper()

	ctx := context.Background()

	unused, tr, err := f.svc.OnTransfer(ctx, InboundTransfer{
		Token:  tokenID,
		Sender: sender,
		Amount: amount(t, amt),
		Msg:    msg,
	})
	require.NoError(t, err)
	require.True(t, unused.IsZero())

	res, err := f.svc.ResolveDeposit(ctx, tr.ID, true)
	require.NoError(t, err)
	require.Equal(t, ledger.StatusConfirmed, res.Status)

	return res
}

const (
	fundMsg    = `{"type":"FundGame","game_id":"` + nftContract + `"}`
	depositMsg = `{"type":"DepositBalance"}`
)
