package ledger

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	ownerID     = "owner.near"
	nftAccount  = "nft-holder.near"
	partnerID   = "partner.near"
	playerID    = "player.near"
	tokenID     = "usdc.near"
	nftContract = "game-nft.near"
	tokenDec    = 24
)

// scriptedDraw returns queued outcomes in order and repeats the last one.
type scriptedDraw struct {
	outcomes []bool
	err      error
	calls    int
	lastNum  int64
	lastDen  int64
}

func (d *scriptedDraw) Draw(num, den int64) (bool, error) {
	d.calls++
	d.lastNum, d.lastDen = num, den

	if d.err != nil {
		return false, d.err
	}

	if len(d.outcomes) == 0 {
		return false, nil
	}

	i := d.calls - 1
	if i >= len(d.outcomes) {
		i = len(d.outcomes) - 1
	}

	return d.outcomes[i], nil
}

func tokens(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := ParseAmount(s, tokenDec)
	require.NoError(t, err)

	return d
}

func requireAmount(t *testing.T, want, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, want.Equal(got), "want %s, got %s %v", want, got, fmt.Sprint(msgAndArgs...))
}

func testFees(t *testing.T) FeeConfig {
	return FeeConfig{
		PartnerFee:           10_000,
		HouseFee:             5_000,
		OwnerFee:             5_000,
		NftFee:               2_000,
		BetPaymentAdjustment: FractionalBase,
		MinBet:               tokens(t, "0.1"),
		MaxBet:               tokens(t, "5"),
		MinOdds:              110,
		MaxOdds:              200,
	}
}

// newTestState builds a contract with one registered game and a counter based id source.
func newTestState(t *testing.T, rng Randomness) *State {
	t.Helper()

	s, err := New(ownerID, nftAccount, rng)
	require.NoError(t, err)

	n := 0
	s.SetIDGenerator(func() string {
		n++
		return fmt.Sprintf("tr-%03d", n)
	})

	_, err = s.RegisterGame(ownerID, NewGame{
		PartnerOwner:  partnerID,
		TokenContract: tokenID,
		NftContract:   nftContract,
		Fees:          testFees(t),
	})
	require.NoError(t, err)

	return s
}

func fundGame(t *testing.T, s *State, amount decimal.Decimal) {
	t.Helper()

	unused, tr, err := s.OnTransfer(tokenID, partnerID, amount, `{"type":"FundGame","game_id":"`+nftContract+`"}`)
	require.NoError(t, err)
	require.True(t, unused.IsZero())

	_, err = s.ResolveTransfer(tr.ID, true)
	require.NoError(t, err)
}

func depositCredits(t *testing.T, s *State, account string, amount decimal.Decimal) {
	t.Helper()

	unused, tr, err := s.OnTransfer(tokenID, account, amount, `{"type":"DepositBalance"}`)
	require.NoError(t, err)
	require.True(t, unused.IsZero())

	_, err = s.ResolveTransfer(tr.ID, true)
	require.NoError(t, err)
}

func game(t *testing.T, s *State) PartnerGame {
	t.Helper()

	g, err := s.ViewPartnerData(nftContract)
	require.NoError(t, err)

	return g
}
