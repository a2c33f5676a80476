package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Outcome is the result of one play. It is not stored.
type Outcome struct {
	Game        string          `json:"game_code"`
	BetSize     decimal.Decimal `json:"bet_size"`
	Odds        int64           `json:"odds"`
	BetType     string          `json:"bet_type,omitempty"`
	Won         bool            `json:"won"`
	PossibleWin decimal.Decimal `json:"possible_win"`
	Payout      decimal.Decimal `json:"payout"`
	Credits     decimal.Decimal `json:"credits"`
	Pools       Pools           `json:"pools"`
}

// Play places a bet of betSize credits at odds on the game. betType is an opaque
// tag for indexers and has no effect.
//
// A win returns the stake plus possibleWin out of house funds. A loss splits the
// stake between the partner, owner and nft pools, with the rest going to the house.
func (s *State) Play(caller, code string, betSize decimal.Decimal, odds int64, betType string) (*Outcome, error) {
	err := s.assertNotPanicked()
	if err != nil {
		return nil, err
	}

	g, err := s.games.Lookup(code)
	if err != nil {
		return nil, err
	}

	if g.Blocked {
		return nil, ErrGameBlocked
	}

	fees := g.Fees

	if !validAmount(betSize) || betSize.LessThan(fees.MinBet) || betSize.GreaterThan(fees.MaxBet) {
		return nil, ErrBetOutOfRange.withDetail("Minimum is %s, maximum is %s", fees.MinBet, fees.MaxBet)
	}

	if odds < fees.MinOdds || odds > fees.MaxOdds {
		return nil, ErrOddsOutOfRange.withDetail("Minimum is %d, maximum is %d", fees.MinOdds, fees.MaxOdds)
	}

	if s.credits.available(g.TokenContract, caller).LessThan(betSize) {
		return nil, ErrInsufficientCredit
	}

	possibleWin := fees.possibleWin(betSize, odds)
	if g.HouseFunds.LessThan(possibleWin) {
		return nil, ErrHouseFunds
	}

	won, err := s.rng.Draw(OddsBase, odds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomness, err)
	}

	// The credit entry moves by the net result; pools are only touched once it has.
	switch {
	case won && possibleWin.IsPositive():
		err = s.credits.Credit(g.TokenContract, caller, possibleWin)
	case !won:
		err = s.credits.Debit(g.TokenContract, caller, betSize)
	}

	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Game:        code,
		BetSize:     betSize,
		Odds:        odds,
		BetType:     betType,
		Won:         won,
		PossibleWin: possibleWin,
		Payout:      decimal.Zero,
	}

	if won {
		out.Payout = betSize.Add(possibleWin)
		g.HouseFunds = g.HouseFunds.Sub(possibleWin)
	} else {
		partner, owner, nft, house := fees.split(betSize)
		g.PartnerBalance = g.PartnerBalance.Add(partner)
		g.OwnerBalance = g.OwnerBalance.Add(owner)
		g.NftBalance = g.NftBalance.Add(nft)
		g.HouseFunds = g.HouseFunds.Add(house)
	}

	s.touched.game(code)
	s.touched.credit(g.TokenContract, caller)

	out.Credits = s.credits.available(g.TokenContract, caller)
	out.Pools = g.Pools()

	return out, nil
}
