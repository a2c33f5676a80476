package ledger

import "github.com/shopspring/decimal"

const (
	// FractionalBase is 100% for fee fractions and the bet payment adjustment.
	FractionalBase int64 = 100_000

	// OddsBase is even money on the odds scale: 100 = 1.00x, 128 = 1.28x.
	OddsBase int64 = 100
)

// FeeConfig is the per-game fee schedule and bet/odds bounds.
//
// Fee fractions arrive as strings on the wire, the same way the token amounts do.
type FeeConfig struct {
	PartnerFee           int64           `json:"partner_fee,string"`
	HouseFee             int64           `json:"house_fee,string"`
	OwnerFee             int64           `json:"owner_fee,string"`
	NftFee               int64           `json:"nft_fee,string"`
	BetPaymentAdjustment int64           `json:"bet_payment_adjustment,string"`
	MaxBet               decimal.Decimal `json:"max_bet"`
	MinBet               decimal.Decimal `json:"min_bet"`
	MaxOdds              int64           `json:"max_odds"`
	MinOdds              int64           `json:"min_odds"`
}

// Validate checks the fee schedule invariants. Every failure is ErrInvalidFeeConfig
// with a detail naming the broken rule.
func (f FeeConfig) Validate() error {
	fees := []struct {
		name  string
		value int64
	}{
		{"partner_fee", f.PartnerFee},
		{"house_fee", f.HouseFee},
		{"owner_fee", f.OwnerFee},
		{"nft_fee", f.NftFee},
		{"bet_payment_adjustment", f.BetPaymentAdjustment},
	}
	for _, fee := range fees {
		if fee.value < 0 || fee.value > FractionalBase {
			return ErrInvalidFeeConfig.withDetail("%s must be within [0, %d]", fee.name, FractionalBase)
		}
	}

	if f.PartnerFee+f.HouseFee+f.OwnerFee+f.NftFee > FractionalBase {
		return ErrInvalidFeeConfig.withDetail("fees add up to more than %d", FractionalBase)
	}

	if f.MinBet.IsNegative() || !f.MinBet.IsInteger() || !f.MaxBet.IsInteger() {
		return ErrInvalidFeeConfig.withDetail("bet bounds must be whole token units")
	}

	if f.MaxBet.LessThan(f.MinBet) {
		return ErrInvalidFeeConfig.withDetail("max_bet must be greater than min_bet")
	}

	if f.MinOdds < OddsBase {
		return ErrInvalidFeeConfig.withDetail("min_odds must be at least %d", OddsBase)
	}

	if f.MaxOdds < f.MinOdds {
		return ErrInvalidFeeConfig.withDetail("max_odds must be greater than min_odds")
	}

	return nil
}

// split divides a lost stake between the pools. House gets the remainder of the
// floored cuts, so the four parts always add up to stake exactly.
func (f FeeConfig) split(stake decimal.Decimal) (partner, owner, nft, house decimal.Decimal) {
	partner = fraction(stake, f.PartnerFee, FractionalBase)
	owner = fraction(stake, f.OwnerFee, FractionalBase)
	nft = fraction(stake, f.NftFee, FractionalBase)
	house = stake.Sub(partner).Sub(owner).Sub(nft)

	return partner, owner, nft, house
}

// possibleWin is the net amount owed to a winning player:
// floor(bet * (odds - OddsBase) / OddsBase * adjustment / FractionalBase).
func (f FeeConfig) possibleWin(bet decimal.Decimal, odds int64) decimal.Decimal {
	gross := bet.Mul(decimal.NewFromInt(odds - OddsBase)).Mul(decimal.NewFromInt(f.BetPaymentAdjustment))
	q, _ := gross.QuoRem(decimal.NewFromInt(OddsBase*FractionalBase), 0)

	return q
}
