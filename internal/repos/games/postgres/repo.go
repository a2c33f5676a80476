package games

import (
	"database/sql"

	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/repos/games"
)

var _ games.Games = (*gamesRepo)(nil)

type gamesRepo struct{ db *sql.DB }

func New(db *sql.DB) *gamesRepo {
	return &gamesRepo{db: db}
}

const gameColumns = `
	code, partner_owner, token_contract, nft_contract, blocked,
	partner_fee, house_fee, owner_fee, nft_fee, bet_payment_adjustment,
	max_bet, min_bet, max_odds, min_odds,
	house_funds, partner_balance, owner_balance, nft_balance`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (ledger.PartnerGame, error) {
	var g ledger.PartnerGame

	err := row.Scan(
		&g.Code, &g.PartnerOwner, &g.TokenContract, &g.NftContract, &g.Blocked,
		&g.Fees.PartnerFee, &g.Fees.HouseFee, &g.Fees.OwnerFee, &g.Fees.NftFee, &g.Fees.BetPaymentAdjustment,
		&g.Fees.MaxBet, &g.Fees.MinBet, &g.Fees.MaxOdds, &g.Fees.MinOdds,
		&g.HouseFunds, &g.PartnerBalance, &g.OwnerBalance, &g.NftBalance,
	)

	return g, err
}
