package games

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/ledger"
)

func (r *gamesRepo) Upsert(tx *sql.Tx, g ledger.PartnerGame) error {
	_, err := tx.Exec(`
		INSERT INTO games (`+gameColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (code) DO UPDATE SET
			partner_owner = EXCLUDED.partner_owner,
			blocked = EXCLUDED.blocked,
			partner_fee = EXCLUDED.partner_fee,
			house_fee = EXCLUDED.house_fee,
			owner_fee = EXCLUDED.owner_fee,
			nft_fee = EXCLUDED.nft_fee,
			bet_payment_adjustment = EXCLUDED.bet_payment_adjustment,
			max_bet = EXCLUDED.max_bet,
			min_bet = EXCLUDED.min_bet,
			max_odds = EXCLUDED.max_odds,
			min_odds = EXCLUDED.min_odds,
			house_funds = EXCLUDED.house_funds,
			partner_balance = EXCLUDED.partner_balance,
			owner_balance = EXCLUDED.owner_balance,
			nft_balance = EXCLUDED.nft_balance,
			updated_at = now()
	`,
		g.Code, g.PartnerOwner, g.TokenContract, g.NftContract, g.Blocked,
		g.Fees.PartnerFee, g.Fees.HouseFee, g.Fees.OwnerFee, g.Fees.NftFee, g.Fees.BetPaymentAdjustment,
		g.Fees.MaxBet, g.Fees.MinBet, g.Fees.MaxOdds, g.Fees.MinOdds,
		g.HouseFunds, g.PartnerBalance, g.OwnerBalance, g.NftBalance,
	)
	if err != nil {
		return fmt.Errorf("upsert game: %w", err)
	}

	return nil
}
