package credits

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/ledger"
)

func (r *creditsRepo) Upsert(tx *sql.Tx, e ledger.CreditEntry) error {
	_, err := tx.Exec(`
		INSERT INTO credits (token_contract, account_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_contract, account_id) DO UPDATE
		SET balance = EXCLUDED.balance, updated_at = now()
	`, e.Token, e.Account, e.Balance)
	if err != nil {
		return fmt.Errorf("upsert credits: %w", err)
	}

	return nil
}
