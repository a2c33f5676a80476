package transfers

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/ledger"
)

// Upsert writes a transfer. Only the status of an existing row may change.
func (r *transfersRepo) Upsert(tx *sql.Tx, t ledger.Transfer) error {
	game := sql.NullString{String: t.Game, Valid: t.Game != ""}

	_, err := tx.Exec(`
		INSERT INTO transfers (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, updated_at = now()
	`, t.ID, string(t.Kind), string(t.Status), t.Token, t.Account, game, t.Amount)
	if err != nil {
		return fmt.Errorf("upsert transfer: %w", err)
	}

	return nil
}
