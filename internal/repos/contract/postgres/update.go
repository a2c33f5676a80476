package contract

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/repos/contract"
)

func (r *contractRepo) Update(tx *sql.Tx, meta ledger.Meta) error {
	res, err := tx.Exec(`
		UPDATE contract_meta
		SET owner_id = $1, nft_account = $2, panicked = $3, updated_at = now()
		WHERE id = 1
	`, meta.Owner, meta.NftAccount, meta.Panicked)
	if err != nil {
		return fmt.Errorf("update contract meta: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return contract.ErrNotInitialized
	}

	return nil
}
