package contract

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/repos/contract"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *contractRepo) Insert(tx *sql.Tx, meta ledger.Meta) error {
	_, err := tx.Exec(`
		INSERT INTO contract_meta (id, owner_id, nft_account, panicked)
		VALUES (1, $1, $2, $3)
	`, meta.Owner, meta.NftAccount, meta.Panicked)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return contract.ErrAlreadyInitialized
			}
		}

		return fmt.Errorf("insert contract meta: %w", err)
	}

	return nil
}
