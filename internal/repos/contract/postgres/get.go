package contract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/repos/contract"
)

func (r *contractRepo) Get(ctx context.Context) (ledger.Meta, error) {
	var meta ledger.Meta

	err := r.db.QueryRowContext(ctx, `
		SELECT owner_id, nft_account, panicked
		FROM contract_meta
		WHERE id = 1
	`).Scan(&meta.Owner, &meta.NftAccount, &meta.Panicked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Meta{}, contract.ErrNotInitialized
		}

		return ledger.Meta{}, fmt.Errorf("get contract meta: %w", err)
	}

	return meta, nil
}
