package transfers

import (
	"context"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/ledger"
)

func (r *transfersRepo) List(ctx context.Context) ([]ledger.Transfer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+transferColumns+` FROM transfers ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var out []ledger.Transfer

	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}

		out = append(out, t)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}

	return out, nil
}
