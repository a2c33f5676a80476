package credits

import (
	"context"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/ledger"
)

func (r *creditsRepo) List(ctx context.Context) ([]ledger.CreditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT token_contract, account_id, balance
		FROM credits
		ORDER BY token_contract, account_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	defer rows.Close()

	var out []ledger.CreditEntry

	for rows.Next() {
		var e ledger.CreditEntry

		err = rows.Scan(&e.Token, &e.Account, &e.Balance)
		if err != nil {
			return nil, fmt.Errorf("scan credit entry: %w", err)
		}

		out = append(out, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate credits: %w", err)
	}

	return out, nil
}
