package credits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/repos/credits"
	"github.com/shopspring/decimal"
)

func (r *creditsRepo) Get(ctx context.Context, token, account string) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := r.db.QueryRowContext(ctx, `
		SELECT balance
		FROM credits
		WHERE token_contract = $1 AND account_id = $2
	`, token, account).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, credits.ErrEntryNotFound
		}

		return decimal.Zero, fmt.Errorf("get credits: %w", err)
	}

	return balance, nil
}
