package transfers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/repos/transfers"
)

func (r *transfersRepo) Get(ctx context.Context, id string) (ledger.Transfer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)

	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Transfer{}, transfers.ErrTransferNotFound
		}

		return ledger.Transfer{}, fmt.Errorf("get transfer: %w", err)
	}

	return t, nil
}
