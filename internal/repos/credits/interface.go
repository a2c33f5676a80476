package credits

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/shopspring/decimal"
)

var ErrEntryNotFound = errors.New("credit entry not found")

type Credits interface {
	List(ctx context.Context) ([]ledger.CreditEntry, error)
	Get(ctx context.Context, token, account string) (decimal.Decimal, error)
	Upsert(tx *sql.Tx, e ledger.CreditEntry) error
}
