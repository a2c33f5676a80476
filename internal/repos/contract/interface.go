package contract

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fastprodman/wagerledger/internal/ledger"
)

var ErrNotInitialized = errors.New("contract not initialized")
var ErrAlreadyInitialized = errors.New("contract already initialized")

// Contract stores the single contract_meta row.
type Contract interface {
	Get(ctx context.Context) (ledger.Meta, error)
	Insert(tx *sql.Tx, meta ledger.Meta) error
	Update(tx *sql.Tx, meta ledger.Meta) error
}
