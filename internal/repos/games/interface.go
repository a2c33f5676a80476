package games

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fastprodman/wagerledger/internal/ledger"
)

var ErrGameNotFound = errors.New("game not found")

type Games interface {
	List(ctx context.Context) ([]ledger.PartnerGame, error)
	Get(ctx context.Context, code string) (ledger.PartnerGame, error)
	Upsert(tx *sql.Tx, g ledger.PartnerGame) error
}
