package transfers

import (
	"database/sql"

	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/repos/transfers"
)

var _ transfers.Transfers = (*transfersRepo)(nil)

type transfersRepo struct{ db *sql.DB }

func New(db *sql.DB) *transfersRepo {
	return &transfersRepo{db: db}
}

const transferColumns = `id, kind, status, token_contract, account_id, game_code, amount`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (ledger.Transfer, error) {
	var (
		t    ledger.Transfer
		game sql.NullString
	)

	err := row.Scan(&t.ID, &t.Kind, &t.Status, &t.Token, &t.Account, &game, &t.Amount)
	if err != nil {
		return ledger.Transfer{}, err
	}

	t.Game = game.String

	return t, nil
}
