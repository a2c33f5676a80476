package games

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/repos/games"
)

func (r *gamesRepo) Get(ctx context.Context, code string) (ledger.PartnerGame, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE code = $1`, code)

	g, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.PartnerGame{}, games.ErrGameNotFound
		}

		return ledger.PartnerGame{}, fmt.Errorf("get game: %w", err)
	}

	return g, nil
}
