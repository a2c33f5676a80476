package games

import (
	"context"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/ledger"
)

func (r *gamesRepo) List(ctx context.Context) ([]ledger.PartnerGame, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []ledger.PartnerGame

	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}

		out = append(out, g)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}

	return out, nil
}
