package credits

import (
	"database/sql"

	"github.com/fastprodman/wagerledger/internal/repos/credits"
)

var _ credits.Credits = (*creditsRepo)(nil)

type creditsRepo struct{ db *sql.DB }

func New(db *sql.DB) *creditsRepo {
	return &creditsRepo{db: db}
}
