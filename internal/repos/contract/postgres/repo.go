package contract

import (
	"database/sql"

	"github.com/fastprodman/wagerledger/internal/repos/contract"
)

var _ contract.Contract = (*contractRepo)(nil)

type contractRepo struct{ db *sql.DB }

func New(db *sql.DB) *contractRepo {
	return &contractRepo{db: db}
}
