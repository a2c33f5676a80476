package transfers

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fastprodman/wagerledger/internal/ledger"
)

var ErrTransferNotFound = errors.New("transfer not found")
var ErrDuplicateNotification = errors.New("duplicate notification")
var ErrNotificationNotFound = errors.New("notification not found")

type Transfers interface {
	List(ctx context.Context) ([]ledger.Transfer, error)
	Get(ctx context.Context, id string) (ledger.Transfer, error)
	Upsert(tx *sql.Tx, t ledger.Transfer) error

	// InsertNotification remembers that an inbound notification produced transferID.
	InsertNotification(tx *sql.Tx, notificationID, transferID string) error
	GetNotification(ctx context.Context, notificationID string) (string, error)
}
