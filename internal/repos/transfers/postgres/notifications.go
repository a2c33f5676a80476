package transfers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/repos/transfers"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *transfersRepo) InsertNotification(tx *sql.Tx, notificationID, transferID string) error {
	_, err := tx.Exec(`
		INSERT INTO transfer_notifications (notification_id, transfer_id)
		VALUES ($1, $2)
	`, notificationID, transferID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return transfers.ErrDuplicateNotification
			}
		}

		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

func (r *transfersRepo) GetNotification(ctx context.Context, notificationID string) (string, error) {
	var transferID string

	err := r.db.QueryRowContext(ctx, `
		SELECT transfer_id
		FROM transfer_notifications
		WHERE notification_id = $1
	`, notificationID).Scan(&transferID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", transfers.ErrNotificationNotFound
		}

		return "", fmt.Errorf("get notification: %w", err)
	}

	return transferID, nil
}
