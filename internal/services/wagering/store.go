package wagering

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/repos/contract"
	pgcontract "github.com/fastprodman/wagerledger/internal/repos/contract/postgres"
	"github.com/fastprodman/wagerledger/internal/repos/credits"
	pgcredits "github.com/fastprodman/wagerledger/internal/repos/credits/postgres"
	"github.com/fastprodman/wagerledger/internal/repos/games"
	pggames "github.com/fastprodman/wagerledger/internal/repos/games/postgres"
	"github.com/fastprodman/wagerledger/internal/repos/transfers"
	pgtransfers "github.com/fastprodman/wagerledger/internal/repos/transfers/postgres"
)

var ErrUnknownNotification = errors.New("unknown notification")

// Notification links an inbound transfer notification id to the transfer it created.
type Notification struct {
	ID         string
	TransferID string
}

// Store persists ledger snapshots.
type Store interface {
	// Load returns the full state or ledger.ErrNotInitialized.
	Load(ctx context.Context) (ledger.Snapshot, error)
	// Init writes the first snapshot or fails with ledger.ErrAlreadyInitialized.
	Init(ctx context.Context, snap ledger.Snapshot) error
	// Save writes a partial snapshot and notifications atomically.
	Save(ctx context.Context, snap ledger.Snapshot, notes ...Notification) error
	// NotificationTransfer returns the transfer id recorded for a notification or
	// ErrUnknownNotification.
	NotificationTransfer(ctx context.Context, notificationID string) (string, error)
}

type PostgresStore struct {
	db        *sql.DB
	contract  contract.Contract
	games     games.Games
	credits   credits.Credits
	transfers transfers.Transfers
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:        db,
		contract:  pgcontract.New(db),
		games:     pggames.New(db),
		credits:   pgcredits.New(db),
		transfers: pgtransfers.New(db),
	}
}

func (p *PostgresStore) Load(ctx context.Context) (ledger.Snapshot, error) {
	meta, err := p.contract.Get(ctx)
	if err != nil {
		if errors.Is(err, contract.ErrNotInitialized) {
			return ledger.Snapshot{}, ledger.ErrNotInitialized
		}

		return ledger.Snapshot{}, fmt.Errorf("load meta: %w", err)
	}

	gs, err := p.games.List(ctx)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("load games: %w", err)
	}

	cs, err := p.credits.List(ctx)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("load credits: %w", err)
	}

	ts, err := p.transfers.List(ctx)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("load transfers: %w", err)
	}

	return ledger.Snapshot{Meta: &meta, Games: gs, Credits: cs, Transfers: ts}, nil
}

func (p *PostgresStore) Init(ctx context.Context, snap ledger.Snapshot) error {
	if snap.Meta == nil {
		return ledger.ErrNotInitialized
	}

	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	err := pgutils.WithTxOptions(ctx, p.db, opts, func(tx *sql.Tx) error {
		err := p.contract.Insert(tx, *snap.Meta)
		if err != nil {
			if errors.Is(err, contract.ErrAlreadyInitialized) {
				return ledger.ErrAlreadyInitialized
			}

			return fmt.Errorf("insert meta: %w", err)
		}

		rest := snap
		rest.Meta = nil

		return p.write(tx, rest, nil)
	})
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}

	return nil
}

func (p *PostgresStore) Save(ctx context.Context, snap ledger.Snapshot, notes ...Notification) error {
	err := pgutils.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		return p.write(tx, snap, notes)
	})
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	return nil
}

// write applies rows in foreign key order: games before the transfers that name them.
func (p *PostgresStore) write(tx *sql.Tx, snap ledger.Snapshot, notes []Notification) error {
	if snap.Meta != nil {
		err := p.contract.Update(tx, *snap.Meta)
		if err != nil {
			return fmt.Errorf("update meta: %w", err)
		}
	}

	for _, g := range snap.Games {
		err := p.games.Upsert(tx, g)
		if err != nil {
			return fmt.Errorf("game %s: %w", g.Code, err)
		}
	}

	for _, e := range snap.Credits {
		err := p.credits.Upsert(tx, e)
		if err != nil {
			return fmt.Errorf("credits %s/%s: %w", e.Token, e.Account, err)
		}
	}

	for _, t := range snap.Transfers {
		err := p.transfers.Upsert(tx, t)
		if err != nil {
			return fmt.Errorf("transfer %s: %w", t.ID, err)
		}
	}

	for _, n := range notes {
		err := p.transfers.InsertNotification(tx, n.ID, n.TransferID)
		if err != nil {
			return fmt.Errorf("notification %s: %w", n.ID, err)
		}
	}

	return nil
}

func (p *PostgresStore) NotificationTransfer(ctx context.Context, notificationID string) (string, error) {
	id, err := p.transfers.GetNotification(ctx, notificationID)
	if err != nil {
		if errors.Is(err, transfers.ErrNotificationNotFound) {
			return "", ErrUnknownNotification
		}

		return "", fmt.Errorf("lookup notification: %w", err)
	}

	return id, nil
}
