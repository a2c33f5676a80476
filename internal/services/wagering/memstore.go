package wagering

import (
	"context"
	"sync"

	"github.com/fastprodman/wagerledger/internal/ledger"
)

// MemoryStore keeps the persisted rows in maps. It backs LEDGER_STORE=memory and tests.
type MemoryStore struct {
	mu        sync.Mutex
	meta      *ledger.Meta
	games     map[string]ledger.PartnerGame
	credits   map[ledger.CreditKey]ledger.CreditEntry
	transfers map[string]ledger.Transfer
	notes     map[string]string
	saveErr   error
	saves     int
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:     make(map[string]ledger.PartnerGame),
		credits:   make(map[ledger.CreditKey]ledger.CreditEntry),
		transfers: make(map[string]ledger.Transfer),
		notes:     make(map[string]string),
	}
}

func (m *MemoryStore) Load(context.Context) (ledger.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.meta == nil {
		return ledger.Snapshot{}, ledger.ErrNotInitialized
	}

	meta := *m.meta
	snap := ledger.Snapshot{Meta: &meta}

	for _, g := range m.games {
		snap.Games = append(snap.Games, g)
	}

	for _, e := range m.credits {
		snap.Credits = append(snap.Credits, e)
	}

	for _, t := range m.transfers {
		snap.Transfers = append(snap.Transfers, t)
	}

	return snap, nil
}

func (m *MemoryStore) Init(_ context.Context, snap ledger.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.meta != nil {
		return ledger.ErrAlreadyInitialized
	}

	m.apply(snap, nil)

	return nil
}

func (m *MemoryStore) Save(_ context.Context, snap ledger.Snapshot, notes ...Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}

	m.saves++
	m.apply(snap, notes)

	return nil
}

func (m *MemoryStore) apply(snap ledger.Snapshot, notes []Notification) {
	if snap.Meta != nil {
		meta := *snap.Meta
		m.meta = &meta
	}

	for _, g := range snap.Games {
		m.games[g.Code] = g
	}

	for _, e := range snap.Credits {
		m.credits[e.CreditKey] = e
	}

	for _, t := range snap.Transfers {
		m.transfers[t.ID] = t
	}

	for _, n := range notes {
		m.notes[n.ID] = n.TransferID
	}
}

func (m *MemoryStore) NotificationTransfer(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tid, ok := m.notes[id]
	if !ok {
		return "", ErrUnknownNotification
	}

	return tid, nil
}

