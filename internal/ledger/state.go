// Package ledger is the wagering ledger: partner game registry, per-token player
// credits, the play algorithm and the two-phase token transfer bookkeeping.
//
// A State is not safe for concurrent use. Callers serialize operations, each of
// which either fully applies or returns an error without touching the state.
package ledger

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Randomness is the external source of play outcomes.
type Randomness interface {
	// Draw returns true with probability num/den.
	Draw(num, den int64) (bool, error)
}

// Meta is the contract-wide configuration set at initialization.
type Meta struct {
	Owner      string `json:"owner_id"`
	NftAccount string `json:"nft_account"`
	Panicked   bool   `json:"panic_button"`
}

// State is the whole contract: one value built once and handed to every operation.
type State struct {
	meta      Meta
	games     *Registry
	credits   *CreditLedger
	transfers map[string]*Transfer
	rng       Randomness
	newID     func() string

	touched changeSet
}

// New initializes an empty contract owned by owner.
func New(owner, nftAccount string, rng Randomness) (*State, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, ErrInvalidAccount.withDetail("owner_id is empty")
	}

	s := newState(Meta{Owner: owner, NftAccount: nftAccount}, rng)
	s.touched.meta = true

	return s, nil
}

func newState(meta Meta, rng Randomness) *State {
	return &State{
		meta:      meta,
		games:     newRegistry(),
		credits:   newCreditLedger(),
		transfers: make(map[string]*Transfer),
		rng:       rng,
		newID:     uuid.NewString,
	}
}

// Restore rebuilds a State from a persisted snapshot.
func Restore(snap Snapshot, rng Randomness) (*State, error) {
	if snap.Meta == nil {
		return nil, ErrNotInitialized
	}

	s := newState(*snap.Meta, rng)

	for i := range snap.Games {
		g := snap.Games[i]
		err := s.games.add(&g)
		if err != nil {
			return nil, err
		}
	}

	for _, e := range snap.Credits {
		s.credits.entries[e.CreditKey] = e.Balance
	}

	for i := range snap.Transfers {
		t := snap.Transfers[i]
		s.transfers[t.ID] = &t
	}

	return s, nil
}

func (s *State) Meta() Meta { return s.meta }

// Games exposes the registry for lookups.
func (s *State) Games() *Registry { return s.games }

// Credits exposes the credit ledger for reads.
func (s *State) Credits() *CreditLedger { return s.credits }

// SetIDGenerator replaces the transfer id source.
func (s *State) SetIDGenerator(fn func() string) { s.newID = fn }

// --- access control ---

func (s *State) IsOwner(account string) bool {
	return account != "" && account == s.meta.Owner
}

func (s *State) IsPartnerOwner(g *PartnerGame, account string) bool {
	return g != nil && account != "" && account == g.PartnerOwner
}

func (s *State) onlyOwner(caller string) error {
	if !s.IsOwner(caller) {
		return ErrNotOwner
	}

	return nil
}

func (s *State) onlyPartnerOwner(g *PartnerGame, caller string) error {
	if !s.IsPartnerOwner(g, caller) {
		return ErrNotPartnerOwner
	}

	return nil
}

func (s *State) assertNotPanicked() error {
	if s.meta.Panicked {
		return ErrPanicMode
	}

	return nil
}

// --- change tracking ---

// Snapshot is a full or partial copy of the state. A full snapshot restores a
// State; a partial one (from Flush) lists what the last operations changed.
type Snapshot struct {
	Meta      *Meta
	Games     []PartnerGame
	Credits   []CreditEntry
	Transfers []Transfer
}

func (s Snapshot) Empty() bool {
	return s.Meta == nil && len(s.Games) == 0 && len(s.Credits) == 0 && len(s.Transfers) == 0
}

type changeSet struct {
	meta      bool
	games     map[string]struct{}
	credits   map[CreditKey]struct{}
	transfers map[string]struct{}
}

func (c *changeSet) game(code string) {
	if c.games == nil {
		c.games = make(map[string]struct{})
	}

	c.games[code] = struct{}{}
}

func (c *changeSet) credit(token, account string) {
	if c.credits == nil {
		c.credits = make(map[CreditKey]struct{})
	}

	c.credits[CreditKey{Token: token, Account: account}] = struct{}{}
}

func (c *changeSet) transfer(id string) {
	if c.transfers == nil {
		c.transfers = make(map[string]struct{})
	}

	c.transfers[id] = struct{}{}
}

// Flush returns copies of everything changed since the previous Flush and resets
// the change set.
func (s *State) Flush() Snapshot {
	var out Snapshot

	if s.touched.meta {
		m := s.meta
		out.Meta = &m
	}

	for code := range s.touched.games {
		out.Games = append(out.Games, *s.games.games[code])
	}
	sort.Slice(out.Games, func(i, j int) bool { return out.Games[i].Code < out.Games[j].Code })

	for key := range s.touched.credits {
		out.Credits = append(out.Credits, CreditEntry{CreditKey: key, Balance: s.credits.entries[key]})
	}
	sort.Slice(out.Credits, func(i, j int) bool {
		if out.Credits[i].Token != out.Credits[j].Token {
			return out.Credits[i].Token < out.Credits[j].Token
		}

		return out.Credits[i].Account < out.Credits[j].Account
	})

	for id := range s.touched.transfers {
		out.Transfers = append(out.Transfers, *s.transfers[id])
	}
	sort.Slice(out.Transfers, func(i, j int) bool { return out.Transfers[i].ID < out.Transfers[j].ID })

	s.touched = changeSet{}

	return out
}

// Snapshot returns a full copy of the state.
func (s *State) Snapshot() Snapshot {
	m := s.meta
	out := Snapshot{Meta: &m}

	for _, code := range s.games.Codes() {
		out.Games = append(out.Games, *s.games.games[code])
	}

	for key, balance := range s.credits.entries {
		out.Credits = append(out.Credits, CreditEntry{CreditKey: key, Balance: balance})
	}

	for _, t := range s.transfers {
		out.Transfers = append(out.Transfers, *t)
	}

	return out
}
