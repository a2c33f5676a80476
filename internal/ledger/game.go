package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PartnerGame is one registered game with its fee schedule and four fund pools.
type PartnerGame struct {
	Code          string    `json:"game_code"`
	PartnerOwner  string    `json:"partner_owner"`
	TokenContract string    `json:"token_contract"`
	NftContract   string    `json:"nft_contract"`
	Fees          FeeConfig `json:"fee_config"`
	Blocked       bool      `json:"blocked"`

	HouseFunds     decimal.Decimal `json:"house_funds"`
	PartnerBalance decimal.Decimal `json:"partner_balance"`
	OwnerBalance   decimal.Decimal `json:"owner_balance"`
	NftBalance     decimal.Decimal `json:"nft_balance"`
}

// Total is the value held by the game across all pools.
func (g PartnerGame) Total() decimal.Decimal {
	return g.HouseFunds.Add(g.PartnerBalance).Add(g.OwnerBalance).Add(g.NftBalance)
}

// Pools is the read-only view returned by view_partner_data.
type Pools struct {
	HouseFunds     decimal.Decimal `json:"house_funds"`
	PartnerBalance decimal.Decimal `json:"partner_balance"`
	OwnerBalance   decimal.Decimal `json:"owner_balance"`
	NftBalance     decimal.Decimal `json:"nft_balance"`
}

func (g PartnerGame) Pools() Pools {
	return Pools{
		HouseFunds:     g.HouseFunds,
		PartnerBalance: g.PartnerBalance,
		OwnerBalance:   g.OwnerBalance,
		NftBalance:     g.NftBalance,
	}
}

// NewGame carries the arguments of create_new_partner.
type NewGame struct {
	Code          string    `json:"game_code"`
	PartnerOwner  string    `json:"partner_owner"`
	TokenContract string    `json:"token_contract"`
	NftContract   string    `json:"nft_contract"`
	Fees          FeeConfig `json:"fee_config"`
}

// GameUpdate carries the arguments of alter_partner.
type GameUpdate struct {
	PartnerOwner string    `json:"partner_owner"`
	Blocked      bool      `json:"blocked"`
	Fees         FeeConfig `json:"fee_config"`
}

// Registry maps game codes to games. One game per code, games are never removed.
type Registry struct {
	games map[string]*PartnerGame
}

func newRegistry() *Registry {
	return &Registry{games: make(map[string]*PartnerGame)}
}

func (r *Registry) add(g *PartnerGame) error {
	if _, ok := r.games[g.Code]; ok {
		return ErrDuplicateGame
	}

	r.games[g.Code] = g

	return nil
}

// Lookup returns the live game for code.
func (r *Registry) Lookup(code string) (*PartnerGame, error) {
	g, ok := r.games[code]
	if !ok {
		return nil, ErrGameNotFound
	}

	return g, nil
}

// Codes lists registered game codes in lexical order.
func (r *Registry) Codes() []string {
	out := make([]string, 0, len(r.games))
	for code := range r.games {
		out = append(out, code)
	}

	sort.Strings(out)

	return out
}

func (r *Registry) Len() int { return len(r.games) }
