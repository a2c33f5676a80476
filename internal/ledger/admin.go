package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RegisterGame is create_new_partner. The game code defaults to the NFT contract id.
func (s *State) RegisterGame(caller string, req NewGame) (*PartnerGame, error) {
	err := s.onlyOwner(caller)
	if err != nil {
		return nil, err
	}

	code := req.Code
	if code == "" {
		code = req.NftContract
	}

	if strings.TrimSpace(code) == "" {
		return nil, ErrInvalidAccount.withDetail("game code is empty")
	}

	if req.PartnerOwner == "" || req.TokenContract == "" {
		return nil, ErrInvalidAccount.withDetail("partner_owner and token_contract are required")
	}

	if _, err := s.games.Lookup(code); err == nil {
		return nil, ErrDuplicateGame
	}

	err = req.Fees.Validate()
	if err != nil {
		return nil, err
	}

	g := &PartnerGame{
		Code:           code,
		PartnerOwner:   req.PartnerOwner,
		TokenContract:  req.TokenContract,
		NftContract:    req.NftContract,
		Fees:           req.Fees,
		HouseFunds:     decimal.Zero,
		PartnerBalance: decimal.Zero,
		OwnerBalance:   decimal.Zero,
		NftBalance:     decimal.Zero,
	}

	err = s.games.add(g)
	if err != nil {
		return nil, err
	}

	s.touched.game(code)

	return g, nil
}

// AlterPartner rewrites a game's partner owner, blocked flag and fee schedule.
// Pools are left alone.
func (s *State) AlterPartner(caller, code string, upd GameUpdate) (*PartnerGame, error) {
	err := s.onlyOwner(caller)
	if err != nil {
		return nil, err
	}

	g, err := s.games.Lookup(code)
	if err != nil {
		return nil, err
	}

	if upd.PartnerOwner == "" {
		return nil, ErrInvalidAccount.withDetail("partner_owner is required")
	}

	err = upd.Fees.Validate()
	if err != nil {
		return nil, err
	}

	g.PartnerOwner = upd.PartnerOwner
	g.Blocked = upd.Blocked
	g.Fees = upd.Fees
	s.touched.game(code)

	return g, nil
}

// EmergencyPanic toggles panic mode and returns the new value.
func (s *State) EmergencyPanic(caller string) (bool, error) {
	err := s.onlyOwner(caller)
	if err != nil {
		return false, err
	}

	s.meta.Panicked = !s.meta.Panicked
	s.touched.meta = true

	return s.meta.Panicked, nil
}

// UpdateOwner hands the contract to newOwner.
func (s *State) UpdateOwner(caller, newOwner string) error {
	err := s.onlyOwner(caller)
	if err != nil {
		return err
	}

	if strings.TrimSpace(newOwner) == "" {
		return ErrInvalidAccount.withDetail("new owner is empty")
	}

	s.meta.Owner = newOwner
	s.touched.meta = true

	return nil
}

// ViewPartnerData returns a copy of the game.
func (s *State) ViewPartnerData(code string) (PartnerGame, error) {
	g, err := s.games.Lookup(code)
	if err != nil {
		return PartnerGame{}, err
	}

	return *g, nil
}

// GetCredits is the read-only credit balance view.
func (s *State) GetCredits(token, account string) (decimal.Decimal, error) {
	return s.credits.BalanceOf(token, account)
}
