package ledger

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

// TransferKind says which balance a token transfer moves and in which direction.
type TransferKind string

const (
	TransferDepositCredits  TransferKind = "deposit_credits"
	TransferFundGame        TransferKind = "fund_game"
	TransferWithdrawCredits TransferKind = "withdraw_credits"
	TransferWithdrawPartner TransferKind = "withdraw_partner"
	TransferWithdrawHouse   TransferKind = "withdraw_house"
	TransferWithdrawOwner   TransferKind = "withdraw_owner"
	TransferWithdrawNft     TransferKind = "withdraw_nft"
)

// Inbound reports whether tokens flow into the contract.
func (k TransferKind) Inbound() bool {
	return k == TransferDepositCredits || k == TransferFundGame
}

// TransferStatus is the state of a two-phase transfer: Pending until the token
// collaborator reports back, then Confirmed or Compensated for good.
type TransferStatus string

const (
	StatusPending     TransferStatus = "pending"
	StatusConfirmed   TransferStatus = "confirmed"
	StatusCompensated TransferStatus = "compensated"
)

// Transfer is the pending record of one token movement across the contract boundary.
//
// For inbound kinds Account is the sender and nothing is credited until the record
// is confirmed. For outbound kinds Account is the receiver and the source balance
// was already debited; compensation puts it back.
type Transfer struct {
	ID      string          `json:"id"`
	Kind    TransferKind    `json:"kind"`
	Status  TransferStatus  `json:"status"`
	Token   string          `json:"token_contract"`
	Account string          `json:"account_id"`
	Game    string          `json:"game_code,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
}

// Intent is the msg payload of an inbound transfer-with-message call.
type Intent struct {
	Type   string `json:"type"`
	GameID string `json:"game_id,omitempty"`
}

const (
	IntentFundGame       = "FundGame"
	IntentDepositBalance = "DepositBalance"
)

// ParseIntent decodes msg. Anything other than a well-formed FundGame (with a
// game_id) or DepositBalance is ErrUnknownIntent.
func ParseIntent(msg string) (Intent, error) {
	var in Intent

	err := json.Unmarshal([]byte(msg), &in)
	if err != nil {
		return Intent{}, ErrUnknownIntent
	}

	switch in.Type {
	case IntentDepositBalance:
		return in, nil
	case IntentFundGame:
		if in.GameID == "" {
			return Intent{}, ErrUnknownIntent.withDetail("FundGame requires game_id")
		}

		return in, nil
	default:
		return Intent{}, ErrUnknownIntent
	}
}

// OnTransfer handles an inbound transfer of amount tokens of token from sender.
// It returns the unused portion: zero when the deposit is accepted as a pending
// record, the whole amount when it is refused.
func (s *State) OnTransfer(token, sender string, amount decimal.Decimal, msg string) (decimal.Decimal, *Transfer, error) {
	if !validAmount(amount) {
		return amount, nil, ErrInvalidAmount
	}

	if token == "" || sender == "" {
		return amount, nil, ErrInvalidAccount
	}

	in, err := ParseIntent(msg)
	if err != nil {
		return amount, nil, err
	}

	var t *Transfer

	switch in.Type {
	case IntentFundGame:
		g, err := s.games.Lookup(in.GameID)
		if err != nil {
			return amount, nil, err
		}

		if g.Blocked {
			return amount, nil, ErrGameBlocked
		}

		if g.TokenContract != token {
			return amount, nil, ErrWrongToken
		}

		t = s.newTransfer(TransferFundGame, token, sender, g.Code, amount)
	case IntentDepositBalance:
		err = s.assertNotPanicked()
		if err != nil {
			return amount, nil, err
		}

		t = s.newTransfer(TransferDepositCredits, token, sender, "", amount)
	}

	return zero, t, nil
}

// ResolveTransfer applies the collaborator's verdict to a pending transfer. A
// confirmed deposit is credited; a failed withdrawal is re-credited to its source.
// Resolving a transfer that already left Pending changes nothing and returns it.
func (s *State) ResolveTransfer(id string, success bool) (Transfer, error) {
	t, ok := s.transfers[id]
	if !ok {
		return Transfer{}, ErrTransferNotFound
	}

	if t.Status != StatusPending {
		return *t, nil
	}

	switch {
	case t.Kind.Inbound() && success:
		err := s.applyToSource(t)
		if err != nil {
			return Transfer{}, err
		}

		t.Status = StatusConfirmed
	case t.Kind.Inbound():
		t.Status = StatusCompensated
	case success:
		t.Status = StatusConfirmed
	default:
		err := s.applyToSource(t)
		if err != nil {
			return Transfer{}, err
		}

		t.Status = StatusCompensated
	}

	s.touched.transfer(id)

	return *t, nil
}

// ResolveDeposit is ResolveTransfer restricted to inbound transfers. Withdrawals
// are settled by whoever dispatched them.
func (s *State) ResolveDeposit(id string, success bool) (Transfer, error) {
	t, ok := s.transfers[id]
	if !ok {
		return Transfer{}, ErrTransferNotFound
	}

	if !t.Kind.Inbound() {
		return Transfer{}, ErrNotDeposit
	}

	return s.ResolveTransfer(id, success)
}

// applyToSource adds the transfer amount to the balance the transfer is tied to.
func (s *State) applyToSource(t *Transfer) error {
	switch t.Kind {
	case TransferDepositCredits, TransferWithdrawCredits:
		err := s.credits.Credit(t.Token, t.Account, t.Amount)
		if err != nil {
			return err
		}

		s.touched.credit(t.Token, t.Account)

		return nil
	}

	g, err := s.games.Lookup(t.Game)
	if err != nil {
		return err
	}

	switch t.Kind {
	case TransferFundGame, TransferWithdrawHouse:
		g.HouseFunds = g.HouseFunds.Add(t.Amount)
	case TransferWithdrawPartner:
		g.PartnerBalance = g.PartnerBalance.Add(t.Amount)
	case TransferWithdrawOwner:
		g.OwnerBalance = g.OwnerBalance.Add(t.Amount)
	case TransferWithdrawNft:
		g.NftBalance = g.NftBalance.Add(t.Amount)
	}

	s.touched.game(g.Code)

	return nil
}

// RetrieveCredits withdraws amount of the caller's own credits for token.
func (s *State) RetrieveCredits(caller, token string, amount decimal.Decimal) (*Transfer, error) {
	err := s.assertNotPanicked()
	if err != nil {
		return nil, err
	}

	if !validAmount(amount) {
		return nil, ErrInvalidAmount
	}

	balance, err := s.credits.BalanceOf(token, caller)
	if err != nil {
		return nil, err
	}

	if balance.LessThan(amount) {
		return nil, ErrWithdrawTooLarge
	}

	err = s.credits.Debit(token, caller, amount)
	if err != nil {
		return nil, err
	}

	s.touched.credit(token, caller)

	return s.newTransfer(TransferWithdrawCredits, token, caller, "", amount), nil
}

// RetrievePartnerBalance pays the whole partner pool to the partner owner.
func (s *State) RetrievePartnerBalance(caller, code string) (*Transfer, error) {
	g, err := s.games.Lookup(code)
	if err != nil {
		return nil, err
	}

	err = s.onlyPartnerOwner(g, caller)
	if err != nil {
		return nil, err
	}

	amount := g.PartnerBalance
	if !amount.IsPositive() {
		return nil, ErrEmptyPool
	}

	g.PartnerBalance = zero
	s.touched.game(code)

	return s.newTransfer(TransferWithdrawPartner, g.TokenContract, g.PartnerOwner, code, amount), nil
}

// RetrieveHouseFunds pays amount of the house funds to the partner owner.
func (s *State) RetrieveHouseFunds(caller, code string, amount decimal.Decimal) (*Transfer, error) {
	g, err := s.games.Lookup(code)
	if err != nil {
		return nil, err
	}

	err = s.onlyPartnerOwner(g, caller)
	if err != nil {
		return nil, err
	}

	if !validAmount(amount) {
		return nil, ErrInvalidAmount
	}

	if g.HouseFunds.LessThan(amount) {
		return nil, ErrWithdrawTooLarge
	}

	g.HouseFunds = g.HouseFunds.Sub(amount)
	s.touched.game(code)

	return s.newTransfer(TransferWithdrawHouse, g.TokenContract, g.PartnerOwner, code, amount), nil
}

// RetrieveOwnerFunds pays the game's whole owner pool to the contract owner.
func (s *State) RetrieveOwnerFunds(caller, code string) (*Transfer, error) {
	err := s.onlyOwner(caller)
	if err != nil {
		return nil, err
	}

	g, err := s.games.Lookup(code)
	if err != nil {
		return nil, err
	}

	amount := g.OwnerBalance
	if !amount.IsPositive() {
		return nil, ErrEmptyPool
	}

	g.OwnerBalance = zero
	s.touched.game(code)

	return s.newTransfer(TransferWithdrawOwner, g.TokenContract, s.meta.Owner, code, amount), nil
}

// RetrieveNftFunds pays the game's whole nft pool to the nft account. Either the
// owner or the nft account may trigger it.
func (s *State) RetrieveNftFunds(caller, code string) (*Transfer, error) {
	if !s.IsOwner(caller) && (caller == "" || caller != s.meta.NftAccount) {
		return nil, ErrNotOwner
	}

	if s.meta.NftAccount == "" {
		return nil, ErrInvalidAccount.withDetail("nft_account is not configured")
	}

	g, err := s.games.Lookup(code)
	if err != nil {
		return nil, err
	}

	amount := g.NftBalance
	if !amount.IsPositive() {
		return nil, ErrEmptyPool
	}

	g.NftBalance = zero
	s.touched.game(code)

	return s.newTransfer(TransferWithdrawNft, g.TokenContract, s.meta.NftAccount, code, amount), nil
}

// Transfer returns a copy of the record with the given id.
func (s *State) Transfer(id string) (Transfer, error) {
	t, ok := s.transfers[id]
	if !ok {
		return Transfer{}, ErrTransferNotFound
	}

	return *t, nil
}

// PendingWithdrawals lists outbound transfers still waiting for the collaborator.
func (s *State) PendingWithdrawals() []Transfer {
	var out []Transfer

	for _, t := range s.transfers {
		if t.Status == StatusPending && !t.Kind.Inbound() {
			out = append(out, *t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func (s *State) newTransfer(kind TransferKind, token, account, game string, amount decimal.Decimal) *Transfer {
	t := &Transfer{
		ID:      s.newID(),
		Kind:    kind,
		Status:  StatusPending,
		Token:   token,
		Account: account,
		Game:    game,
		Amount:  amount,
	}

	s.transfers[t.ID] = t
	s.touched.transfer(t.ID)

	cp := *t

	return &cp
}
