package ledger

import "fmt"

// Kind classifies ledger failures so callers can branch without parsing messages.
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindUnauthorized
	KindInsufficientFunds
	KindExternalCall
	KindConflict
	KindSuspended
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindExternalCall:
		return "external_call"
	case KindConflict:
		return "conflict"
	case KindSuspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// Error is a stable, numbered ledger failure. Two errors match under errors.Is
// when their codes are equal, so details can be attached without breaking checks.
type Error struct {
	Code    string
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Code == e.Code
}

// withDetail returns a copy of e with a formatted suffix appended to the message.
func (e *Error) withDetail(format string, args ...any) *Error {
	return &Error{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: e.Message + ". " + fmt.Sprintf(format, args...),
	}
}

// contract errors
var (
	ErrNotRegistered      = &Error{"ERR_001", KindNotFound, "Account is not registered"}
	ErrGameNotFound       = &Error{"ERR_002", KindNotFound, "No partner registered for this address"}
	ErrDuplicateGame      = &Error{"ERR_003", KindConflict, "Partner already registered for this address"}
	ErrNotPartnerOwner    = &Error{"ERR_004", KindUnauthorized, "Only partner game owner can call this method"}
	ErrUnknownIntent      = &Error{"ERR_005", KindValidation, "ft_on_transfer msg parameter could not be parsed"}
	ErrNotOwner           = &Error{"ERR_006", KindUnauthorized, "Only owner can call this method"}
	ErrPanicMode          = &Error{"ERR_007", KindSuspended, "Panic mode is on, all non owner tasks are suspended"}
	ErrGameBlocked        = &Error{"ERR_008", KindSuspended, "Game is blocked by the contract owner"}
	ErrAlreadyInitialized = &Error{"ERR_009", KindConflict, "Already initialized"}
	ErrNotInitialized     = &Error{"ERR_010", KindNotFound, "Contract is not initialized"}
	ErrInvalidAccount     = &Error{"ERR_011", KindValidation, "Invalid account id"}
	ErrTransferNotFound   = &Error{"ERR_012", KindNotFound, "No transfer registered for this id"}
	ErrNotDeposit         = &Error{"ERR_013", KindConflict, "Only deposits are confirmed by the token contract"}
)

// owner/config errors
var (
	ErrEmptyPool        = &Error{"ERR_203", KindInsufficientFunds, "Balance for this pool is 0"}
	ErrInvalidFeeConfig = &Error{"ERR_205", KindValidation, "Invalid fee config"}
)

// partnered game errors
var (
	ErrWrongToken = &Error{"ERR_301", KindValidation, "Token sent is not the registered token type for game"}
)

// player errors
var (
	ErrWithdrawTooLarge   = &Error{"ERR_401", KindInsufficientFunds, "Not enough balance for this withdraw"}
	ErrInsufficientCredit = &Error{"ERR_402", KindInsufficientFunds, "Not enough balance for this bet size"}
	ErrBetOutOfRange      = &Error{"ERR_403", KindValidation, "Bet size out of range"}
	ErrOddsOutOfRange     = &Error{"ERR_405", KindValidation, "Odds out of range"}
	ErrHouseFunds         = &Error{"ERR_407", KindInsufficientFunds, "Bet denied, house_funds are not enough to cover your possible win value"}
	ErrInvalidAmount      = &Error{"ERR_408", KindValidation, "Amount must be a positive integer"}
)

// collaborator errors
var (
	ErrTransferFailed = &Error{"ERR_501", KindExternalCall, "Token transfer was not confirmed, balance restored"}
	ErrRandomness     = &Error{"ERR_502", KindExternalCall, "Randomness source unavailable"}
)
