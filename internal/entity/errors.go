package entity

// ErrorKind is a stable machine-checkable error category. All ledger errors
// are recoverable by the caller.
type ErrorKind string

const (
	KindInvalidAmount       ErrorKind = "invalid_amount"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindInvalidAddress      ErrorKind = "invalid_address"
	KindNotFound            ErrorKind = "not_found"
	KindNotUnlocked         ErrorKind = "not_unlocked"
	KindAlreadyClaimed      ErrorKind = "already_claimed"
)

type LedgerError struct {
	Kind    ErrorKind
	Message string
}

func (e *LedgerError) Error() string {
	return e.Message
}

var (
	ErrInvalidAmount       = &LedgerError{Kind: KindInvalidAmount, Message: "amount must be greater than zero"}
	ErrInsufficientBalance = &LedgerError{Kind: KindInsufficientBalance, Message: "insufficient balance"}
	ErrInvalidAddress      = &LedgerError{Kind: KindInvalidAddress, Message: "invalid destination address"}
	ErrRewardNotFound      = &LedgerError{Kind: KindNotFound, Message: "reward not found"}
	ErrRewardNotUnlocked   = &LedgerError{Kind: KindNotUnlocked, Message: "reward is not unlocked yet"}
	ErrRewardClaimed       = &LedgerError{Kind: KindAlreadyClaimed, Message: "reward has already been claimed"}
	ErrStakeNotFound       = &LedgerError{Kind: KindNotFound, Message: "active stake not found"}
)
