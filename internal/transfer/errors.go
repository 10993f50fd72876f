package transfer

import "errors"

var (
	// ErrInvalidAmount rejects zero or negative transfer amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrAccountNotFound means the payer account does not exist.
	ErrAccountNotFound = errors.New("payer account not found")

	// ErrInvalidRecipient rejects recipient identifiers that do not sanitize
	// to a 9-digit account number.
	ErrInvalidRecipient = errors.New("recipient must be a 9-digit account number")

	// ErrSelfPayment rejects transfers to the payer's own account number.
	ErrSelfPayment = errors.New("cannot transfer to your own account")

	// ErrRecipientNotFound means no account carries the recipient number.
	ErrRecipientNotFound = errors.New("recipient account not found")

	// ErrInsufficientFunds means the payer balance cannot cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
