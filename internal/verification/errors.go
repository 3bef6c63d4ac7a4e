package verification

import "errors"

// Verification errors. Mismatch and on-chain failures are terminal: a located
// transaction is immutable, so re-polling cannot change the answer.
var (
	// ErrVerificationTimeout is returned when the transaction could not be
	// located within the attempt budget.
	ErrVerificationTimeout = errors.New("verification timeout: transaction not found")

	// ErrOnChainFailure is returned when the located transaction itself
	// failed on-chain.
	ErrOnChainFailure = errors.New("transaction failed on-chain")

	// ErrPaymentMismatch is returned when a located transaction does not
	// match the expected payer, recipient, or amount.
	ErrPaymentMismatch = errors.New("payment mismatch")

	// ErrInvalidSignature is returned for signatures that are not valid
	// base58-encoded 64-byte values.
	ErrInvalidSignature = errors.New("invalid transaction signature")
)
