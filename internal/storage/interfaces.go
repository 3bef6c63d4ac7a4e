package storage

import (
	"context"

	"solana-token-forge/internal/domain"
)

// PaymentRecordStore provides access to payment_records storage. Records are
// append-only: a verified payment never changes, so repeated verification of
// the same signature can be answered from the store.
type PaymentRecordStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if the signature exists.
	Insert(ctx context.Context, rec *domain.PaymentRecord) error

	// GetBySignature retrieves a record by transaction signature.
	// Returns ErrNotFound if not exists.
	GetBySignature(ctx context.Context, signature string) (*domain.PaymentRecord, error)

	// GetByPayer retrieves all records for a payer, ordered by verified_at ASC.
	GetByPayer(ctx context.Context, payer string) ([]*domain.PaymentRecord, error)
}
