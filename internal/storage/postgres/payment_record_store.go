package postgres

import (
	"context"
	"fmt"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/storage"
)

// PaymentRecordStore implements storage.PaymentRecordStore using PostgreSQL.
type PaymentRecordStore struct {
	pool *Pool
}

// NewPaymentRecordStore creates a new PaymentRecordStore.
func NewPaymentRecordStore(pool *Pool) *PaymentRecordStore {
	return &PaymentRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PaymentRecordStore = (*PaymentRecordStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if the signature exists.
func (s *PaymentRecordStore) Insert(ctx context.Context, rec *domain.PaymentRecord) error {
	if rec == nil || rec.Signature == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO payment_records (
			signature, payer, recipient, amount_sol, lamports, verified, verified_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := s.pool.Exec(ctx, query,
		rec.Signature, rec.Payer, rec.Recipient,
		rec.AmountSOL, rec.Lamports, rec.Verified, rec.VerifiedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert payment record: %w", err)
	}
	return nil
}

// GetBySignature retrieves a record by signature. Returns ErrNotFound if not exists.
func (s *PaymentRecordStore) GetBySignature(ctx context.Context, signature string) (*domain.PaymentRecord, error) {
	query := `
		SELECT signature, payer, recipient, amount_sol, lamports, verified, verified_at
		FROM payment_records
		WHERE signature = $1
	`

	var rec domain.PaymentRecord
	err := s.pool.QueryRow(ctx, query, signature).Scan(
		&rec.Signature, &rec.Payer, &rec.Recipient,
		&rec.AmountSOL, &rec.Lamports, &rec.Verified, &rec.VerifiedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get payment record by signature: %w", err)
	}
	return &rec, nil
}

// GetByPayer retrieves all records for a payer, ordered by verified_at ASC.
func (s *PaymentRecordStore) GetByPayer(ctx context.Context, payer string) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT signature, payer, recipient, amount_sol, lamports, verified, verified_at
		FROM payment_records
		WHERE payer = $1
		ORDER BY verified_at ASC, signature ASC
	`

	rows, err := s.pool.Query(ctx, query, payer)
	if err != nil {
		return nil, fmt.Errorf("get payment records by payer: %w", err)
	}
	defer rows.Close()

	var records []*domain.PaymentRecord
	for rows.Next() {
		var rec domain.PaymentRecord
		err := rows.Scan(
			&rec.Signature, &rec.Payer, &rec.Recipient,
			&rec.AmountSOL, &rec.Lamports, &rec.Verified, &rec.VerifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment record row: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment record rows: %w", err)
	}

	return records, nil
}
