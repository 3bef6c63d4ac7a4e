package memory

import (
	"context"
	"sort"
	"sync"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/storage"
)

// PaymentRecordStore is an in-memory implementation of storage.PaymentRecordStore.
type PaymentRecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PaymentRecord // keyed by signature
}

// NewPaymentRecordStore creates a new in-memory payment record store.
func NewPaymentRecordStore() *PaymentRecordStore {
	return &PaymentRecordStore{
		data: make(map[string]*domain.PaymentRecord),
	}
}

// Insert adds a new record. Returns ErrDuplicateKey if the signature exists.
func (s *PaymentRecordStore) Insert(_ context.Context, rec *domain.PaymentRecord) error {
	if rec == nil || rec.Signature == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[rec.Signature]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *rec
	s.data[rec.Signature] = &copy
	return nil
}

// GetBySignature retrieves a record by signature. Returns ErrNotFound if not exists.
func (s *PaymentRecordStore) GetBySignature(_ context.Context, signature string) (*domain.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.data[signature]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *rec
	return &copy, nil
}

// GetByPayer retrieves all records for a payer, ordered by verified_at ASC.
func (s *PaymentRecordStore) GetByPayer(_ context.Context, payer string) ([]*domain.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PaymentRecord
	for _, rec := range s.data {
		if rec.Payer == payer {
			copy := *rec
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].VerifiedAt == result[j].VerifiedAt {
			return result[i].Signature < result[j].Signature
		}
		return result[i].VerifiedAt < result[j].VerifiedAt
	})

	return result, nil
}

var _ storage.PaymentRecordStore = (*PaymentRecordStore)(nil)
