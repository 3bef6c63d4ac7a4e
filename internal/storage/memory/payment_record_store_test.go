package memory

import (
	"context"
	"errors"
	"testing"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/storage"
)

func TestPaymentRecordStore_InsertAndGet(t *testing.T) {
	store := NewPaymentRecordStore()
	ctx := context.Background()

	rec := &domain.PaymentRecord{
		Signature:  "sig1",
		Payer:      "payer1",
		Recipient:  "recipient1",
		AmountSOL:  0.3,
		Lamports:   300_000_000,
		Verified:   true,
		VerifiedAt: 1_700_000_000_000,
	}

	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetBySignature(ctx, "sig1")
	if err != nil {
		t.Fatalf("GetBySignature failed: %v", err)
	}

	if got.Lamports != 300_000_000 {
		t.Errorf("Lamports mismatch: got %d, want %d", got.Lamports, 300_000_000)
	}
	if !got.Verified {
		t.Error("Expected Verified to be true")
	}
}

func TestPaymentRecordStore_DuplicateKey(t *testing.T) {
	store := NewPaymentRecordStore()
	ctx := context.Background()

	rec := &domain.PaymentRecord{Signature: "sig1", Payer: "payer1", Verified: true}

	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, rec)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestPaymentRecordStore_NotFound(t *testing.T) {
	store := NewPaymentRecordStore()
	ctx := context.Background()

	_, err := store.GetBySignature(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPaymentRecordStore_GetByPayer(t *testing.T) {
	store := NewPaymentRecordStore()
	ctx := context.Background()

	records := []*domain.PaymentRecord{
		{Signature: "sig1", Payer: "alice", VerifiedAt: 3000},
		{Signature: "sig2", Payer: "alice", VerifiedAt: 1000},
		{Signature: "sig3", Payer: "bob", VerifiedAt: 2000},
	}
	for _, rec := range records {
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByPayer(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByPayer failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 records for alice, got %d", len(result))
	}
	if result[0].Signature != "sig2" || result[1].Signature != "sig1" {
		t.Error("Results not ordered by verified_at")
	}
}

func TestPaymentRecordStore_InvalidInput(t *testing.T) {
	store := NewPaymentRecordStore()
	ctx := context.Background()

	err := store.Insert(ctx, nil)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}

	err = store.Insert(ctx, &domain.PaymentRecord{Signature: ""})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty signature, got %v", err)
	}
}

func TestPaymentRecordStore_ReturnsCopies(t *testing.T) {
	store := NewPaymentRecordStore()
	ctx := context.Background()

	rec := &domain.PaymentRecord{Signature: "sig1", Payer: "alice", Verified: true}
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, _ := store.GetBySignature(ctx, "sig1")
	got.Payer = "mallory"

	again, _ := store.GetBySignature(ctx, "sig1")
	if again.Payer != "alice" {
		t.Error("Store returned a shared reference, mutation leaked")
	}
}
