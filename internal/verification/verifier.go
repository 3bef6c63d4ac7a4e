// Package verification confirms that a claimed fee payment landed on-chain.
// It polls the ledger for a transaction signature with bounded retries, then
// validates payer, recipient, and transferred amount against expectations.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-token-forge/internal/addressing"
	"solana-token-forge/internal/backoff"
	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/observability"
	"solana-token-forge/internal/solana"
	"solana-token-forge/internal/storage"
)

// SystemProgramAddress is the native value-transfer program.
const SystemProgramAddress = "11111111111111111111111111111111"

// DefaultFeeLamports is the service fee: 0.3 SOL.
const DefaultFeeLamports = 300_000_000

// feeTolerance absorbs rounding in fee-amount representations: the observed
// balance delta may fall short of the expected fee by up to 0.1%.
const feeTolerance = 0.001

// RecordStore persists verification outcomes so that repeated calls for the
// same signature skip the polling loop. Implementations return
// storage.ErrNotFound for unknown signatures.
type RecordStore interface {
	Insert(ctx context.Context, rec *domain.PaymentRecord) error
	GetBySignature(ctx context.Context, signature string) (*domain.PaymentRecord, error)
}

// Config holds verifier parameters.
type Config struct {
	// FeeRecipient is the address the fee must arrive at.
	FeeRecipient string
	// ExpectedLamports is the minimum transfer amount before tolerance.
	// Zero selects DefaultFeeLamports.
	ExpectedLamports uint64
	// Policy bounds the polling loop. A zero MaxAttempts selects
	// backoff.DefaultPolicy.
	Policy backoff.Policy
}

// Verifier polls the ledger to confirm fee payments.
type Verifier struct {
	rpc    solana.RPCClient
	store  RecordStore // optional
	cfg    Config
	sleep  backoff.Sleeper
	logger *log.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithRecordStore enables persisted, idempotent verification results.
func WithRecordStore(store RecordStore) Option {
	return func(v *Verifier) { v.store = store }
}

// WithSleeper overrides the delay function used between polling attempts.
func WithSleeper(sleep backoff.Sleeper) Option {
	return func(v *Verifier) { v.sleep = sleep }
}

// NewVerifier creates a Verifier. FeeRecipient must be a valid address.
func NewVerifier(rpc solana.RPCClient, cfg Config, logger *log.Logger, opts ...Option) (*Verifier, error) {
	if err := addressing.Validate(cfg.FeeRecipient); err != nil {
		return nil, fmt.Errorf("fee recipient: %w", err)
	}
	if cfg.ExpectedLamports == 0 {
		cfg.ExpectedLamports = DefaultFeeLamports
	}
	if cfg.Policy.MaxAttempts == 0 {
		cfg.Policy = backoff.DefaultPolicy()
	}
	if logger == nil {
		logger = log.Default()
	}

	v := &Verifier{
		rpc:    rpc,
		cfg:    cfg,
		sleep:  backoff.WallClock,
		logger: logger,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify polls the ledger for signature until the transaction is located or
// the attempt budget runs out, then validates the payment. Only "not found
// yet" retries: a located transaction is checked once and the outcome is
// final. When a record store is configured, a previously verified signature
// returns the stored record without touching the network.
func (v *Verifier) Verify(ctx context.Context, signature, expectedPayer string) (*domain.PaymentRecord, error) {
	if !addressing.ValidSignature(signature) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSignature, signature)
	}
	if err := addressing.Validate(expectedPayer); err != nil {
		return nil, fmt.Errorf("payer: %w", err)
	}

	if v.store != nil {
		rec, err := v.store.GetBySignature(ctx, signature)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			v.logger.Printf("[verify] record lookup failed for %s: %v", signature, err)
		}
		if rec != nil && rec.Verified {
			if rec.Payer != expectedPayer {
				return nil, fmt.Errorf("%w: payer %s does not match verified record", ErrPaymentMismatch, expectedPayer)
			}
			return rec, nil
		}
	}

	tx, err := v.poll(ctx, signature)
	if err != nil {
		return nil, err
	}

	rec, err := v.validate(tx, signature, expectedPayer)
	if err != nil {
		return nil, err
	}

	if v.store != nil {
		if err := v.store.Insert(ctx, rec); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			v.logger.Printf("[verify] record insert failed for %s: %v", signature, err)
		}
	}

	v.logger.Printf("[verify] payment confirmed: %s -> %s (%.4f SOL)", rec.Payer, rec.Recipient, rec.AmountSOL)
	return rec, nil
}

// poll searches for the transaction with exponential backoff. Not-found is
// the only retriable outcome; network errors after endpoint fallback has
// already run are terminal.
func (v *Verifier) poll(ctx context.Context, signature string) (*solana.Transaction, error) {
	for attempt := 0; attempt < v.cfg.Policy.MaxAttempts; attempt++ {
		if err := v.sleep(ctx, v.cfg.Policy.Delay(attempt)); err != nil {
			return nil, err
		}

		tx, err := v.rpc.GetTransaction(ctx, signature)
		if err != nil {
			return nil, fmt.Errorf("get transaction %s: %w", signature, err)
		}
		if tx != nil {
			observability.DefaultMetrics.VerificationAttempts.Observe(float64(attempt + 1))
			return tx, nil
		}

		v.logger.Printf("[verify] transaction %s not found (attempt %d/%d)",
			signature, attempt+1, v.cfg.Policy.MaxAttempts)
	}
	return nil, fmt.Errorf("%w: %s after %d attempts", ErrVerificationTimeout, signature, v.cfg.Policy.MaxAttempts)
}

// validate applies the payment checks in order. Any failure is terminal.
func (v *Verifier) validate(tx *solana.Transaction, signature, expectedPayer string) (*domain.PaymentRecord, error) {
	if tx.Meta == nil || tx.Message == nil {
		return nil, fmt.Errorf("%w: transaction %s has no metadata", ErrPaymentMismatch, signature)
	}
	if tx.Meta.Err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOnChainFailure, signature, tx.Meta.Err)
	}

	keys := tx.Message.AccountKeys
	if len(keys) == 0 || keys[0] != expectedPayer {
		return nil, fmt.Errorf("%w: fee payer is not %s", ErrPaymentMismatch, expectedPayer)
	}

	transfer, ok := findTransfer(tx.Message)
	if !ok {
		return nil, fmt.Errorf("%w: no system transfer instruction", ErrPaymentMismatch)
	}

	destIdx := transfer.Accounts[1]
	if destIdx >= len(keys) || keys[destIdx] != v.cfg.FeeRecipient {
		return nil, fmt.Errorf("%w: transfer destination is not %s", ErrPaymentMismatch, v.cfg.FeeRecipient)
	}

	if destIdx >= len(tx.Meta.PreBalances) || destIdx >= len(tx.Meta.PostBalances) {
		return nil, fmt.Errorf("%w: balance data missing for destination", ErrPaymentMismatch)
	}
	pre, post := tx.Meta.PreBalances[destIdx], tx.Meta.PostBalances[destIdx]
	if post < pre {
		return nil, fmt.Errorf("%w: destination balance decreased", ErrPaymentMismatch)
	}
	delta := post - pre

	minimum := v.cfg.ExpectedLamports - uint64(float64(v.cfg.ExpectedLamports)*feeTolerance)
	if delta < minimum {
		return nil, fmt.Errorf("%w: received %d lamports, expected at least %d",
			ErrPaymentMismatch, delta, minimum)
	}

	return &domain.PaymentRecord{
		Signature:  signature,
		Payer:      keys[0],
		Recipient:  v.cfg.FeeRecipient,
		AmountSOL:  float64(delta) / domain.LamportsPerSOL,
		Lamports:   delta,
		Verified:   true,
		VerifiedAt: time.Now().UnixMilli(),
	}, nil
}

// findTransfer returns the first instruction targeting the system program
// with at least a source and destination account.
func findTransfer(msg *solana.TransactionMessage) (solana.CompiledInstruction, bool) {
	for _, ix := range msg.Instructions {
		if ix.ProgramID(msg.AccountKeys) == SystemProgramAddress && len(ix.Accounts) >= 2 {
			return ix, true
		}
	}
	return solana.CompiledInstruction{}, false
}
