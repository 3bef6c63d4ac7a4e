package verification

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-forge/internal/backoff"
	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/solana"
	"solana-token-forge/internal/solana/stub"
	"solana-token-forge/internal/storage"
)

const (
	testSignature = "5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7"
	testPayer     = "BeEbsaq4dKfzZQBK6zet4wj8UJCTF9zzU7QLgWpERqBg"
	testRecipient = "So11111111111111111111111111111111111111112"
)

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func testLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func newTestVerifier(t *testing.T, rpc solana.RPCClient, opts ...Option) *Verifier {
	t.Helper()
	opts = append([]Option{WithSleeper(noSleep)}, opts...)
	v, err := NewVerifier(rpc, Config{FeeRecipient: testRecipient}, testLogger(), opts...)
	require.NoError(t, err)
	return v
}

// transferTx builds a successful transaction moving delta lamports from payer
// to recipient via the system program.
func transferTx(payer, recipient string, delta uint64) *solana.Transaction {
	return &solana.Transaction{
		Slot:      123_456,
		Signature: testSignature,
		BlockTime: 1_700_000_000,
		Meta: &solana.TransactionMeta{
			PreBalances:  []uint64{10 * domain.LamportsPerSOL, 1_000_000, 1},
			PostBalances: []uint64{10*domain.LamportsPerSOL - delta - 5000, 1_000_000 + delta, 1},
		},
		Message: &solana.TransactionMessage{
			AccountKeys: []string{payer, recipient, SystemProgramAddress},
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 2, Accounts: []int{0, 1}, Data: ""},
			},
		},
	}
}

func TestVerify_Success(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.Transactions[testSignature] = transferTx(testPayer, testRecipient, DefaultFeeLamports)

	rec, err := newTestVerifier(t, rpc).Verify(context.Background(), testSignature, testPayer)
	require.NoError(t, err)

	assert.True(t, rec.Verified)
	assert.Equal(t, testSignature, rec.Signature)
	assert.Equal(t, testPayer, rec.Payer)
	assert.Equal(t, testRecipient, rec.Recipient)
	assert.Equal(t, uint64(DefaultFeeLamports), rec.Lamports)
	assert.InDelta(t, 0.3, rec.AmountSOL, 1e-9)
	assert.NotZero(t, rec.VerifiedAt)
}

func TestVerify_AmountTolerance(t *testing.T) {
	tests := []struct {
		name     string
		lamports uint64
		wantErr  error
	}{
		{"exact amount", DefaultFeeLamports, nil},
		{"99.9 percent passes", DefaultFeeLamports * 999 / 1000, nil},
		{"89 percent fails", DefaultFeeLamports * 89 / 100, ErrPaymentMismatch},
		{"overpayment passes", DefaultFeeLamports * 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rpc := stub.NewRPCClient()
			rpc.Transactions[testSignature] = transferTx(testPayer, testRecipient, tt.lamports)

			_, err := newTestVerifier(t, rpc).Verify(context.Background(), testSignature, testPayer)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestVerify_OnChainFailure(t *testing.T) {
	tx := transferTx(testPayer, testRecipient, DefaultFeeLamports)
	tx.Meta.Err = map[string]interface{}{"InstructionError": []interface{}{0.0, "Custom"}}

	rpc := stub.NewRPCClient()
	rpc.Transactions[testSignature] = tx

	_, err := newTestVerifier(t, rpc).Verify(context.Background(), testSignature, testPayer)
	require.ErrorIs(t, err, ErrOnChainFailure)
}

func TestVerify_PayerMismatch(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.Transactions[testSignature] = transferTx(testRecipient, testRecipient, DefaultFeeLamports)

	_, err := newTestVerifier(t, rpc).Verify(context.Background(), testSignature, testPayer)
	require.ErrorIs(t, err, ErrPaymentMismatch)
	// Validation failures are terminal: no second lookup.
	assert.Equal(t, 1, rpc.CallCount("getTransaction"))
}

func TestVerify_RecipientMismatch(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.Transactions[testSignature] = transferTx(testPayer, testPayer, DefaultFeeLamports)

	_, err := newTestVerifier(t, rpc).Verify(context.Background(), testSignature, testPayer)
	require.ErrorIs(t, err, ErrPaymentMismatch)
}

func TestVerify_NoTransferInstruction(t *testing.T) {
	tx := transferTx(testPayer, testRecipient, DefaultFeeLamports)
	// Point the instruction at a non-system program.
	tx.Message.Instructions[0].ProgramIDIndex = 1

	rpc := stub.NewRPCClient()
	rpc.Transactions[testSignature] = tx

	_, err := newTestVerifier(t, rpc).Verify(context.Background(), testSignature, testPayer)
	require.ErrorIs(t, err, ErrPaymentMismatch)
}

func TestVerify_PollsUntilFound(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.Transactions[testSignature] = transferTx(testPayer, testRecipient, DefaultFeeLamports)
	rpc.FoundAfter[testSignature] = 3

	rec, err := newTestVerifier(t, rpc).Verify(context.Background(), testSignature, testPayer)
	require.NoError(t, err)
	assert.True(t, rec.Verified)
	assert.Equal(t, 3, rpc.CallCount("getTransaction"))
}

func TestVerify_Timeout(t *testing.T) {
	rpc := stub.NewRPCClient() // no transactions configured

	v, err := NewVerifier(rpc, Config{
		FeeRecipient: testRecipient,
		Policy:       backoff.Policy{Base: time.Millisecond, Multiplier: 1.2, Cap: time.Millisecond, MaxAttempts: 5},
	}, testLogger(), WithSleeper(noSleep))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), testSignature, testPayer)
	require.ErrorIs(t, err, ErrVerificationTimeout)
	assert.Equal(t, 5, rpc.CallCount("getTransaction"))
}

func TestVerify_NetworkErrorIsTerminal(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.Err = errors.New("all endpoints down")

	_, err := newTestVerifier(t, rpc).Verify(context.Background(), testSignature, testPayer)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVerificationTimeout)
	assert.Equal(t, 1, rpc.CallCount("getTransaction"))
}

func TestVerify_InputValidationBeforeNetwork(t *testing.T) {
	rpc := stub.NewRPCClient()
	v := newTestVerifier(t, rpc)

	_, err := v.Verify(context.Background(), "not-base58!!", testPayer)
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = v.Verify(context.Background(), testSignature, "short")
	require.Error(t, err)

	assert.Zero(t, rpc.CallCount("getTransaction"))
}

func TestVerify_Idempotent(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.Transactions[testSignature] = transferTx(testPayer, testRecipient, DefaultFeeLamports)

	store := &fakeStore{records: make(map[string]*domain.PaymentRecord)}
	v := newTestVerifier(t, rpc, WithRecordStore(store))

	first, err := v.Verify(context.Background(), testSignature, testPayer)
	require.NoError(t, err)
	require.Equal(t, 1, rpc.CallCount("getTransaction"))

	second, err := v.Verify(context.Background(), testSignature, testPayer)
	require.NoError(t, err)

	// Same classification and record, no second ledger lookup.
	assert.Equal(t, first, second)
	assert.Equal(t, 1, rpc.CallCount("getTransaction"))
}

func TestVerify_StoredRecordPayerMismatch(t *testing.T) {
	rpc := stub.NewRPCClient()
	store := &fakeStore{records: map[string]*domain.PaymentRecord{
		testSignature: {Signature: testSignature, Payer: testPayer, Recipient: testRecipient, Verified: true},
	}}
	v := newTestVerifier(t, rpc, WithRecordStore(store))

	_, err := v.Verify(context.Background(), testSignature, testRecipient)
	require.ErrorIs(t, err, ErrPaymentMismatch)
	assert.Zero(t, rpc.CallCount("getTransaction"))
}

type fakeStore struct {
	records map[string]*domain.PaymentRecord
}

func (s *fakeStore) Insert(_ context.Context, rec *domain.PaymentRecord) error {
	if _, ok := s.records[rec.Signature]; ok {
		return storage.ErrDuplicateKey
	}
	s.records[rec.Signature] = rec
	return nil
}

func (s *fakeStore) GetBySignature(_ context.Context, signature string) (*domain.PaymentRecord, error) {
	rec, ok := s.records[signature]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return rec, nil
}
