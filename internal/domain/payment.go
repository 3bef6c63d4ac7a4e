package domain

// LamportsPerSOL is the ledger-native unit scale.
const LamportsPerSOL = 1_000_000_000

// PaymentRecord is the result of one payment verification.
// Corresponds to payment_records table in PostgreSQL.
type PaymentRecord struct {
	Signature  string  // PRIMARY KEY, transaction signature (base58)
	Payer      string  // observed fee payer address
	Recipient  string  // observed destination address
	AmountSOL  float64 // transferred amount in SOL
	Lamports   uint64  // transferred amount in lamports
	Verified   bool    // true when all checks passed
	VerifiedAt int64   // Unix timestamp in milliseconds
}
