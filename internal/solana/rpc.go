package solana

import "context"

// RPCClient defines the read-only Solana RPC interface this service needs.
// The service never submits transactions: it builds and inspects them.
type RPCClient interface {
	// GetMinimumBalanceForRentExemption returns the rent-exempt reserve in
	// lamports for an account of the given byte size. Never hardcode this:
	// it changes with cluster configuration.
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)

	// GetLatestBlockhash returns the recent blockhash that bounds how long
	// a built transaction stays valid for submission.
	GetLatestBlockhash(ctx context.Context) (string, error)

	// GetTransaction retrieves a confirmed transaction by signature.
	// Returns (nil, nil) when the transaction is not found yet.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetBalance returns the lamport balance of an account.
	GetBalance(ctx context.Context, address string) (uint64, error)
}
