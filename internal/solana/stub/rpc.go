package stub

import (
	"context"
	"sync"

	"solana-token-forge/internal/solana"
)

// RPCClient implements solana.RPCClient for testing. Transactions absent from
// the map are reported as not found, matching the real client. Set Err to
// force every call to fail.
type RPCClient struct {
	mu sync.Mutex

	Transactions map[string]*solana.Transaction
	Balances     map[string]uint64
	RentExempt   uint64
	Blockhash    string
	Err          error

	// Calls counts invocations per method name.
	Calls map[string]int

	// FoundAfter delays a transaction's visibility: GetTransaction returns
	// not-found until it has been called that many times for the signature.
	FoundAfter map[string]int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Transactions: make(map[string]*solana.Transaction),
		Balances:     make(map[string]uint64),
		RentExempt:   1_461_600,
		Blockhash:    "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N",
		Calls:        make(map[string]int),
		FoundAfter:   make(map[string]int),
	}
}

func (c *RPCClient) record(method string) {
	c.mu.Lock()
	c.Calls[method]++
	c.mu.Unlock()
}

// CallCount returns the number of calls to a method.
func (c *RPCClient) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Calls[method]
}

// GetMinimumBalanceForRentExemption returns the configured rent reserve.
func (c *RPCClient) GetMinimumBalanceForRentExemption(_ context.Context, _ uint64) (uint64, error) {
	c.record("getMinimumBalanceForRentExemption")
	if c.Err != nil {
		return 0, c.Err
	}
	return c.RentExempt, nil
}

// GetLatestBlockhash returns the configured blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context) (string, error) {
	c.record("getLatestBlockhash")
	if c.Err != nil {
		return "", c.Err
	}
	return c.Blockhash, nil
}

// GetTransaction retrieves a transaction from the stub store.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	c.record("getTransaction")
	if c.Err != nil {
		return nil, c.Err
	}

	c.mu.Lock()
	calls := c.Calls["getTransaction"]
	delay := c.FoundAfter[signature]
	c.mu.Unlock()
	if calls < delay {
		return nil, nil
	}

	tx, ok := c.Transactions[signature]
	if !ok {
		return nil, nil
	}
	return tx, nil
}

// GetBalance returns a configured balance, zero when absent.
func (c *RPCClient) GetBalance(_ context.Context, address string) (uint64, error) {
	c.record("getBalance")
	if c.Err != nil {
		return 0, c.Err
	}
	return c.Balances[address], nil
}

var _ solana.RPCClient = (*RPCClient)(nil)
