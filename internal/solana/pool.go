package solana

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"solana-token-forge/internal/backoff"
	"solana-token-forge/internal/observability"
)

// EndpointError records one failed endpoint attempt.
type EndpointError struct {
	Endpoint string
	Err      error
}

func (e EndpointError) Error() string {
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

// NetworkError is returned when every configured endpoint failed.
// It lists each attempted endpoint with its failure reason.
type NetworkError struct {
	Method   string
	Attempts []EndpointError
}

func (e *NetworkError) Error() string {
	reasons := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		reasons[i] = a.Error()
	}
	return fmt.Sprintf("%s: all RPC endpoints failed: %s", e.Method, strings.Join(reasons, "; "))
}

// Pool fans a read over a prioritized endpoint list, falling through to the
// next endpoint when one fails. The list is process-wide, read-only
// configuration.
type Pool struct {
	clients []*HTTPClient
	policy  backoff.Policy
	sleep   backoff.Sleeper
	logger  *log.Logger
}

// PoolOption configures Pool.
type PoolOption func(*Pool)

// WithPolicy sets the inter-endpoint backoff policy.
func WithPolicy(p backoff.Policy) PoolOption {
	return func(pool *Pool) {
		pool.policy = p
	}
}

// WithSleeper replaces the wall-clock sleeper, for tests.
func WithSleeper(s backoff.Sleeper) PoolOption {
	return func(pool *Pool) {
		pool.sleep = s
	}
}

// WithLogger sets the pool logger.
func WithLogger(l *log.Logger) PoolOption {
	return func(pool *Pool) {
		pool.logger = l
	}
}

// NewPool creates a fallback pool over the given endpoints, in priority order.
func NewPool(endpoints []string, opts ...PoolOption) *Pool {
	pool := &Pool{
		policy: backoff.Policy{Base: time.Second, Multiplier: 1, Cap: time.Second, MaxAttempts: len(endpoints)},
		sleep:  backoff.WallClock,
		logger: log.Default(),
	}
	for _, ep := range endpoints {
		pool.clients = append(pool.clients, NewHTTPClient(ep))
	}
	for _, opt := range opts {
		opt(pool)
	}
	return pool
}

// Endpoints returns the configured endpoint URLs in priority order.
func (p *Pool) Endpoints() []string {
	eps := make([]string, len(p.clients))
	for i, c := range p.clients {
		eps[i] = c.Endpoint()
	}
	return eps
}

var _ RPCClient = (*Pool)(nil)

// try runs fn against each endpoint until one succeeds.
func (p *Pool) try(ctx context.Context, method string, fn func(*HTTPClient) error) error {
	if len(p.clients) == 0 {
		return &NetworkError{Method: method}
	}

	start := time.Now()
	defer func() {
		observability.RecordRPCLatency(method, time.Since(start).Seconds())
	}()

	netErr := &NetworkError{Method: method}
	for i, client := range p.clients {
		if i > 0 {
			if err := p.sleep(ctx, p.policy.Delay(i)); err != nil {
				return err
			}
		}

		err := fn(client)
		if err == nil {
			return nil
		}
		p.logger.Printf("endpoint %s failed for %s: %v", client.Endpoint(), method, err)
		observability.RecordRPCEndpointError(client.Endpoint())
		netErr.Attempts = append(netErr.Attempts, EndpointError{Endpoint: client.Endpoint(), Err: err})
	}
	return netErr
}

// GetMinimumBalanceForRentExemption queries the rent reserve with fallback.
func (p *Pool) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	var out uint64
	err := p.try(ctx, "getMinimumBalanceForRentExemption", func(c *HTTPClient) error {
		v, err := c.GetMinimumBalanceForRentExemption(ctx, size)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// GetLatestBlockhash queries the recent blockhash with fallback.
func (p *Pool) GetLatestBlockhash(ctx context.Context) (string, error) {
	var out string
	err := p.try(ctx, "getLatestBlockhash", func(c *HTTPClient) error {
		v, err := c.GetLatestBlockhash(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// GetTransaction looks a transaction up with fallback. A clean not-found
// answer from an endpoint is authoritative and stops the fallback: the
// caller's polling loop owns retrying for finality.
func (p *Pool) GetTransaction(ctx context.Context, signature string) (*Transaction, error) {
	var out *Transaction
	err := p.try(ctx, "getTransaction", func(c *HTTPClient) error {
		v, err := c.GetTransaction(ctx, signature)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// GetBalance queries an account balance with fallback.
func (p *Pool) GetBalance(ctx context.Context, address string) (uint64, error) {
	var out uint64
	err := p.try(ctx, "getBalance", func(c *HTTPClient) error {
		v, err := c.GetBalance(ctx, address)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
