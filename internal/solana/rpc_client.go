package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout     = 25 * time.Second
	DefaultMaxRetries  = 1
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 8 * time.Second
	DefaultBackoffMult = 2.0
)

// HTTPClient implements RPCClient using HTTP JSON-RPC 2.0 against a single
// endpoint. Multi-endpoint fallback lives in Pool.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts for transient HTTP failures.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new Solana RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the RPC endpoint URL.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call with retries and exponential backoff.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// GetMinimumBalanceForRentExemption returns the rent-exempt lamport reserve
// for an account of the given size.
func (c *HTTPClient) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	params := []interface{}{size}

	var result uint64
	if err := c.call(ctx, "getMinimumBalanceForRentExemption", params, &result); err != nil {
		return 0, err
	}
	return result, nil
}

// GetLatestBlockhash returns the cluster's recent blockhash at confirmed
// commitment.
func (c *HTTPClient) GetLatestBlockhash(ctx context.Context) (string, error) {
	params := []interface{}{
		map[string]interface{}{
			"commitment": "confirmed",
		},
	}

	var result getLatestBlockhashResult
	if err := c.call(ctx, "getLatestBlockhash", params, &result); err != nil {
		return "", err
	}
	if result.Value.Blockhash == "" {
		return "", fmt.Errorf("empty blockhash in response")
	}
	return result.Value.Blockhash, nil
}

type getLatestBlockhashResult struct {
	Value struct {
		Blockhash            string `json:"blockhash"`
		LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
	} `json:"value"`
}

// GetBalance returns the lamport balance of an account.
func (c *HTTPClient) GetBalance(ctx context.Context, address string) (uint64, error) {
	params := []interface{}{
		address,
		map[string]interface{}{
			"commitment": "confirmed",
		},
	}

	var result getBalanceResult
	if err := c.call(ctx, "getBalance", params, &result); err != nil {
		return 0, err
	}
	return result.Value, nil
}

type getBalanceResult struct {
	Value uint64 `json:"value"`
}

// GetTransaction retrieves a transaction by signature, including account
// keys, compiled instructions and pre/post balances.
// Returns (nil, nil) when the transaction is not found.
func (c *HTTPClient) GetTransaction(ctx context.Context, signature string) (*Transaction, error) {
	params := []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "json",
			"commitment":                     "confirmed",
			"maxSupportedTransactionVersion": 0,
		},
	}

	var raw json.RawMessage
	if err := c.call(ctx, "getTransaction", params, &raw); err != nil {
		return nil, err
	}

	// Not found yet: result is JSON null.
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var result getTransactionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}

	tx := &Transaction{
		Slot:      result.Slot,
		Signature: signature,
	}

	if result.BlockTime != nil {
		tx.BlockTime = *result.BlockTime
	}

	if result.Meta != nil {
		tx.Meta = &TransactionMeta{
			Err:          result.Meta.Err,
			PreBalances:  result.Meta.PreBalances,
			PostBalances: result.Meta.PostBalances,
			LogMessages:  result.Meta.LogMessages,
		}
	}

	if result.Transaction != nil && result.Transaction.Message != nil {
		msg := &TransactionMessage{
			AccountKeys: result.Transaction.Message.AccountKeys,
		}
		for _, ix := range result.Transaction.Message.Instructions {
			msg.Instructions = append(msg.Instructions, CompiledInstruction{
				ProgramIDIndex: ix.ProgramIDIndex,
				Accounts:       ix.Accounts,
				Data:           ix.Data,
			})
		}
		tx.Message = msg
	}

	return tx, nil
}

// getTransactionResult is the raw RPC response for getTransaction.
type getTransactionResult struct {
	Slot        int64               `json:"slot"`
	BlockTime   *int64              `json:"blockTime"`
	Meta        *getTransactionMeta `json:"meta"`
	Transaction *getTransactionTx   `json:"transaction"`
}

type getTransactionMeta struct {
	Err          interface{} `json:"err"`
	PreBalances  []uint64    `json:"preBalances"`
	PostBalances []uint64    `json:"postBalances"`
	LogMessages  []string    `json:"logMessages"`
}

type getTransactionTx struct {
	Message *getTransactionMessage `json:"message"`
}

type getTransactionMessage struct {
	AccountKeys  []string                    `json:"accountKeys"`
	Instructions []getTransactionInstruction `json:"instructions"`
}

type getTransactionInstruction struct {
	ProgramIDIndex int    `json:"programIdIndex"`
	Accounts       []int  `json:"accounts"`
	Data           string `json:"data"`
}
