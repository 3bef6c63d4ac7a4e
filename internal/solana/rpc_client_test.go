package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func rpcTestServer(t *testing.T, method string, result interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Method != method {
			t.Errorf("expected method %s, got %s", method, req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPClient_GetMinimumBalanceForRentExemption(t *testing.T) {
	server := rpcTestServer(t, "getMinimumBalanceForRentExemption", uint64(1461600))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	lamports, err := client.GetMinimumBalanceForRentExemption(context.Background(), 82)
	if err != nil {
		t.Fatalf("GetMinimumBalanceForRentExemption: %v", err)
	}
	if lamports != 1461600 {
		t.Errorf("expected 1461600 lamports, got %d", lamports)
	}
}

func TestHTTPClient_GetLatestBlockhash(t *testing.T) {
	server := rpcTestServer(t, "getLatestBlockhash", map[string]interface{}{
		"value": map[string]interface{}{
			"blockhash":            "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N",
			"lastValidBlockHeight": 300000000,
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	hash, err := client.GetLatestBlockhash(context.Background())
	if err != nil {
		t.Fatalf("GetLatestBlockhash: %v", err)
	}
	if hash != "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N" {
		t.Errorf("unexpected blockhash %q", hash)
	}
}

func TestHTTPClient_GetBalance(t *testing.T) {
	server := rpcTestServer(t, "getBalance", map[string]interface{}{
		"value": uint64(5_000_000_000),
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	balance, err := client.GetBalance(context.Background(), "addr")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance != 5_000_000_000 {
		t.Errorf("expected 5000000000, got %d", balance)
	}
}

func TestHTTPClient_GetTransaction(t *testing.T) {
	server := rpcTestServer(t, "getTransaction", map[string]interface{}{
		"slot":      int64(123456),
		"blockTime": int64(1700000000),
		"meta": map[string]interface{}{
			"err":          nil,
			"preBalances":  []uint64{900_000_000, 100},
			"postBalances": []uint64{599_000_000, 300_000_100},
			"logMessages":  []string{"Program 11111111111111111111111111111111 invoke [1]"},
		},
		"transaction": map[string]interface{}{
			"message": map[string]interface{}{
				"accountKeys": []string{"payer", "recipient", "11111111111111111111111111111111"},
				"instructions": []map[string]interface{}{
					{"programIdIndex": 2, "accounts": []int{0, 1}, "data": "3Bxs4Z6oyhaczjLK"},
				},
			},
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	tx, err := client.GetTransaction(context.Background(), "testsig123")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if tx == nil {
		t.Fatal("expected transaction, got nil")
	}
	if tx.Slot != 123456 {
		t.Errorf("expected slot 123456, got %d", tx.Slot)
	}
	if tx.Meta == nil || len(tx.Meta.PostBalances) != 2 {
		t.Fatalf("expected 2 post balances, got %+v", tx.Meta)
	}
	if tx.Meta.PostBalances[1]-tx.Meta.PreBalances[1] != 300_000_000 {
		t.Errorf("unexpected balance delta")
	}
	if tx.Message == nil || len(tx.Message.Instructions) != 1 {
		t.Fatalf("expected 1 instruction, got %+v", tx.Message)
	}
	if got := tx.Message.Instructions[0].ProgramID(tx.Message.AccountKeys); got != "11111111111111111111111111111111" {
		t.Errorf("unexpected program id %q", got)
	}
}

func TestHTTPClient_GetTransaction_NotFound(t *testing.T) {
	server := rpcTestServer(t, "getTransaction", nil)
	defer server.Close()

	client := NewHTTPClient(server.URL)
	tx, err := client.GetTransaction(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if tx != nil {
		t.Errorf("expected nil for not found, got %+v", tx)
	}
}

func TestHTTPClient_RPCErrorNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": -32602, "message": "invalid params"},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(3))
	_, err := client.GetBalance(context.Background(), "bad")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("RPC error should not be retried, got %d calls", calls)
	}
}
