// Package main runs the token creation service: metadata publishing, unsigned
// transaction assembly, and fee payment verification behind one HTTP/WebSocket
// surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/metadata"
	"solana-token-forge/internal/observability"
	"solana-token-forge/internal/pinning"
	"solana-token-forge/internal/ratelimit"
	"solana-token-forge/internal/server"
	"solana-token-forge/internal/solana"
	"solana-token-forge/internal/storage"
	"solana-token-forge/internal/storage/memory"
	"solana-token-forge/internal/storage/migrations"
	pgstore "solana-token-forge/internal/storage/postgres"
	"solana-token-forge/internal/txbuilder"
	"solana-token-forge/internal/verification"
)

const defaultRPCEndpoints = "https://api.mainnet-beta.solana.com"

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	metricsAddr := flag.String("metrics-addr", envOr("METRICS_ADDR", ":9090"), "Prometheus metrics HTTP address")
	rpcEndpoints := flag.String("rpc-endpoints", envOr("SOLANA_RPC_ENDPOINTS", defaultRPCEndpoints), "Comma-separated Solana RPC endpoints, tried in order")
	pinataAPIKey := flag.String("pinata-api-key", os.Getenv("PINATA_API_KEY"), "Pinata API key")
	pinataSecret := flag.String("pinata-secret-key", os.Getenv("PINATA_SECRET_KEY"), "Pinata secret API key")
	feeRecipient := flag.String("fee-recipient", os.Getenv("FEE_RECIPIENT"), "Address fee payments must arrive at")
	feeSOL := flag.Float64("fee-sol", 0.3, "Service fee in SOL")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string for payment records (optional)")
	rateLimit := flag.Int("rate-limit", 10, "Requests allowed per client per window")
	rateWindow := flag.Duration("rate-window", time.Minute, "Rate limit window")
	dev := flag.Bool("dev", false, "Expose internal error detail in responses")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *pinataAPIKey == "" || *pinataSecret == "" {
		logger.Fatal("--pinata-api-key and --pinata-secret-key are required")
	}
	if *feeRecipient == "" {
		logger.Fatal("--fee-recipient is required")
	}

	endpoints := splitList(*rpcEndpoints)
	if len(endpoints) == 0 {
		logger.Fatal("--rpc-endpoints must name at least one endpoint")
	}
	logger.Printf("RPC endpoints: %v", endpoints)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shared RPC pool with endpoint fallback
	rpc := solana.NewPool(endpoints, solana.WithLogger(logger))

	// Core components
	pinner := pinning.NewClient(*pinataAPIKey, *pinataSecret)
	publisher := metadata.NewPublisher(pinner, log.New(os.Stdout, "[metadata] ", log.LstdFlags))
	builder := txbuilder.NewBuilder(rpc, log.New(os.Stdout, "[builder] ", log.LstdFlags))

	recordStore, cleanup, err := setupRecordStore(ctx, *postgresDSN, logger)
	if err != nil {
		logger.Fatalf("Failed to set up payment record store: %v", err)
	}
	defer cleanup()

	verifier, err := verification.NewVerifier(rpc, verification.Config{
		FeeRecipient:     *feeRecipient,
		ExpectedLamports: uint64(*feeSOL * domain.LamportsPerSOL),
	}, log.New(os.Stdout, "[verify] ", log.LstdFlags), verification.WithRecordStore(recordStore))
	if err != nil {
		logger.Fatalf("Failed to create verifier: %v", err)
	}

	srv := server.New(server.Options{
		Publisher: publisher,
		Builder:   builder,
		Verifier:  verifier,
		Records:   recordStore,
		RPC:       rpc,
		Limiter:   ratelimit.NewWindow(*rateLimit, *rateWindow),
		Logger:    logger,
		Dev:       *dev,
	})

	httpServer := &http.Server{
		Addr:              *listenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		for range time.Tick(time.Second) {
			observability.DefaultMetrics.UptimeSeconds.Inc()
		}
	}()

	// Prometheus metrics on a separate listener
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		logger.Printf("Metrics listening on %s", *metricsAddr)
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
			logger.Printf("Metrics server error: %v", err)
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Graceful shutdown failed: %v", err)
			httpServer.Close()
		}
	}()

	logger.Printf("Listening on %s (fee %.2f SOL to %s)", *listenAddr, *feeSOL, *feeRecipient)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// setupRecordStore connects the payment record store: Postgres when a DSN is
// configured, in-memory otherwise. In-memory records do not survive restarts,
// so repeated verifications after a restart poll the ledger again.
func setupRecordStore(ctx context.Context, dsn string, logger *log.Logger) (storage.PaymentRecordStore, func(), error) {
	if dsn == "" {
		logger.Println("No Postgres DSN, keeping payment records in memory")
		return memory.NewPaymentRecordStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Println("Payment records persisted to Postgres")
	return pgstore.NewPaymentRecordStore(pool), pool.Close, nil
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envOr returns the environment value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
