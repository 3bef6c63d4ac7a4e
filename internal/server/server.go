// Package server exposes the token creation service over HTTP and WebSocket.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/metadata"
	"solana-token-forge/internal/ratelimit"
	"solana-token-forge/internal/solana"
)

// MetadataPublisher publishes token metadata to the pinning service.
type MetadataPublisher interface {
	Publish(ctx context.Context, req metadata.Request) (*metadata.Result, error)
}

// TransactionBuilder assembles unsigned token creation transactions.
type TransactionBuilder interface {
	Build(ctx context.Context, desc domain.TokenDescriptor, metadataURL string) (string, error)
}

// PaymentVerifier confirms fee payments on-chain.
type PaymentVerifier interface {
	Verify(ctx context.Context, signature, expectedPayer string) (*domain.PaymentRecord, error)
}

// PaymentRecordLister reads back verified payment records for a payer.
type PaymentRecordLister interface {
	GetByPayer(ctx context.Context, payer string) ([]*domain.PaymentRecord, error)
}

// Server holds the request handlers and their collaborators.
type Server struct {
	publisher MetadataPublisher
	builder   TransactionBuilder
	verifier  PaymentVerifier
	records   PaymentRecordLister
	rpc       solana.RPCClient
	limiter   ratelimit.Limiter
	logger    *log.Logger
	started   time.Time

	// dev exposes internal error detail in responses.
	dev bool
}

// Options configures a Server.
type Options struct {
	Publisher MetadataPublisher
	Builder   TransactionBuilder
	Verifier  PaymentVerifier
	Records   PaymentRecordLister
	RPC       solana.RPCClient
	Limiter   ratelimit.Limiter
	Logger    *log.Logger
	Dev       bool
}

// New creates a Server. A nil limiter disables rate limiting.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Unlimited{}
	}
	return &Server{
		publisher: opts.Publisher,
		builder:   opts.Builder,
		verifier:  opts.Verifier,
		records:   opts.Records,
		rpc:       opts.RPC,
		limiter:   opts.Limiter,
		logger:    opts.Logger,
		started:   time.Now(),
		dev:       opts.Dev,
	}
}

// Router builds the HTTP routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Use(s.instrument)

		r.Post("/upload-metadata", s.handleUploadMetadata)
		r.Post("/create-token", s.handleCreateToken)
		r.Post("/verify-payment", s.handleVerifyPayment)
		r.Get("/payments", s.handleListPayments)
		r.Get("/get-balance", s.handleGetBalance)
		r.Get("/get-blockhash", s.handleGetBlockhash)
	})

	r.Get("/ws/create-token", s.handleCreateTokenWS)

	return r
}
