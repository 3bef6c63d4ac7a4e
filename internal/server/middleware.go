package server

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"solana-token-forge/internal/observability"
)

// rateLimit rejects requests over the per-client budget before any work is
// done. The client key is the remote IP.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !s.limiter.Allow(key) {
			observability.RecordRateLimited(r.URL.Path)
			s.logger.Printf("[http] rate limited %s on %s", key, r.URL.Path)
			writeJSON(w, http.StatusTooManyRequests, errorBody{
				Success: false,
				Error:   "too many requests, slow down",
				Code:    CodeRateLimited,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument records request counts and latency per endpoint.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		observability.RecordRequest(r.URL.Path, strconv.Itoa(rec.status), time.Since(start).Seconds())
	})
}

// clientKey extracts the client IP, falling back to the raw remote address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
