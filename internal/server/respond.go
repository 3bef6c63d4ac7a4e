package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"solana-token-forge/internal/addressing"
	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/pinning"
	"solana-token-forge/internal/solana"
	"solana-token-forge/internal/verification"
)

// Error classification codes returned to clients.
const (
	CodeInvalidInput        = "InvalidInput"
	CodeInvalidAddress      = "InvalidAddressError"
	CodeRateLimited         = "RateLimited"
	CodeNetworkError        = "NetworkError"
	CodeUploadError         = "UploadError"
	CodePaymentMismatch     = "PaymentMismatchError"
	CodeOnChainFailure      = "OnChainFailureError"
	CodeVerificationTimeout = "VerificationTimeout"
	CodeInternal            = "InternalError"
)

// errorBody is the envelope for failed requests.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError classifies err and writes the error envelope. Internal detail is
// only exposed in dev mode; production clients get the classification alone.
func (s *Server) writeError(w http.ResponseWriter, endpoint string, err error) {
	status, code := classify(err)

	msg := http.StatusText(status)
	if s.dev || status < http.StatusInternalServerError {
		msg = err.Error()
	}

	if status >= http.StatusInternalServerError {
		s.logger.Printf("[http] %s failed: %v", endpoint, err)
	}

	writeJSON(w, status, errorBody{Success: false, Error: msg, Code: code})
}

// classify maps an error to an HTTP status and a stable classification code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, addressing.ErrInvalidAddress):
		return http.StatusBadRequest, CodeInvalidAddress
	case errors.Is(err, verification.ErrInvalidSignature):
		return http.StatusBadRequest, CodeInvalidInput
	case isValidationError(err):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, verification.ErrPaymentMismatch):
		return http.StatusPaymentRequired, CodePaymentMismatch
	case errors.Is(err, verification.ErrOnChainFailure):
		return http.StatusPaymentRequired, CodeOnChainFailure
	case errors.Is(err, verification.ErrVerificationTimeout):
		return http.StatusGatewayTimeout, CodeVerificationTimeout
	case errors.Is(err, pinning.ErrUpload):
		return http.StatusBadGateway, CodeUploadError
	case isNetworkError(err):
		return http.StatusBadGateway, CodeNetworkError
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		domain.ErrNameRequired, domain.ErrNameTooLong,
		domain.ErrSymbolRequired, domain.ErrSymbolTooLong,
		domain.ErrInvalidDecimals, domain.ErrInvalidSupply,
		domain.ErrAmountOverflow,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isNetworkError(err error) bool {
	var netErr *solana.NetworkError
	return errors.As(err, &netErr)
}
