package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"solana-token-forge/internal/addressing"
	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/metadata"
	"solana-token-forge/internal/observability"
)

// uploadMetadataRequest is the POST /api/upload-metadata body.
type uploadMetadataRequest struct {
	Name        string              `json:"name"`
	Symbol      string              `json:"symbol"`
	Description string              `json:"description,omitempty"`
	ImageBase64 string              `json:"imageBase64,omitempty"`
	Creator     *domain.CreatorInfo `json:"creator,omitempty"`
	Social      *domain.SocialLinks `json:"social,omitempty"`
}

type uploadMetadataResponse struct {
	Success     bool   `json:"success"`
	MetadataURI string `json:"metadataURI"`
	ImageURL    string `json:"imageURL,omitempty"`
	Warning     string `json:"warning,omitempty"`
}

func (s *Server) handleUploadMetadata(w http.ResponseWriter, r *http.Request) {
	var req uploadMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, r, "invalid JSON body")
		return
	}

	result, err := s.publisher.Publish(r.Context(), metadata.Request{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
		ImageBase64: req.ImageBase64,
		Creator:     req.Creator,
		Social:      req.Social,
	})
	if err != nil {
		s.writeError(w, "upload-metadata", err)
		return
	}

	writeJSON(w, http.StatusOK, uploadMetadataResponse{
		Success:     true,
		MetadataURI: result.MetadataURL,
		ImageURL:    result.ImageURL,
		Warning:     result.ImageWarning,
	})
}

// createTokenRequest is the POST /api/create-token body. When metadataURI is
// absent the metadata (and optional image) is published first and the
// resulting URI goes into the transaction, mirroring the WebSocket flow.
type createTokenRequest struct {
	Name             string                   `json:"name"`
	Symbol           string                   `json:"symbol"`
	Description      string                   `json:"description,omitempty"`
	ImageBase64      string                   `json:"imageBase64,omitempty"`
	Decimals         int                      `json:"decimals"`
	Supply           uint64                   `json:"supply"`
	RecipientAddress string                   `json:"recipientAddress"`
	MintAddress      string                   `json:"mintAddress"`
	MetadataURI      string                   `json:"metadataURI,omitempty"`
	Creator          *domain.CreatorInfo      `json:"creator,omitempty"`
	Social           *domain.SocialLinks      `json:"social,omitempty"`
	AuthorityOptions *domain.AuthorityOptions `json:"authorityOptions,omitempty"`
}

type createTokenResponse struct {
	Success               bool   `json:"success"`
	MetadataURI           string `json:"metadataURI"`
	ImageURL              string `json:"imageURL,omitempty"`
	Warning               string `json:"warning,omitempty"`
	SerializedTransaction string `json:"serializedTransaction"`
}

func (r createTokenRequest) descriptor() domain.TokenDescriptor {
	desc := domain.TokenDescriptor{
		Name:             r.Name,
		Symbol:           domain.NormalizeSymbol(r.Symbol),
		Description:      r.Description,
		Decimals:         r.Decimals,
		Supply:           r.Supply,
		RecipientAddress: r.RecipientAddress,
		MintAddress:      r.MintAddress,
		Creator:          r.Creator,
		Social:           r.Social,
	}
	if r.AuthorityOptions != nil {
		desc.Authority = *r.AuthorityOptions
	}
	return desc
}

func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	var req createTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, r, "invalid JSON body")
		return
	}

	desc := req.descriptor()
	if err := desc.Validate(); err != nil {
		observability.RecordValidationFailure(r.URL.Path)
		s.writeError(w, "create-token", err)
		return
	}

	resp := createTokenResponse{MetadataURI: req.MetadataURI}
	if req.MetadataURI == "" {
		result, err := s.publisher.Publish(r.Context(), metadata.Request{
			Name:        req.Name,
			Symbol:      req.Symbol,
			Description: req.Description,
			ImageBase64: req.ImageBase64,
			Creator:     req.Creator,
			Social:      req.Social,
		})
		if err != nil {
			s.writeError(w, "create-token", err)
			return
		}
		resp.MetadataURI = result.MetadataURL
		resp.ImageURL = result.ImageURL
		resp.Warning = result.ImageWarning
	}

	encoded, err := s.builder.Build(r.Context(), desc, resp.MetadataURI)
	if err != nil {
		s.writeError(w, "create-token", err)
		return
	}

	observability.RecordTransactionBuilt(desc.Authority.RevokeMintAuthority)
	resp.Success = true
	resp.SerializedTransaction = encoded
	writeJSON(w, http.StatusOK, resp)
}

// verifyPaymentRequest is the POST /api/verify-payment body.
type verifyPaymentRequest struct {
	Signature     string `json:"signature"`
	ExpectedPayer string `json:"expectedPayer"`
}

type verifyPaymentResponse struct {
	Success   bool    `json:"success"`
	Verified  bool    `json:"verified"`
	Amount    float64 `json:"amount"`
	Payer     string  `json:"payer"`
	Recipient string  `json:"recipient"`
	Timestamp int64   `json:"timestamp"`
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, r, "invalid JSON body")
		return
	}
	if req.Signature == "" || req.ExpectedPayer == "" {
		s.badRequest(w, r, "signature and expectedPayer are required")
		return
	}

	rec, err := s.verifier.Verify(r.Context(), req.Signature, req.ExpectedPayer)
	if err != nil {
		_, code := classify(err)
		observability.RecordVerification(code, 0)
		s.writeError(w, "verify-payment", err)
		return
	}

	observability.RecordVerification("verified", rec.AmountSOL)
	writeJSON(w, http.StatusOK, verifyPaymentResponse{
		Success:   true,
		Verified:  rec.Verified,
		Amount:    rec.AmountSOL,
		Payer:     rec.Payer,
		Recipient: rec.Recipient,
		Timestamp: rec.VerifiedAt,
	})
}

type paymentItem struct {
	Signature string  `json:"signature"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
	Lamports  uint64  `json:"lamports"`
	Timestamp int64   `json:"timestamp"`
}

type listPaymentsResponse struct {
	Success  bool          `json:"success"`
	Payer    string        `json:"payer"`
	Payments []paymentItem `json:"payments"`
}

// handleListPayments returns the verified payments recorded for a payer,
// oldest first. An empty list is returned when no record store is wired,
// matching a verifier that never persisted anything.
func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payer := r.URL.Query().Get("payer")
	if err := addressing.Validate(payer); err != nil {
		s.writeError(w, "payments", err)
		return
	}

	items := []paymentItem{}
	if s.records != nil {
		recs, err := s.records.GetByPayer(r.Context(), payer)
		if err != nil {
			s.writeError(w, "payments", err)
			return
		}
		for _, rec := range recs {
			items = append(items, paymentItem{
				Signature: rec.Signature,
				Recipient: rec.Recipient,
				Amount:    rec.AmountSOL,
				Lamports:  rec.Lamports,
				Timestamp: rec.VerifiedAt,
			})
		}
	}

	writeJSON(w, http.StatusOK, listPaymentsResponse{
		Success:  true,
		Payer:    payer,
		Payments: items,
	})
}

type balanceResponse struct {
	Success  bool    `json:"success"`
	Address  string  `json:"address"`
	Lamports uint64  `json:"lamports"`
	SOL      float64 `json:"sol"`
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if err := addressing.Validate(address); err != nil {
		s.writeError(w, "get-balance", err)
		return
	}

	lamports, err := s.rpc.GetBalance(r.Context(), address)
	if err != nil {
		s.writeError(w, "get-balance", err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		Success:  true,
		Address:  address,
		Lamports: lamports,
		SOL:      float64(lamports) / domain.LamportsPerSOL,
	})
}

type blockhashResponse struct {
	Success   bool   `json:"success"`
	Blockhash string `json:"blockhash"`
}

func (s *Server) handleGetBlockhash(w http.ResponseWriter, r *http.Request) {
	blockhash, err := s.rpc.GetLatestBlockhash(r.Context())
	if err != nil {
		s.writeError(w, "get-blockhash", err)
		return
	}

	writeJSON(w, http.StatusOK, blockhashResponse{Success: true, Blockhash: blockhash})
}

type healthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.started).Seconds(),
	})
}

// badRequest rejects malformed input before any network work.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	observability.RecordValidationFailure(r.URL.Path)
	writeJSON(w, http.StatusBadRequest, errorBody{
		Success: false,
		Error:   fmt.Sprintf("bad request: %s", msg),
		Code:    CodeInvalidInput,
	})
}
