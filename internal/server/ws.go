package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/metadata"
	"solana-token-forge/internal/observability"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1 << 20, // images arrive inline as base64
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// wsCreateRequest is one create_token command. It carries the full descriptor
// so the publish and build steps run back to back on the server.
type wsCreateRequest struct {
	Command          string                   `json:"command"`
	Name             string                   `json:"name"`
	Symbol           string                   `json:"symbol"`
	Description      string                   `json:"description,omitempty"`
	ImageBase64      string                   `json:"imageBase64,omitempty"`
	Decimals         int                      `json:"decimals"`
	Supply           uint64                   `json:"supply"`
	RecipientAddress string                   `json:"recipientAddress"`
	MintAddress      string                   `json:"mintAddress"`
	Creator          *domain.CreatorInfo      `json:"creator,omitempty"`
	Social           *domain.SocialLinks      `json:"social,omitempty"`
	AuthorityOptions *domain.AuthorityOptions `json:"authorityOptions,omitempty"`
}

// wsResponse is the server-to-client message envelope.
type wsResponse struct {
	Type                  string `json:"type"`
	MetadataURI           string `json:"metadataURI,omitempty"`
	ImageURL              string `json:"imageURL,omitempty"`
	Warning               string `json:"warning,omitempty"`
	SerializedTransaction string `json:"serializedTransaction,omitempty"`
	Error                 string `json:"error,omitempty"`
	Code                  string `json:"code,omitempty"`
}

// handleCreateTokenWS runs the publish-then-build flow over a WebSocket. One
// connection can issue multiple create_token commands in sequence.
func (s *Server) handleCreateTokenWS(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientKey(r)) {
		observability.RecordRateLimited(r.URL.Path)
		writeJSON(w, http.StatusTooManyRequests, errorBody{
			Success: false,
			Error:   "too many requests, slow down",
			Code:    CodeRateLimited,
		})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req wsCreateRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Printf("[ws] read failed: %v", err)
			}
			return
		}

		if req.Command != "create_token" {
			s.writeWSError(conn, "unknown command: "+req.Command, CodeInvalidInput)
			continue
		}

		s.serveCreateToken(r, conn, req)
	}
}

// serveCreateToken publishes metadata and builds the transaction for one
// command, reporting either transaction_ready or error.
func (s *Server) serveCreateToken(r *http.Request, conn *websocket.Conn, req wsCreateRequest) {
	result, err := s.publisher.Publish(r.Context(), metadata.Request{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
		ImageBase64: req.ImageBase64,
		Creator:     req.Creator,
		Social:      req.Social,
	})
	if err != nil {
		_, code := classify(err)
		s.writeWSError(conn, err.Error(), code)
		return
	}

	desc := domain.TokenDescriptor{
		Name:             req.Name,
		Symbol:           domain.NormalizeSymbol(req.Symbol),
		Description:      req.Description,
		Decimals:         req.Decimals,
		Supply:           req.Supply,
		RecipientAddress: req.RecipientAddress,
		MintAddress:      req.MintAddress,
		Creator:          req.Creator,
		Social:           req.Social,
	}
	if req.AuthorityOptions != nil {
		desc.Authority = *req.AuthorityOptions
	}

	encoded, err := s.builder.Build(r.Context(), desc, result.MetadataURL)
	if err != nil {
		_, code := classify(err)
		s.writeWSError(conn, err.Error(), code)
		return
	}

	observability.RecordTransactionBuilt(desc.Authority.RevokeMintAuthority)
	if err := conn.WriteJSON(wsResponse{
		Type:                  "transaction_ready",
		MetadataURI:           result.MetadataURL,
		ImageURL:              result.ImageURL,
		Warning:               result.ImageWarning,
		SerializedTransaction: encoded,
	}); err != nil {
		s.logger.Printf("[ws] write failed: %v", err)
	}
}

func (s *Server) writeWSError(conn *websocket.Conn, msg, code string) {
	if err := conn.WriteJSON(wsResponse{Type: "error", Error: msg, Code: code}); err != nil {
		s.logger.Printf("[ws] write failed: %v", err)
	}
}
