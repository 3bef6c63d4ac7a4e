// Package pinning uploads assets to an IPFS pinning service.
package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"solana-token-forge/internal/observability"
)

// Default Pinata endpoints.
const (
	DefaultAPIBase    = "https://api.pinata.cloud"
	DefaultGatewayURL = "https://gateway.pinata.cloud/ipfs"
	DefaultTimeout    = 30 * time.Second
)

// ErrUpload is the sentinel for pinning service failures.
var ErrUpload = errors.New("pinning upload failed")

// Pinner stores bytes and returns a dereferenceable content URI.
type Pinner interface {
	// UploadFile pins raw bytes under a filename and returns the gateway URI.
	UploadFile(ctx context.Context, data []byte, filename string) (string, error)
	// UploadJSON pins a JSON document and returns the gateway URI.
	UploadJSON(ctx context.Context, document interface{}) (string, error)
}

// Client is a Pinata HTTP client.
type Client struct {
	client     *http.Client
	baseURL    string
	gatewayURL string
	apiKey     string
	secretKey  string
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithGatewayURL overrides the gateway URL used to build content URIs.
func WithGatewayURL(u string) Option {
	return func(c *Client) {
		c.gatewayURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a Pinata client with the given API key pair.
func NewClient(apiKey, secretKey string, opts ...Option) *Client {
	c := &Client{
		client:     &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultAPIBase,
		gatewayURL: DefaultGatewayURL,
		apiKey:     apiKey,
		secretKey:  secretKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Pinner = (*Client)(nil)

// pinResponse is the Pinata pinning response body.
type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// UploadFile pins raw bytes via pinFileToIPFS.
func (c *Client) UploadFile(ctx context.Context, data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrUpload)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: create form file: %v", ErrUpload, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: write form file: %v", ErrUpload, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: close form: %v", ErrUpload, err)
	}

	return c.pin(ctx, "file", "/pinning/pinFileToIPFS", &body, writer.FormDataContentType())
}

// UploadJSON pins a document via pinJSONToIPFS.
func (c *Client) UploadJSON(ctx context.Context, document interface{}) (string, error) {
	payload, err := json.Marshal(document)
	if err != nil {
		return "", fmt.Errorf("%w: marshal document: %v", ErrUpload, err)
	}
	return c.pin(ctx, "json", "/pinning/pinJSONToIPFS", bytes.NewReader(payload), "application/json")
}

func (c *Client) pin(ctx context.Context, kind, path string, body io.Reader, contentType string) (uri string, err error) {
	start := time.Now()
	defer func() {
		observability.RecordUpload(kind, time.Since(start).Seconds(), err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUpload, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", ErrUpload, resp.StatusCode, string(respBody))
	}

	var result pinResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpload, err)
	}
	if result.IpfsHash == "" {
		return "", fmt.Errorf("%w: response has empty IpfsHash", ErrUpload)
	}

	return c.gatewayURL + "/" + result.IpfsHash, nil
}
