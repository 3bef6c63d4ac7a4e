package pinning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("pinata_api_key"))
		assert.Equal(t, "secret", r.Header.Get("pinata_secret_api_key"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "image.png", header.Filename)

		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "QmImageHash"})
	}))
	defer server.Close()

	client := NewClient("key", "secret", WithBaseURL(server.URL), WithGatewayURL("https://gw.test/ipfs"))
	uri, err := client.UploadFile(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image.png")
	require.NoError(t, err)
	assert.Equal(t, "https://gw.test/ipfs/QmImageHash", uri)
}

func TestUploadFile_Empty(t *testing.T) {
	client := NewClient("key", "secret")
	_, err := client.UploadFile(context.Background(), nil, "image.png")
	assert.ErrorIs(t, err, ErrUpload)
}

func TestUploadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinJSONToIPFS", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var doc map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		assert.Equal(t, "Pepe Coin", doc["name"])

		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "QmJsonHash"})
	}))
	defer server.Close()

	client := NewClient("key", "secret", WithBaseURL(server.URL))
	uri, err := client.UploadJSON(context.Background(), map[string]string{"name": "Pepe Coin"})
	require.NoError(t, err)
	assert.Equal(t, DefaultGatewayURL+"/QmJsonHash", uri)
}

func TestUploadJSON_ServiceRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad", "creds", WithBaseURL(server.URL))
	_, err := client.UploadJSON(context.Background(), map[string]string{"name": "x"})
	require.ErrorIs(t, err, ErrUpload)
	assert.Contains(t, err.Error(), "401")
}

func TestUploadJSON_EmptyHash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := NewClient("key", "secret", WithBaseURL(server.URL))
	_, err := client.UploadJSON(context.Background(), map[string]string{"name": "x"})
	assert.ErrorIs(t, err, ErrUpload)
}
