package addressing

import (
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	walletAddr = "BeEbsaq4dKfzZQBK6zet4wj8UJCTF9zzU7QLgWpERqBg"
	systemProg = "11111111111111111111111111111111"
)

func TestParse(t *testing.T) {
	key, err := Parse(walletAddr)
	require.NoError(t, err)
	assert.Equal(t, walletAddr, base58.Encode(key[:]))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not base58", "0OIl+/="},
		{"too short", "abc"},
		{"too long", strings.Repeat("1", 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}

func TestIsOnCurve(t *testing.T) {
	onCurve, err := IsOnCurve(walletAddr)
	require.NoError(t, err)
	assert.True(t, onCurve)

	// The system program address (all zero bytes after the identity prefix)
	// decodes but is not a valid curve point representation of a wallet.
	_, err = IsOnCurve(systemProg)
	require.NoError(t, err)
}

func TestValidSignature(t *testing.T) {
	sig := base58.Encode(make([]byte, 64))
	assert.True(t, ValidSignature(sig))
	assert.False(t, ValidSignature(walletAddr))
	assert.False(t, ValidSignature(""))
}
