// Package addressing parses and validates Solana account addresses.
package addressing

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// AddressLen is the raw byte length of a Solana public key.
const AddressLen = 32

// ErrInvalidAddress is returned for input that does not decode to a 32-byte
// public key. Never retried: bad input cannot become valid.
var ErrInvalidAddress = errors.New("invalid address")

// Parse decodes a base58 address and checks its length.
func Parse(address string) ([AddressLen]byte, error) {
	var key [AddressLen]byte
	if address == "" {
		return key, fmt.Errorf("%w: empty string", ErrInvalidAddress)
	}
	decoded, err := base58.Decode(address)
	if err != nil {
		return key, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	if len(decoded) != AddressLen {
		return key, fmt.Errorf("%w: decoded to %d bytes, want %d", ErrInvalidAddress, len(decoded), AddressLen)
	}
	copy(key[:], decoded)
	return key, nil
}

// Validate reports whether the address is a well-formed public key.
func Validate(address string) error {
	_, err := Parse(address)
	return err
}

// IsOnCurve reports whether the address decodes to a point on the ed25519
// curve. Wallet addresses are on-curve; program-derived addresses are not.
func IsOnCurve(address string) (bool, error) {
	key, err := Parse(address)
	if err != nil {
		return false, err
	}
	if _, err := new(edwards25519.Point).SetBytes(key[:]); err != nil {
		return false, nil
	}
	return true, nil
}

// ValidSignature reports whether s looks like a transaction signature:
// base58 text decoding to 64 bytes.
func ValidSignature(s string) bool {
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == 64
}
