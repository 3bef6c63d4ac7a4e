package domain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Validation limits for token descriptors. Name and symbol limits come from
// the Metaplex token metadata program's account layout.
const (
	MaxNameBytes   = 32
	MaxSymbolBytes = 10
	MaxDecimals    = 9
	MaxSupply      = 1_000_000_000_000 // 10^12 whole tokens
)

// Validation errors. All are detected before any network I/O.
var (
	ErrNameRequired    = errors.New("token name is required")
	ErrNameTooLong     = fmt.Errorf("token name exceeds %d bytes", MaxNameBytes)
	ErrSymbolRequired  = errors.New("token symbol is required")
	ErrSymbolTooLong   = fmt.Errorf("token symbol exceeds %d bytes", MaxSymbolBytes)
	ErrInvalidDecimals = fmt.Errorf("decimals must be between 0 and %d", MaxDecimals)
	ErrInvalidSupply   = errors.New("supply must be positive and within bounds")
	ErrAmountOverflow  = errors.New("supply * 10^decimals exceeds u64 range")
)

// AuthorityOptions carries the user's authority toggles. Override addresses,
// when set, replace the default (recipient) for that authority.
type AuthorityOptions struct {
	RevokeMintAuthority     bool   `json:"revoke_mint_authority"`
	FreezeAuthority         bool   `json:"freeze_authority"`
	RevokeUpdateAuthority   bool   `json:"revoke_update_authority"`
	MintAuthorityOverride   string `json:"mint_authority,omitempty"`
	FreezeAuthorityOverride string `json:"freeze_authority_address,omitempty"`
	UpdateAuthorityOverride string `json:"update_authority,omitempty"`
}

// CreatorInfo identifies the token creator as supplied by the client.
type CreatorInfo struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

// SocialLinks holds optional social/creator attributes attached to metadata.
type SocialLinks struct {
	Website  string `json:"website,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	Discord  string `json:"discord,omitempty"`
	Github   string `json:"github,omitempty"`
}

// TokenDescriptor is the validated user input for one token creation request.
type TokenDescriptor struct {
	Name             string
	Symbol           string
	Description      string
	Decimals         int
	Supply           uint64
	RecipientAddress string // fee payer and token holder, base58
	MintAddress      string // freshly generated mint account, base58
	Creator          *CreatorInfo
	Social           *SocialLinks
	Authority        AuthorityOptions
}

// NormalizeSymbol upper-cases and trims a symbol the way the on-chain
// metadata stores it.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Validate checks descriptor fields that do not require network access.
// Address validity is checked separately by the addressing package.
func (d *TokenDescriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	if len(d.Name) > MaxNameBytes {
		return ErrNameTooLong
	}
	if strings.TrimSpace(d.Symbol) == "" {
		return ErrSymbolRequired
	}
	if len(d.Symbol) > MaxSymbolBytes {
		return ErrSymbolTooLong
	}
	if d.Decimals < 0 || d.Decimals > MaxDecimals {
		return ErrInvalidDecimals
	}
	if d.Supply == 0 || d.Supply > MaxSupply {
		return ErrInvalidSupply
	}
	return nil
}

// BaseUnits computes supply * 10^decimals exactly. The multiplication is done
// in big.Int because the product can exceed the float64-safe integer range
// long before it exceeds u64. Returns ErrAmountOverflow if the result does
// not fit the ledger's u64 amount field.
func (d *TokenDescriptor) BaseUnits() (uint64, error) {
	amount := new(big.Int).SetUint64(d.Supply)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.Decimals)), nil)
	amount.Mul(amount, scale)
	if !amount.IsUint64() {
		return 0, ErrAmountOverflow
	}
	return amount.Uint64(), nil
}
