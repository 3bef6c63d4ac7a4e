// Package txbuilder assembles unsigned token-creation transactions.
package txbuilder

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"

	"solana-token-forge/internal/addressing"
	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/solana"
)

// signatureLen is the byte length of an ed25519 signature placeholder.
const signatureLen = 64

// Builder produces serialized, unsigned token-creation transactions.
// It reads rent and blockhash from the ledger but never signs or submits.
type Builder struct {
	rpc    solana.RPCClient
	logger *log.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(rpc solana.RPCClient, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{rpc: rpc, logger: logger}
}

// Build assembles the token-creation transaction for a validated descriptor
// and returns it base64-encoded with zeroed signature placeholders. The
// instruction order is fixed: each instruction's preconditions depend on the
// previous one having executed in the same transaction.
//
//	0: create mint account (system program)
//	1: initialize mint (decimals, authorities)
//	2: create associated token account for the recipient
//	3: mint supply * 10^decimals base units to it
//	4: create metadata account (name, symbol, URI, mutability)
//	5: revoke mint authority (only when requested)
func (b *Builder) Build(ctx context.Context, desc domain.TokenDescriptor, metadataURL string) (string, error) {
	if err := desc.Validate(); err != nil {
		return "", err
	}

	amount, err := desc.BaseUnits()
	if err != nil {
		return "", err
	}

	recipient, err := parseKey(desc.RecipientAddress)
	if err != nil {
		return "", fmt.Errorf("recipient: %w", err)
	}
	if onCurve, err := addressing.IsOnCurve(desc.RecipientAddress); err != nil || !onCurve {
		return "", fmt.Errorf("recipient: %w: not a wallet address", addressing.ErrInvalidAddress)
	}
	mint, err := parseKey(desc.MintAddress)
	if err != nil {
		return "", fmt.Errorf("mint: %w", err)
	}

	authorities := domain.ResolveAuthorities(desc.RecipientAddress, desc.Authority)
	mintAuth, err := parseKey(authorities.MintAuthority)
	if err != nil {
		return "", fmt.Errorf("mint authority: %w", err)
	}
	var freezeAuth *common.PublicKey
	if authorities.FreezeAuthority != "" {
		key, err := parseKey(authorities.FreezeAuthority)
		if err != nil {
			return "", fmt.Errorf("freeze authority: %w", err)
		}
		freezeAuth = &key
	}
	updateAuth := recipient
	if authorities.UpdateAuthority != "" {
		if updateAuth, err = parseKey(authorities.UpdateAuthority); err != nil {
			return "", fmt.Errorf("update authority: %w", err)
		}
	}

	// Rent changes with cluster configuration: always queried, never cached
	// across requests.
	rent, err := b.rpc.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return "", fmt.Errorf("query rent exemption: %w", err)
	}

	ata, _, err := common.FindAssociatedTokenAddress(recipient, mint)
	if err != nil {
		return "", fmt.Errorf("derive associated token account: %w", err)
	}

	metadataAccount, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return "", fmt.Errorf("derive metadata account: %w", err)
	}

	instructions := []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     recipient,
			New:      mint,
			Owner:    common.TokenProgramID,
			Lamports: rent,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   uint8(desc.Decimals),
			Mint:       mint,
			MintAuth:   mintAuth,
			FreezeAuth: freezeAuth,
		}),
		associated_token_account.CreateAssociatedTokenAccount(associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 recipient,
			Owner:                  recipient,
			Mint:                   mint,
			AssociatedTokenAccount: ata,
		}),
		token.MintTo(token.MintToParam{
			Mint:   mint,
			To:     ata,
			Auth:   mintAuth,
			Amount: amount,
		}),
		token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
			Metadata:                metadataAccount,
			Mint:                    mint,
			MintAuthority:           mintAuth,
			Payer:                   recipient,
			UpdateAuthority:         updateAuth,
			UpdateAuthorityIsSigner: false,
			IsMutable:               authorities.IsMutable,
			Data: token_metadata.DataV2{
				Name:                 desc.Name,
				Symbol:               domain.NormalizeSymbol(desc.Symbol),
				Uri:                  metadataURL,
				SellerFeeBasisPoints: 0,
			},
		}),
	}

	if authorities.RevokeMint {
		// Current authority must match the one set at initialization or
		// ledger execution rejects the whole transaction.
		instructions = append(instructions, token.SetAuthority(token.SetAuthorityParam{
			Account:  mint,
			NewAuth:  nil,
			AuthType: token.AuthorityTypeMintTokens,
			Auth:     mintAuth,
		}))
	}

	blockhash, err := b.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("query latest blockhash: %w", err)
	}

	message := types.NewMessage(types.NewMessageParam{
		FeePayer:        recipient,
		RecentBlockhash: blockhash,
		Instructions:    instructions,
	})

	// Hand back the wire-format transaction with zeroed signature slots:
	// the wallet holding the recipient and mint keys fills them in.
	placeholders := make([]types.Signature, message.Header.NumRequireSignatures)
	for i := range placeholders {
		placeholders[i] = make(types.Signature, signatureLen)
	}

	tx := types.Transaction{
		Message:    message,
		Signatures: placeholders,
	}
	raw, err := tx.Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize transaction: %w", err)
	}

	b.logger.Printf("built transaction: mint=%s instructions=%d revoke_mint=%v",
		desc.MintAddress, len(instructions), authorities.RevokeMint)

	return base64.StdEncoding.EncodeToString(raw), nil
}

// parseKey validates a base58 address and converts it to an SDK public key.
func parseKey(address string) (common.PublicKey, error) {
	key, err := addressing.Parse(address)
	if err != nil {
		return common.PublicKey{}, err
	}
	return common.PublicKeyFromBytes(key[:]), nil
}
