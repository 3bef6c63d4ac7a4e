package solana

// Transaction represents a confirmed Solana transaction as returned by
// getTransaction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains transaction metadata. PreBalances and PostBalances
// are indexed by account position in Message.AccountKeys.
type TransactionMeta struct {
	Err          interface{}
	PreBalances  []uint64
	PostBalances []uint64
	LogMessages  []string
}

// TransactionMessage contains the parsed transaction message.
type TransactionMessage struct {
	AccountKeys  []string
	Instructions []CompiledInstruction
}

// CompiledInstruction is one instruction in a transaction message. Account
// references are indices into the message's account key list.
type CompiledInstruction struct {
	ProgramIDIndex int
	Accounts       []int
	Data           string // base58
}

// ProgramID resolves the instruction's target program address.
// Returns "" when the index is out of range.
func (ix CompiledInstruction) ProgramID(accountKeys []string) string {
	if ix.ProgramIDIndex < 0 || ix.ProgramIDIndex >= len(accountKeys) {
		return ""
	}
	return accountKeys[ix.ProgramIDIndex]
}
