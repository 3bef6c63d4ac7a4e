package domain

// AuthoritySet is the resolved authority configuration for a build.
// Empty string means the authority is absent (None on-chain).
type AuthoritySet struct {
	// MintAuthority is always non-empty: a mint must have an authority at
	// initialization even when it is revoked by a follow-up instruction.
	MintAuthority string
	// FreezeAuthority is empty unless the user opted to keep one.
	FreezeAuthority string
	// UpdateAuthority is empty when update authority is revoked; in that
	// case IsMutable is false and no authority transfer is emitted, since
	// immutability is a flag on the metadata instruction itself.
	UpdateAuthority string
	// IsMutable is the metadata mutability flag.
	IsMutable bool
	// RevokeMint requests a trailing set-authority instruction that sets
	// the mint authority to None after the initial mint.
	RevokeMint bool
}

// ResolveAuthorities derives the effective authority set from the user's
// options. Defaults minimize custodial trust: the recipient holds every
// retained authority unless an explicit override address is given.
func ResolveAuthorities(recipient string, opts AuthorityOptions) AuthoritySet {
	set := AuthoritySet{
		MintAuthority: recipient,
		IsMutable:     !opts.RevokeUpdateAuthority,
		RevokeMint:    opts.RevokeMintAuthority,
	}
	if opts.MintAuthorityOverride != "" {
		set.MintAuthority = opts.MintAuthorityOverride
	}
	if opts.FreezeAuthority {
		set.FreezeAuthority = recipient
		if opts.FreezeAuthorityOverride != "" {
			set.FreezeAuthority = opts.FreezeAuthorityOverride
		}
	}
	if !opts.RevokeUpdateAuthority {
		set.UpdateAuthority = recipient
		if opts.UpdateAuthorityOverride != "" {
			set.UpdateAuthority = opts.UpdateAuthorityOverride
		}
	}
	return set
}
