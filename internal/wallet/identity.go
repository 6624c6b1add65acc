package wallet

import "github.com/sidrisov/payflow-sub001/internal/chain"

// Profile is a registered user with an owned flow of per-network wallets.
type Profile struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Flow        *Flow  `json:"flow"`
}

// Identity is a transfer recipient: either a registered profile or a
// bare address. A bare address can receive on any network; a profile can
// only settle on networks its own flow has a wallet on.
type Identity struct {
	profile *Profile
	address string
}

// ProfileIdentity wraps a profile as a recipient identity.
func ProfileIdentity(p *Profile) Identity {
	return Identity{profile: p}
}

// AddressIdentity wraps a bare address as a recipient identity.
func AddressIdentity(address string) Identity {
	return Identity{address: address}
}

// IsProfile reports whether the identity is a registered profile.
func (i Identity) IsProfile() bool {
	return i.profile != nil
}

// IsAddress reports whether the identity is a bare address.
func (i Identity) IsAddress() bool {
	return i.profile == nil && i.address != ""
}

// IsZero reports whether the identity has not been resolved yet.
func (i Identity) IsZero() bool {
	return i.profile == nil && i.address == ""
}

// Profile returns the underlying profile, or nil for a bare address.
func (i Identity) Profile() *Profile {
	return i.profile
}

// Destination resolves the concrete receive address on the given
// network. A bare address receives on any network; a profile receives on
// its own flow wallet for that network.
func (i Identity) Destination(network chain.Network) (string, bool) {
	if i.IsAddress() {
		return i.address, true
	}
	if i.profile != nil && i.profile.Flow != nil {
		if w, ok := i.profile.Flow.WalletOn(network); ok {
			return w.Address, true
		}
	}
	return "", false
}

// DisplayName returns a human-readable label for the identity.
func (i Identity) DisplayName() string {
	if i.profile != nil {
		if i.profile.DisplayName != "" {
			return i.profile.DisplayName
		}
		return i.profile.Username
	}
	return i.address
}
