// Package domain contains the pure economy types with no infrastructure
// imports. Everything else in the module depends on this package; it
// depends on nothing.
package domain

// ExternalID is the opaque participant identifier assigned by the chat
// transport. It is the unique key into the ledger.
type ExternalID string

// ScopeID identifies the group/channel a command originated from.
// Robbing and ranking are restricted to accounts sharing a scope.
type ScopeID string

// NicknameMaxLen is the longest nickname accepted at registration.
const NicknameMaxLen = 16

// Account is one participant's economic state.
type Account struct {
	ExternalID  ExternalID `json:"external_id"`
	Nickname    string     `json:"nickname"`
	Balance     int64      `json:"balance"`
	LastClaimAt int64      `json:"last_claim_at"` // unix seconds, 0 = never
	LastRobAt   int64      `json:"last_rob_at"`   // unix seconds, 0 = never
	Scope       ScopeID    `json:"scope"`
	CreatedAt   int64      `json:"created_at"` // unix seconds of registration
}

// Ledger is the complete set of accounts keyed by external identifier.
type Ledger map[ExternalID]Account

// Clone returns an independent copy of the ledger. Accounts are value
// types, so a shallow map copy is a full copy.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for id, a := range l {
		out[id] = a
	}
	return out
}

// ByNickname returns the account with the given nickname, if any.
func (l Ledger) ByNickname(nick string) (Account, bool) {
	for _, a := range l {
		if a.Nickname == nick {
			return a, true
		}
	}
	return Account{}, false
}
