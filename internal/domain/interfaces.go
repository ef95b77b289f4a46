package domain

import "context"

// Store abstracts the durable ledger. Load returns the most recently
// committed ledger; an empty ledger when no durable state exists. Save
// commits the given ledger atomically — a concurrent reader never
// observes a half-written ledger.
type Store interface {
	Load(ctx context.Context) (Ledger, error)
	Save(ctx context.Context, l Ledger) error
}

// RandomSource supplies the engine's random draws. Abstracted so tests
// can script exact sequences.
type RandomSource interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
	// Chance reports true with probability p.
	Chance(p float64) bool
}

// ReplySink emits exactly one text reply for a handled command.
// Delivery failure is the sink's problem (logged, never raised).
type ReplySink interface {
	Reply(ctx context.Context, scope ScopeID, correlationID, text string)
}

// PlayerLister is the external online-player lookup. It never touches
// the ledger; a failed or timed-out lookup is a non-fatal "no data".
type PlayerLister interface {
	Online(ctx context.Context) ([]string, error)
}
