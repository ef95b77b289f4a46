package domain

import "errors"

// Sentinel errors for every way an economy operation can fail. They are
// pure domain values; the dispatcher and engine translate them into
// user-facing replies, none of them is ever fatal.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNicknameTaken      = errors.New("nickname already taken")
	ErrNotRegistered      = errors.New("caller is not registered")
	ErrTargetNotFound     = errors.New("target nickname not found")
	ErrScopeMismatch      = errors.New("target is in a different scope")
	ErrTargetEmpty        = errors.New("target has no bread")
	ErrOnCooldown         = errors.New("action is on cooldown")
	ErrStorageUnavailable = errors.New("ledger storage unavailable")
)
