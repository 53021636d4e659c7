package reward

import "errors"

var (
	ErrUnauthorized         = errors.New("reward: caller is not the owner")
	ErrNotAllowed           = errors.New("reward: not allowed")
	ErrInvalidAmount        = errors.New("reward: amount must not be negative")
	ErrInvalidAsset         = errors.New("reward: invalid asset")
	ErrUnknownAsset         = errors.New("reward: unknown asset")
	ErrLengthMismatch       = errors.New("reward: assets and weights length mismatch")
	ErrDuplicateAsset       = errors.New("reward: duplicate asset")
	ErrNilPredecessor       = errors.New("reward: predecessor not provided")
	ErrLedgerNotConfigured  = errors.New("reward: basket ledger not configured")
	ErrReserveNotConfigured = errors.New("reward: reserve not configured")
	ErrInsufficientReserve  = errors.New("reward: insufficient reserve")
)
