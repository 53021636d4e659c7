package bonus

import "errors"

var (
	ErrUnauthorized         = errors.New("bonus: caller is not the owner")
	ErrNotAllowed           = errors.New("bonus: not allowed")
	ErrInvalidAmount        = errors.New("bonus: amount must not be negative")
	ErrInvalidAsset         = errors.New("bonus: invalid asset")
	ErrDuplicateAsset       = errors.New("bonus: duplicate asset")
	ErrIncentivesNotWired   = errors.New("bonus: incentive source not configured")
	ErrReserveNotConfigured = errors.New("bonus: reserve not configured")
	ErrInsufficientReserve  = errors.New("bonus: insufficient reserve")
)
