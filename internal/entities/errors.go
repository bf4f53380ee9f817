package entities

import "errors"

// Error taxonomy shared by every service. Callers wrap these with context
// using fmt.Errorf("%w: ...") and match them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrRateLimited        = errors.New("rate limited")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAlreadyHired       = errors.New("already hired")
	ErrInvalidGrade       = errors.New("invalid grade")
	ErrConsistencyFailure = errors.New("consistency failure")
)
