package link

import "github.com/pkg/errors"

// Sentinel errors. Compare with errors.Cause(err) == ErrX, matching the
// pkg/errors v0.8.1 idiom (predates errors.Is/Unwrap support).
var (
	ErrTimeout      = errors.New("link: operation timed out")
	ErrInvalidState = errors.New("link: invalid state for operation")
	ErrInternal     = errors.New("link: internal error")
)
