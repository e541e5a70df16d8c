package inject

import "errors"

// Sentinel kinds for injection errors.
var (
	ErrInfeasible = errors.New("no ceiling-compliant injection schedule exists")
)
