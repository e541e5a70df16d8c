package config

import "errors"

// Sentinel kinds for configuration errors. All of them are fatal at load
// time; none may surface after the first tick.
var (
	ErrHardLimit      = errors.New("invalid hard cps limit")
	ErrTargetRange    = errors.New("invalid target cps range")
	ErrSensMultiplier = errors.New("invalid sensitivity multiplier")
	ErrThresholds     = errors.New("invalid engage/disengage thresholds")
	ErrDurations      = errors.New("invalid duration configuration")
	ErrJitterBounds   = errors.New("invalid jitter bounds")
	ErrTriggers       = errors.New("invalid trigger set")
	ErrQueue          = errors.New("invalid queue configuration")
)
