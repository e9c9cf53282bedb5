package stats

import "errors"

var (
	// ErrUnknownStat is returned for a key that names no statistic.
	ErrUnknownStat = errors.New("unknown stat")
	// ErrWeightRange is returned when a weight is not an integer in [0,10].
	ErrWeightRange = errors.New("weight out of range")
	// ErrUnknownPreset is returned for an unregistered preset name.
	ErrUnknownPreset = errors.New("unknown preset")
)
