package probe

import "time"

// Runner configuration constants.
const (
	PollInterval         = 250 * time.Millisecond
	PercentageMultiplier = 100
	maxErrorBody         = 1 << 12
)
