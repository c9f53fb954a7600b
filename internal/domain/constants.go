package domain

import "time"

// MaxPortNumber also bounds SRV priority and weight, which share the uint16 wire field.
const MaxPortNumber = 65535

const (
	DefaultRetryMaxAttempts    = 3
	DefaultRetryInitialDelayMs = 500
	DefaultRetryMaxDelaySec    = 10
	DefaultRetryMultiplier     = 2.0
)

var (
	DefaultRetryInitialDelay = DefaultRetryInitialDelayMs * time.Millisecond
	DefaultRetryMaxDelay     = DefaultRetryMaxDelaySec * time.Second
)
