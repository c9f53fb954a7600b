package entity

import "time"

// ProbeResult is the outcome of probing one peer in one run.
// Latency is only meaningful when Success is true.
type ProbeResult struct {
	Peer      Peer    `json:"peer"`
	Latency   float64 `json:"latency_ms"`
	Success   bool    `json:"success"`
	Attempts  int     `json:"attempts"`
	Successes int     `json:"successes"`
}

func NewFailedProbe(peer Peer, attempts int) ProbeResult {
	return ProbeResult{Peer: peer, Attempts: attempts}
}

// NewProbeResult builds a successful result from the best observed round trip.
func NewProbeResult(peer Peer, best time.Duration, attempts, successes int) ProbeResult {
	return ProbeResult{
		Peer:      peer,
		Latency:   DurationToMillis(best),
		Success:   true,
		Attempts:  attempts,
		Successes: successes,
	}
}

func (r ProbeResult) LatencyDuration() time.Duration {
	return time.Duration(r.Latency * float64(time.Millisecond))
}

// DurationToMillis converts d to fractional milliseconds, flooring negative values to zero.
func DurationToMillis(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	if ms < 0 {
		return 0
	}
	return ms
}
