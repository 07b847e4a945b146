package netsync

import "time"

// Estimator keeps a smoothed estimate of host->guest delay, derived from the
// gap between a snapshot's embedded host timestamp and the guest's receive
// time. Raw samples are folded into an exponentially weighted average rather
// than used one-shot, which damps jitter and absorbs clock skew between the
// peers; the residual error self-corrects as samples accumulate.
type Estimator struct {
	alpha   float64
	seconds float64
	primed  bool
}

// NewEstimator returns an estimator with the given EWMA weight (0..1) for
// new samples.
func NewEstimator(alpha float64) *Estimator {
	return &Estimator{alpha: alpha}
}

// Sample folds one snapshot's timing into the estimate. hostTimestamp is the
// snapshot's host-clock Unix ms; receivedAt is the guest's local receive
// time. Negative raw samples (clock skew) are clamped to zero before
// smoothing so the estimate never goes negative.
func (e *Estimator) Sample(hostTimestamp int64, receivedAt time.Time) {
	raw := float64(receivedAt.UnixMilli()-hostTimestamp) / 1000
	if raw < 0 {
		raw = 0
	}
	if !e.primed {
		e.seconds = raw
		e.primed = true
		return
	}
	e.seconds += e.alpha * (raw - e.seconds)
}

// Estimate returns the current one-way latency estimate in seconds. Zero
// until the first sample. The bullet predictor's extrapolation budget: how
// far past the last snapshot the guest should project before the next one
// lands.
func (e *Estimator) Estimate() float64 {
	return e.seconds
}
