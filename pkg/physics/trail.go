package physics

// TrailSample is one recorded point of a motion trail, stamped with
// simulation time in seconds.
type TrailSample struct {
	Position Vector2D
	Time     float64
}

// TrailPolicy controls how densely and for how long samples are kept.
type TrailPolicy struct {
	Spacing        float64 `json:"spacing" mapstructure:"spacing"`
	Lifetime       float64 `json:"lifetime" mapstructure:"lifetime"`
	SpeedThreshold float64 `json:"speed_threshold" mapstructure:"speed_threshold"`
	MaxLength      int     `json:"max_length" mapstructure:"max_length"`
}

// DefaultTrailPolicy returns the policy used when none is configured.
func DefaultTrailPolicy() TrailPolicy {
	return TrailPolicy{
		Spacing:        15,
		Lifetime:       3,
		SpeedThreshold: 1,
		MaxLength:      40,
	}
}

// Trail is a bounded FIFO of recent positions.
type Trail struct {
	Policy  TrailPolicy
	samples []TrailSample
}

// NewTrail creates an empty trail with the given policy
func NewTrail(policy TrailPolicy) Trail {
	return Trail{Policy: policy}
}

// Record purges expired samples and, if the vessel is moving fast enough and
// has travelled at least Spacing since the newest sample, appends a new one.
func (t *Trail) Record(position Vector2D, speed, now float64) {
	t.expire(now)

	if speed <= t.Policy.SpeedThreshold {
		return
	}
	if n := len(t.samples); n > 0 && position.Distance(t.samples[n-1].Position) <= t.Policy.Spacing {
		return
	}

	t.samples = append(t.samples, TrailSample{Position: position, Time: now})
	if max := t.Policy.MaxLength; max > 0 && len(t.samples) > max {
		t.samples = append(t.samples[:0], t.samples[len(t.samples)-max:]...)
	}
}

func (t *Trail) expire(now float64) {
	drop := 0
	for drop < len(t.samples) && now-t.samples[drop].Time > t.Policy.Lifetime {
		drop++
	}
	if drop > 0 {
		t.samples = append(t.samples[:0], t.samples[drop:]...)
	}
}

// Samples returns a copy of the trail, oldest first.
func (t *Trail) Samples() []TrailSample {
	out := make([]TrailSample, len(t.samples))
	copy(out, t.samples)
	return out
}

// Len returns the number of samples currently held.
func (t *Trail) Len() int {
	return len(t.samples)
}

// Reset drops every sample.
func (t *Trail) Reset() {
	t.samples = t.samples[:0]
}
