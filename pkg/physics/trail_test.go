package physics

import "testing"

func TestTrail_RecordsBySpacingAndSpeed(t *testing.T) {
	trail := NewTrail(TrailPolicy{Spacing: 10, Lifetime: 100, SpeedThreshold: 1, MaxLength: 10})

	trail.Record(Vector2D{X: 0}, 5, 0)
	trail.Record(Vector2D{X: 5}, 5, 0.1) // too close to the last sample
	trail.Record(Vector2D{X: 20}, 0.5, 0.2)
	trail.Record(Vector2D{X: 20}, 5, 0.3)

	samples := trail.Samples()
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d: %+v", len(samples), samples)
	}
	if samples[0].Position.X != 0 || samples[1].Position.X != 20 {
		t.Errorf("unexpected samples %+v", samples)
	}
	if samples[1].Time != 0.3 {
		t.Errorf("expected timestamp 0.3, got %f", samples[1].Time)
	}
}

func TestTrail_ExpiresOldSamples(t *testing.T) {
	trail := NewTrail(TrailPolicy{Spacing: 1, Lifetime: 2, SpeedThreshold: 0, MaxLength: 10})

	trail.Record(Vector2D{X: 0}, 5, 0)
	trail.Record(Vector2D{X: 10}, 5, 1)
	trail.Record(Vector2D{X: 20}, 5, 2.5)

	samples := trail.Samples()
	if len(samples) != 2 || samples[0].Time != 1 {
		t.Fatalf("expected oldest sample purged, got %+v", samples)
	}

	// A stationary vessel still ages its trail out.
	trail.Record(Vector2D{X: 20}, 0, 10)
	if trail.Len() != 0 {
		t.Errorf("expected empty trail after lifetime, got %d", trail.Len())
	}
}

func TestTrail_CapsLength(t *testing.T) {
	trail := NewTrail(TrailPolicy{Spacing: 1, Lifetime: 1000, SpeedThreshold: 0, MaxLength: 3})
	for i := 0; i < 10; i++ {
		trail.Record(Vector2D{X: float64(i * 10)}, 5, float64(i))
	}

	samples := trail.Samples()
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if samples[0].Position.X != 70 || samples[2].Position.X != 90 {
		t.Errorf("expected newest samples kept, got %+v", samples)
	}
}

func TestTrail_SamplesIsACopy(t *testing.T) {
	trail := NewTrail(DefaultTrailPolicy())
	trail.Record(Vector2D{X: 100}, 50, 0)

	samples := trail.Samples()
	samples[0].Position.X = -1
	if trail.Samples()[0].Position.X != 100 {
		t.Error("mutating Samples() result changed the trail")
	}

	trail.Reset()
	if trail.Len() != 0 {
		t.Error("Reset did not clear the trail")
	}
}
