package physics

import (
	"math"
	"testing"
)

func newTestState(speed float64) *MovementState {
	return &MovementState{
		Speed:        speed,
		MaxSpeed:     100,
		Acceleration: 100,
		Deceleration: 100,
	}
}

func TestSteer_ReachesDestinationMonotonically(t *testing.T) {
	state := newTestState(0)
	target := Vector2D{X: 1000, Y: 0}

	lastX := state.Position.X
	arrived := false
	for tick := 0; tick < 1000; tick++ {
		res := Steer(state, &target, 0.1)
		if state.Position.X < lastX-1e-9 {
			t.Fatalf("tick %d: x went backwards from %f to %f", tick, lastX, state.Position.X)
		}
		if state.Position.X > 1000 {
			t.Fatalf("tick %d: overshot to %f", tick, state.Position.X)
		}
		lastX = state.Position.X
		if res.Arrived {
			arrived = true
			break
		}
	}

	if !arrived {
		t.Fatalf("never arrived, x=%f speed=%f", state.Position.X, state.Speed)
	}
	if state.Position.X != 1000.0 || state.Position.Y != 0 {
		t.Errorf("expected exact arrival at (1000,0), got %v", state.Position)
	}
	if state.Speed != 0 || !state.Velocity.IsZero() {
		t.Errorf("expected rest after arrival, speed=%f velocity=%v", state.Speed, state.Velocity)
	}

	// Idle afterwards: stays put.
	for i := 0; i < 10; i++ {
		Steer(state, nil, 0.1)
	}
	if state.Position.X != 1000.0 {
		t.Errorf("vessel drifted after arrival: %v", state.Position)
	}
}

func TestSteer_ConvergesForAllInitialSpeeds(t *testing.T) {
	distances := []float64{0.5, 5, 30, 250, 4000}
	speeds := []float64{0, 25, 50, 99, 100}

	for _, d := range distances {
		for _, v0 := range speeds {
			state := newTestState(v0)
			state.Heading = math.Pi / 3
			target := FromAngle(math.Pi/3, d)

			prev := state.Position.Distance(target)
			arrived := false
			for tick := 0; tick < 5000; tick++ {
				res := Steer(state, &target, 1.0/60)
				dist := state.Position.Distance(target)
				if dist > prev+1e-9 {
					t.Fatalf("d=%v v0=%v tick %d: distance increased %f -> %f", d, v0, tick, prev, dist)
				}
				if state.Speed < 0 || state.Speed > state.MaxSpeed {
					t.Fatalf("speed %f outside [0, max]", state.Speed)
				}
				prev = dist
				if res.Arrived {
					arrived = true
					break
				}
			}
			if !arrived {
				t.Errorf("d=%v v0=%v: did not arrive", d, v0)
				continue
			}
			if state.Position != target || state.Speed != 0 {
				t.Errorf("d=%v v0=%v: ended at %v speed %f", d, v0, state.Position, state.Speed)
			}
		}
	}
}

func TestSteer_DestinationAtCurrentPosition(t *testing.T) {
	state := newTestState(0)
	state.Position = Vector2D{X: 42, Y: -7}
	target := state.Position

	res := Steer(state, &target, 1.0/60)
	if !res.Arrived {
		t.Error("expected immediate arrival")
	}
	if !state.Position.IsFinite() || !state.Velocity.IsFinite() {
		t.Errorf("non-finite state after coincident arrival: %+v", state)
	}
}

func TestSteer_CoastsToRestWithoutDestination(t *testing.T) {
	state := newTestState(50)
	state.Heading = 0

	Steer(state, nil, 0.1)
	if math.Abs(state.Speed-40) > 1e-9 {
		t.Errorf("expected speed 40 after one braking tick, got %f", state.Speed)
	}
	if state.Position.X <= 0 {
		t.Errorf("expected to keep moving along heading, got %v", state.Position)
	}

	for i := 0; i < 10; i++ {
		Steer(state, nil, 0.1)
	}
	if state.Speed != 0 || !state.Velocity.IsZero() {
		t.Errorf("expected rest, speed=%f velocity=%v", state.Speed, state.Velocity)
	}
}

func TestSteer_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name  string
		state MovementState
		dt    float64
	}{
		{"zero dt", *newTestState(10), 0},
		{"negative dt", *newTestState(10), -1},
		{"NaN dt", *newTestState(10), math.NaN()},
		{"zero deceleration", MovementState{MaxSpeed: 100, Acceleration: 10}, 0.1},
		{"zero max speed", MovementState{Acceleration: 10, Deceleration: 10}, 0.1},
		{"NaN speed", MovementState{Speed: math.NaN(), MaxSpeed: 10, Acceleration: 1, Deceleration: 1}, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := tt.state
			target := Vector2D{X: 500, Y: 500}
			for i := 0; i < 100; i++ {
				Steer(&state, &target, tt.dt)
			}
			if !state.Position.IsFinite() || !state.Velocity.IsFinite() || math.IsNaN(state.Speed) {
				t.Errorf("state corrupted: %+v", state)
			}
		})
	}
}

func TestStoppingDistance(t *testing.T) {
	if got := StoppingDistance(100, 100); got != 50 {
		t.Errorf("StoppingDistance(100,100) = %f, expected 50", got)
	}
	if got := StoppingDistance(10, 0); math.IsInf(got, 0) || math.IsNaN(got) {
		t.Errorf("StoppingDistance with zero deceleration not finite: %f", got)
	}
}
