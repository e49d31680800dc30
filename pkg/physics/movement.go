package physics

import "math"

const (
	// ArrivalSnap is the distance under which a vessel snaps onto its
	// destination and stops.
	ArrivalSnap = 1.0

	// minDenominator keeps stopping-distance math finite when a vessel is
	// configured with zero deceleration.
	minDenominator = 1e-6
)

// MovementState tracks point-mass vessel kinematics
type MovementState struct {
	Position     Vector2D
	Velocity     Vector2D
	Heading      float64 // radians
	Speed        float64
	MaxSpeed     float64
	Acceleration float64
	Deceleration float64
}

// StepResult reports what happened during a single Steer call.
type StepResult struct {
	Moved   bool
	Arrived bool
}

// StoppingDistance returns the distance needed to brake from speed to rest.
func StoppingDistance(speed, deceleration float64) float64 {
	return speed * speed / (2 * math.Max(deceleration, minDenominator))
}

// Steer advances the state by deltaTime seconds toward target. A nil target
// means the vessel has no destination and coasts to rest along its heading.
//
// Speed follows a trapezoidal profile: accelerate while the remaining
// distance exceeds the stopping distance, brake otherwise. A step that would
// end within ArrivalSnap of the target lands exactly on it.
func Steer(state *MovementState, target *Vector2D, deltaTime float64) StepResult {
	if !(deltaTime > 0) || math.IsInf(deltaTime, 0) {
		return StepResult{}
	}
	state.clampSpeed()

	if target == nil {
		return state.coast(deltaTime)
	}

	toTarget := target.Sub(state.Position)
	distance := toTarget.Length()
	if distance < ArrivalSnap {
		state.arrive(*target)
		return StepResult{Moved: distance > 0, Arrived: true}
	}

	direction := toTarget.Scale(1 / distance)
	if distance > StoppingDistance(state.Speed, state.Deceleration) {
		state.Speed = math.Min(state.Speed+state.Acceleration*deltaTime, state.maxSpeed())
	} else {
		state.Speed = math.Max(state.Speed-state.Deceleration*deltaTime, 0)
	}
	state.Heading = direction.Angle()

	step := state.Speed * deltaTime
	if step > 0 && distance-step < ArrivalSnap {
		state.arrive(*target)
		return StepResult{Moved: true, Arrived: true}
	}

	state.Velocity = direction.Scale(state.Speed)
	state.Position = state.Position.Add(state.Velocity.Scale(deltaTime))
	return StepResult{Moved: step > 0}
}

// Stop zeroes speed and velocity without touching position or heading.
func (s *MovementState) Stop() {
	s.Speed = 0
	s.Velocity = Vector2D{}
}

func (s *MovementState) coast(deltaTime float64) StepResult {
	s.Speed = math.Max(s.Speed-math.Max(s.Deceleration, 0)*deltaTime, 0)
	if s.Speed == 0 {
		s.Velocity = Vector2D{}
		return StepResult{}
	}
	s.Velocity = FromAngle(s.Heading, s.Speed)
	s.Position = s.Position.Add(s.Velocity.Scale(deltaTime))
	return StepResult{Moved: true}
}

func (s *MovementState) arrive(target Vector2D) {
	s.Position = target
	s.Stop()
}

func (s *MovementState) maxSpeed() float64 {
	if !(s.MaxSpeed > 0) {
		return 0
	}
	return s.MaxSpeed
}

// clampSpeed keeps Speed inside [0, MaxSpeed] and scrubs NaN.
func (s *MovementState) clampSpeed() {
	if math.IsNaN(s.Speed) || s.Speed < 0 {
		s.Speed = 0
	}
	if s.Speed > s.maxSpeed() {
		s.Speed = s.maxSpeed()
	}
}
