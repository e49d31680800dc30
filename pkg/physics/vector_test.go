// pkg/physics/vector_test.go
package physics

import (
	"math"
	"testing"
)

func TestVector2D_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		got      Vector2D
		expected Vector2D
	}{
		{"add", Vector2D{X: 3, Y: 4}.Add(Vector2D{X: 1, Y: 2}), Vector2D{X: 4, Y: 6}},
		{"add_zero", Vector2D{}.Add(Vector2D{X: 5, Y: -3}), Vector2D{X: 5, Y: -3}},
		{"sub", Vector2D{X: 2, Y: 3}.Sub(Vector2D{X: 5, Y: 7}), Vector2D{X: -3, Y: -4}},
		{"scale", Vector2D{X: 2, Y: -3}.Scale(2.5), Vector2D{X: 5, Y: -7.5}},
		{"scale_zero", Vector2D{X: 2, Y: -3}.Scale(0), Vector2D{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, expected %v", tt.got, tt.expected)
			}
		})
	}
}

func TestVector2D_LengthAndDistance(t *testing.T) {
	v := Vector2D{X: 3, Y: 4}
	if v.Length() != 5 {
		t.Errorf("Length() = %f, expected 5", v.Length())
	}
	if v.LengthSquared() != 25 {
		t.Errorf("LengthSquared() = %f, expected 25", v.LengthSquared())
	}
	if d := (Vector2D{X: 1, Y: 1}).Distance(Vector2D{X: 4, Y: 5}); d != 5 {
		t.Errorf("Distance() = %f, expected 5", d)
	}
}

func TestVector2D_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		input    Vector2D
		expected Vector2D
	}{
		{"axis_x", Vector2D{X: 10}, Vector2D{X: 1}},
		{"axis_y_negative", Vector2D{Y: -0.5}, Vector2D{Y: -1}},
		{"diagonal", Vector2D{X: 3, Y: 4}, Vector2D{X: 0.6, Y: 0.8}},
		{"zero", Vector2D{}, Vector2D{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.input.Normalize()
			if !got.ApproxEqual(tt.expected, 1e-12) {
				t.Errorf("Normalize() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestFromAngle_RoundTripsThroughAngle(t *testing.T) {
	for _, angle := range []float64{0, math.Pi / 4, math.Pi / 2, -math.Pi / 3, 3} {
		v := FromAngle(angle, 7)
		if math.Abs(v.Length()-7) > 1e-9 {
			t.Errorf("FromAngle(%f, 7) length = %f", angle, v.Length())
		}
		if math.Abs(v.Angle()-angle) > 1e-9 {
			t.Errorf("FromAngle(%f, 7).Angle() = %f", angle, v.Angle())
		}
	}
}

func TestVector2D_IsFinite(t *testing.T) {
	if !(Vector2D{X: 1, Y: -2}).IsFinite() {
		t.Error("finite vector reported as non-finite")
	}
	if (Vector2D{X: math.NaN()}).IsFinite() {
		t.Error("NaN vector reported as finite")
	}
	if (Vector2D{Y: math.Inf(-1)}).IsFinite() {
		t.Error("infinite vector reported as finite")
	}
	if !(Vector2D{}).IsZero() || (Vector2D{X: 1e-300}).IsZero() {
		t.Error("IsZero misreported")
	}
}
