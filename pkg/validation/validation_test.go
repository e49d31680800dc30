package validation

import (
	"math"
	"strings"
	"testing"
)

func TestValidateTag(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantErr     bool
		errContains string
	}{
		{name: "simple", input: "station_alpha"},
		{name: "dotted", input: "belt.rock-01"},
		{name: "namespaced", input: "npc:hauler_3"},
		{name: "empty", input: "", wantErr: true, errContains: "cannot be empty"},
		{name: "space", input: "station alpha", wantErr: true, errContains: "invalid characters"},
		{name: "too long", input: strings.Repeat("a", MaxTagLen+1), wantErr: true, errContains: "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTag(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTag(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        string
		wantErr     bool
		errContains string
	}{
		{name: "plain", input: "Kepler Station", want: "Kepler Station"},
		{name: "trimmed", input: "  Hauler 7  ", want: "Hauler 7"},
		{name: "unicode", input: "Ærø Depot", want: "Ærø Depot"},
		{name: "empty", input: "", wantErr: true, errContains: "cannot be empty"},
		{name: "whitespace", input: "   ", wantErr: true, errContains: "only whitespace"},
		{name: "control", input: "bad\x07name", wantErr: true, errContains: "control characters"},
		{name: "invalid utf8", input: "bad\xffname", wantErr: true, errContains: "UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ValidateName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		input   []float64
		wantErr bool
	}{
		{"pair", []float64{1, -2}, false},
		{"nil", nil, true},
		{"single", []float64{1}, true},
		{"triple", []float64{1, 2, 3}, true},
		{"NaN", []float64{math.NaN(), 0}, true},
		{"Inf", []float64{0, math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateCoordinates(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinates(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePositiveAndNonNegative(t *testing.T) {
	if err := ValidatePositive("max_speed", 10); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := ValidatePositive("max_speed", bad); err == nil {
			t.Errorf("ValidatePositive(%v) expected error", bad)
		}
	}
	if err := ValidateNonNegative("idle_time", 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateNonNegative("idle_time", -0.5); err == nil {
		t.Error("ValidateNonNegative(-0.5) expected error")
	}
}
