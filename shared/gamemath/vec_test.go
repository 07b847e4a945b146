package gamemath

import (
	"math"
	"testing"
)

func TestDist(t *testing.T) {
	if d := Dist(0, 0, 3, 4); d != 5 {
		t.Fatalf("Dist = %f, want 5", d)
	}
}

func TestNormalize(t *testing.T) {
	x, y := Normalize(0, -8)
	if x != 0 || y != -1 {
		t.Fatalf("Normalize(0,-8) = (%f, %f), want (0, -1)", x, y)
	}
	x, y = Normalize(0, 0)
	if x != 0 || y != 0 {
		t.Fatalf("zero vector should normalize to zero, got (%f, %f)", x, y)
	}
}

func TestWrapAngle(t *testing.T) {
	if got := WrapAngle(3 * math.Pi); math.Abs(got-math.Pi) > 1e-9 {
		t.Fatalf("WrapAngle(3pi) = %f, want pi", got)
	}
	if got := WrapAngle(-3 * math.Pi); math.Abs(got-math.Pi) > 1e-9 {
		t.Fatalf("WrapAngle(-3pi) = %f, want pi", got)
	}
	if got := WrapAngle(0.5); got != 0.5 {
		t.Fatalf("in-range angle should pass through, got %f", got)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-5, 0, 100); got != 0 {
		t.Fatalf("Clamp(-5) = %f, want 0", got)
	}
	if got := Clamp(150, 0, 100); got != 100 {
		t.Fatalf("Clamp(150) = %f, want 100", got)
	}
	if got := Clamp(42, 0, 100); got != 42 {
		t.Fatalf("Clamp(42) = %f, want 42", got)
	}
}
