package dynamics

import "testing"

func TestCoherenceBaselineValue(t *testing.T) {
	p := DefaultParams()
	theta := DefaultTheta()

	// C(0) must equal CMax/2 exactly, not approximately.
	if c := Coherence(0, theta, p); c != p.CMax/2 {
		t.Fatalf("Coherence(0) = %v, want exactly %v", c, p.CMax/2)
	}
}

func TestCoherenceMonotoneIncreasing(t *testing.T) {
	p := DefaultParams()
	theta := DefaultTheta()

	prev := Coherence(-5.0, theta, p)
	for v := -4.9; v <= 5.0; v += 0.1 {
		c := Coherence(v, theta, p)
		if c <= prev {
			t.Fatalf("coherence not strictly increasing at V=%v: %v <= %v", v, c, prev)
		}
		prev = c
	}
}

func TestCoherenceBounded(t *testing.T) {
	p := DefaultParams()
	theta := DefaultTheta()

	for _, v := range []float64{-1e9, -10, -1, 0, 1, 10, 1e9} {
		c := Coherence(v, theta, p)
		if c < 0 || c > p.CMax {
			t.Fatalf("Coherence(%v) = %v outside [0, %v]", v, c, p.CMax)
		}
	}
}
