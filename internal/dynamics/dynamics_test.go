package dynamics

import (
	"errors"
	"math"
	"testing"
)

func TestStepDeterministic(t *testing.T) {
	p := DefaultParams()
	theta := DefaultTheta()
	s := State{E: 0.6, I: 0.7, S: 0.3, V: -0.1}
	dv := DriftVector{0.2, 0.1, 0.4, 0.0}

	r1, err := Step(s, theta, dv, 0.1, p, 0.5)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	r2, err := Step(s, theta, dv, 0.1, p, 0.5)
	if err != nil {
		t.Fatalf("step: %v", err)
	}

	// Bit-identical, not just close.
	if r1 != r2 {
		t.Fatalf("non-deterministic step: %+v != %+v", r1, r2)
	}
}

func TestStepBoundedOverManyCycles(t *testing.T) {
	p := DefaultParams()
	theta := DefaultTheta()
	s := State{E: 0.9, I: 0.1, S: 0.95, V: 0.8}

	for n := 0; n < 500; n++ {
		// Deterministic pseudo-varied inputs covering the valid range.
		m := float64(n%11) / 10.0
		dv := DriftVector{m, 1 - m, m * m, 0.5}
		complexity := float64(n%7) / 6.0

		next, err := Step(s, theta, dv, 0.1, p, complexity)
		if err != nil {
			t.Fatalf("cycle %d: %v", n, err)
		}
		if next.E < p.EMin || next.E > p.EMax {
			t.Fatalf("cycle %d: E=%v outside [%v,%v]", n, next.E, p.EMin, p.EMax)
		}
		if next.I < p.IMin || next.I > p.IMax {
			t.Fatalf("cycle %d: I=%v outside [%v,%v]", n, next.I, p.IMin, p.IMax)
		}
		if next.S < p.SMin || next.S > p.SMax {
			t.Fatalf("cycle %d: S=%v outside [%v,%v]", n, next.S, p.SMin, p.SMax)
		}
		if next.V < p.VMin || next.V > p.VMax {
			t.Fatalf("cycle %d: V=%v outside [%v,%v]", n, next.V, p.VMin, p.VMax)
		}
		s = next
	}
}

func TestStepQuiescentState(t *testing.T) {
	p := DefaultParams()
	theta := DefaultTheta()
	s := State{E: 0.7, I: 0.8, S: 0.2, V: 0.0}
	dt := 0.1
	complexity := 0.5

	next, err := Step(s, theta, DriftVector{}, dt, p, complexity)
	if err != nil {
		t.Fatalf("step: %v", err)
	}

	// E moves toward I.
	if next.E <= s.E {
		t.Fatalf("E should increase toward I: %v -> %v", s.E, next.E)
	}

	// With zero drift, dS carries only the decay, coherence-relief, and
	// complexity terms. At V=0 coherence is exactly CMax/2.
	c := p.CMax / 2
	lambda2 := p.Lambda2Base * theta.Lambda2Scale
	wantS := s.S + dt*(-p.Mu*s.S-lambda2*c+p.BetaComplexity*complexity)
	if math.Abs(next.S-wantS) > 1e-12 {
		t.Fatalf("S = %v, want %v", next.S, wantS)
	}
}

func TestStepRejectsInvalidInput(t *testing.T) {
	p := DefaultParams()
	theta := DefaultTheta()
	s := DefaultState()

	cases := []struct {
		name       string
		dv         DriftVector
		complexity float64
		dt         float64
	}{
		{"complexity above one", DriftVector{}, 1.5, 0.1},
		{"complexity negative", DriftVector{}, -0.1, 0.1},
		{"drift component above one", DriftVector{0, 1.1, 0, 0}, 0.5, 0.1},
		{"drift component negative", DriftVector{-0.2, 0, 0, 0}, 0.5, 0.1},
		{"zero dt", DriftVector{}, 0.5, 0},
		{"nan complexity", DriftVector{}, math.NaN(), 0.1},
	}

	for _, tc := range cases {
		_, err := Step(s, theta, tc.dv, tc.dt, p, tc.complexity)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: got %v, want ErrInvalidInput", tc.name, err)
		}
	}
}

func TestStepDetectsNumericInstability(t *testing.T) {
	p := DefaultParams()
	p.Alpha = math.Inf(1) // Inf * (I-E) with I == E yields NaN
	theta := DefaultTheta()
	s := State{E: 0.5, I: 0.5, S: 0.2, V: 0}

	_, err := Step(s, theta, DriftVector{}, 0.1, p, 0.5)
	if !errors.Is(err, ErrNumericInstability) {
		t.Fatalf("got %v, want ErrNumericInstability", err)
	}
	// Distinct from validation failures.
	if errors.Is(err, ErrInvalidInput) {
		t.Fatalf("numeric error must not match ErrInvalidInput")
	}
}

func TestStepVStaysWithinConfiguredBounds(t *testing.T) {
	p := DefaultParams()
	theta := DefaultTheta()

	// Persistent E > I drives V up; E < I drives it down. Neither side may
	// escape the configured clamp.
	s := State{E: 1.0, I: 0.0, S: 0.0, V: 0.9}
	for n := 0; n < 100; n++ {
		next, err := Step(s, theta, DriftVector{}, 0.5, p, 0)
		if err != nil {
			t.Fatalf("cycle %d: %v", n, err)
		}
		if next.V > p.VMax || next.V < p.VMin {
			t.Fatalf("cycle %d: V=%v escaped [%v,%v]", n, next.V, p.VMin, p.VMax)
		}
		s.V = next.V
	}
}
