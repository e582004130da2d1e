package objective

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
)

func TestPhiFormula(t *testing.T) {
	w := Weights{WE: 0.3, WI: 0.3, WS: 0.25, WV: 0.1, WEta: 0.15}
	s := dynamics.State{E: 0.7, I: 0.8, S: 0.2, V: -0.5}
	dv := dynamics.DriftVector{0.3, 0.4, 0, 0}

	want := 0.3*0.7 - 0.3*0.2 - 0.25*0.2 - 0.1*0.5 - 0.15*0.5
	if got := Phi(s, dv, w); math.Abs(got-want) > 1e-12 {
		t.Fatalf("phi = %v, want %v", got, want)
	}
}

func TestVerdictPartition(t *testing.T) {
	th := DefaultThresholds()
	if err := th.Validate(); err != nil {
		t.Fatalf("default thresholds invalid: %v", err)
	}

	// Sweep across the full range: every phi maps to exactly one verdict,
	// and severity is non-increasing as phi increases.
	prevSeverity := 4
	for phi := -2.0; phi <= 2.0; phi += 0.01 {
		v := VerdictFor(phi, th)
		sev := Severity(v)
		if sev > prevSeverity {
			t.Fatalf("severity increased with phi at %v: %s", phi, v)
		}
		prevSeverity = sev
	}

	// Exact boundary values belong to the upper band.
	if v := VerdictFor(th.ProceedMin, th); v != VerdictProceed {
		t.Fatalf("phi == ProceedMin -> %s, want proceed", v)
	}
	if v := VerdictFor(th.ContinueMin, th); v != VerdictContinue {
		t.Fatalf("phi == ContinueMin -> %s, want continue", v)
	}
	if v := VerdictFor(th.PauseMin, th); v != VerdictPause {
		t.Fatalf("phi == PauseMin -> %s, want pause", v)
	}
	if v := VerdictFor(th.PauseMin-1e-9, th); v != VerdictStop {
		t.Fatalf("phi just under PauseMin -> %s, want stop", v)
	}
}

func TestValidateRejectsUnorderedThresholds(t *testing.T) {
	bad := Thresholds{ProceedMin: -0.2, ContinueMin: 0.1, PauseMin: -0.5}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unordered thresholds")
	}
}

func TestDowngrade(t *testing.T) {
	steps := map[Verdict]Verdict{
		VerdictProceed:  VerdictContinue,
		VerdictContinue: VerdictPause,
		VerdictPause:    VerdictStop,
		VerdictStop:     VerdictStop,
	}
	for from, want := range steps {
		if got := Downgrade(from); got != want {
			t.Fatalf("downgrade(%s) = %s, want %s", from, got, want)
		}
	}
}

func TestTighten(t *testing.T) {
	th := DefaultThresholds()
	tight := th.Tighten(0.1)

	// A phi that was proceed can fall to continue under tightened bands.
	phi := th.ProceedMin + 0.05
	if v := VerdictFor(phi, th); v != VerdictProceed {
		t.Fatalf("baseline verdict = %s, want proceed", v)
	}
	if v := VerdictFor(phi, tight); v != VerdictContinue {
		t.Fatalf("tightened verdict = %s, want continue", v)
	}

	if err := tight.Validate(); err != nil {
		t.Fatalf("tightened thresholds must stay ordered: %v", err)
	}
}
