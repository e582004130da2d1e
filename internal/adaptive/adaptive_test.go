package adaptive

import (
	"math"
	"testing"
)

func TestCadenceGate(t *testing.T) {
	cfg := DefaultConfig()
	st := State{}
	scale := 1.0

	retunes := 0
	for cycle := 1; cycle <= 20; cycle++ {
		r := Retune(st, scale, 0.3, 0.9, cfg)
		st = r.State
		scale = r.Lambda1Scale

		if st.CycleCount != int64(cycle) {
			t.Fatalf("cycle %d: counter = %d, must advance exactly once per cycle", cycle, st.CycleCount)
		}
		if r.Retuned {
			if cycle%5 != 0 {
				t.Fatalf("retuned on off-cadence cycle %d", cycle)
			}
			retunes++
		} else if cycle%5 == 0 {
			t.Fatalf("cycle %d met the gates but did not retune", cycle)
		}
	}
	if retunes != 4 {
		t.Fatalf("retunes = %d over 20 cycles, want 4", retunes)
	}
}

func TestConfidenceGateIsSilentNoOp(t *testing.T) {
	cfg := DefaultConfig()
	st := State{CycleCount: 4} // next call lands on the cadence

	r := Retune(st, 1.0, 0.3, 0.5, cfg) // confidence below the floor
	if r.Retuned {
		t.Fatal("retuned below the confidence floor")
	}
	if r.Lambda1Scale != 1.0 {
		t.Fatalf("scale changed on a gated cycle: %v", r.Lambda1Scale)
	}
	if r.State.Integral != 0 {
		t.Fatalf("integral accumulated on a gated cycle: %v", r.State.Integral)
	}
	// Counter still advanced.
	if r.State.CycleCount != 5 {
		t.Fatalf("counter = %d, want 5", r.State.CycleCount)
	}
}

func TestPIUpdate(t *testing.T) {
	cfg := DefaultConfig()
	st := State{CycleCount: 4}

	r := Retune(st, 1.0, 0.3, 0.9, cfg)
	if !r.Retuned {
		t.Fatal("expected a retune")
	}
	err := cfg.TargetCoherence - 0.3
	want := 1.0 + cfg.KP*err + cfg.KI*err // integral holds one error sample
	if math.Abs(r.Lambda1Scale-want) > 1e-12 {
		t.Fatalf("scale = %v, want %v", r.Lambda1Scale, want)
	}
	if math.Abs(r.State.Integral-err) > 1e-12 {
		t.Fatalf("integral = %v, want %v", r.State.Integral, err)
	}
}

func TestScaleClamped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KP = 100 // force the update past the clamp

	r := Retune(State{CycleCount: 4}, 1.0, 0.0, 0.9, cfg)
	if r.Lambda1Scale != cfg.ScaleMax {
		t.Fatalf("scale = %v, want clamp at %v", r.Lambda1Scale, cfg.ScaleMax)
	}

	r = Retune(State{CycleCount: 4}, 1.0, 1.0, 0.9, cfg)
	if r.Lambda1Scale != cfg.ScaleMin {
		t.Fatalf("scale = %v, want clamp at %v", r.Lambda1Scale, cfg.ScaleMin)
	}
}
