// Package oscillation tracks threshold-crossing reversals in a monitored
// metric and damps verdicts when the measure indicates thrashing.
package oscillation

// #region observe
// Observe folds one metric sample into the oscillation state. A flip is a
// crossing of the threshold relative to the previous cycle's side; the
// first observation only establishes the side. The EMA recurrence
//
//	ema' = (1-alpha)*ema + alpha*flip
//
// keeps the Oscillation Index in [0,1] for any history length.
func Observe(st State, value float64, cfg DetectorConfig) (State, bool) {
	side := -1
	if value >= cfg.Threshold {
		side = 1
	}

	flipped := st.LastSide != 0 && side != st.LastSide

	indicator := 0.0
	if flipped {
		indicator = 1.0
		st.FlipCount++
	}
	st.EMA = (1-cfg.Alpha)*st.EMA + cfg.Alpha*indicator

	st.LastSide = side
	st.LastValue = value
	return st, flipped
}

// Index returns the Oscillation Index.
func Index(st State) float64 {
	return st.EMA
}

// #endregion observe
