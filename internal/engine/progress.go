package engine

// ProgressUpdate carries the progress of one calculator to the UI.
type ProgressUpdate struct {
	// CalculatorIndex distinguishes concurrent calculators.
	CalculatorIndex int
	// Value is the normalized progress, from 0.0 to 1.0.
	Value float64
}

// ProgressReporter is the callback through which cores report normalized
// progress (0.0 to 1.0).
type ProgressReporter func(progress float64)
