package model

// Status is the terminal outcome of a crawl run as recorded in the manifest.
// Downstream tooling branches on this field, so the string values are a
// stable contract.
type Status string

const (
	// StatusCompleted means the run ended on its own terms, either because
	// the page budget was exhausted or because the frontier drained.
	StatusCompleted Status = "completed"

	// StatusInterrupted means the run was cancelled externally and the
	// manifest describes partial output.
	StatusInterrupted Status = "interrupted"
)

// Valid reports whether s is a recognized status value.
func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusInterrupted:
		return true
	}
	return false
}

// String returns the status as a string.
func (s Status) String() string {
	return string(s)
}

// StopReason records which terminal transition ended the run. It refines
// Status: both budget exhaustion and an empty frontier map to
// StatusCompleted, but the distinction matters for diagnostics.
type StopReason string

const (
	// StopBudgetExhausted means the visited set reached the maxPages cap.
	StopBudgetExhausted StopReason = "budget_exhausted"

	// StopFrontierEmpty means the queue drained with budget remaining.
	StopFrontierEmpty StopReason = "frontier_empty"

	// StopInterrupted means an external cancellation ended the run.
	StopInterrupted StopReason = "interrupted"
)

// Status maps the stop reason to the manifest status it implies.
func (r StopReason) Status() Status {
	if r == StopInterrupted {
		return StatusInterrupted
	}
	return StatusCompleted
}

// String returns the stop reason as a string.
func (r StopReason) String() string {
	return string(r)
}
