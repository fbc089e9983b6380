package translate

import "fmt"

// Status classifies how a translation run ended.
type Status int

const (
	// Completed means every pending row was translated and written.
	Completed Status = iota
	// Failed means the run stopped on an unrecoverable error.
	Failed
	// Interrupted means the run was cancelled and can be resumed.
	Interrupted
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Interrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of one translation run. Translated counts rows
// written during this run, not rows skipped by the resume check.
type Outcome struct {
	Status     Status
	Reason     string
	Translated int
	Skipped    int
}

// Err returns a non-nil error for a failed outcome, nil otherwise.
func (o Outcome) Err() error {
	if o.Status != Failed {
		return nil
	}
	if o.Reason == "" {
		return fmt.Errorf("translation run failed")
	}
	return fmt.Errorf("translation run failed: %s", o.Reason)
}
