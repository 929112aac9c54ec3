package envelope

import "fmt"

// Status is the terminal classification of an event.
type Status string

const (
	// StatusValid means every hard check passed; warnings may still exist.
	StatusValid Status = "valid"

	// StatusInvalid means at least one hard error was recorded.
	StatusInvalid Status = "invalid"

	// StatusCorrupted means the payload could not be parsed as a
	// structured record at all.
	StatusCorrupted Status = "corrupted"
)

// Result is the outcome of classifying a single envelope.
//
// Errors are hard failures: Status is StatusValid if and only if Errors is
// empty. Warnings are soft data-quality observations and never affect the
// valid/invalid outcome. Both lists preserve the order in which the
// pipeline stages discovered them.
type Result struct {
	Status   Status
	Errors   []string
	Warnings []string
	Envelope *Envelope
}

// NewResult creates a Result for env with no diagnostics yet.
func NewResult(env *Envelope) *Result {
	return &Result{Envelope: env}
}

// Errorf appends a hard error to the diagnostic trail.
func (r *Result) Errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Warnf appends a soft warning to the diagnostic trail.
func (r *Result) Warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Finalize derives the terminal status from the accumulated errors.
// A result already marked corrupted keeps that status.
func (r *Result) Finalize() {
	if r.Status == StatusCorrupted {
		return
	}
	if len(r.Errors) > 0 {
		r.Status = StatusInvalid
		return
	}
	r.Status = StatusValid
}
