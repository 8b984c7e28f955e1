package installer

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an installation run.
type Status string

// Run states. A run moves from pending to running, then to success or failure.
const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

const (
	messageComplete   = "Database installation complete!"
	messageIncomplete = "Database installation incomplete!"
)

// Outcome describes a single Install call. It is never persisted.
type Outcome struct {
	Status  Status
	Message string
	// Errors holds the failure text per schema identifier; Failed lists the
	// same identifiers in execution order.
	Errors  map[string]string
	Failed  []string
	Applied []string
	Version string
}

func newOutcome(version string) *Outcome {
	return &Outcome{
		Status:  StatusPending,
		Errors:  make(map[string]string),
		Version: version,
	}
}

// Succeeded reports whether the run completed without error.
func (o *Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

func (o *Outcome) fail(message string) {
	o.Status = StatusFailure
	o.Message = message
}

func (o *Outcome) recordFileError(id string, err error) {
	if _, ok := o.Errors[id]; !ok {
		o.Failed = append(o.Failed, id)
	}

	o.Errors[id] = err.Error()
}

// fileErrorsMessage lists every failed file with its error.
func (o *Outcome) fileErrorsMessage() string {
	var b strings.Builder

	b.WriteString(messageIncomplete)
	b.WriteString("\nError in file(s) :\n")

	for _, id := range o.Failed {
		fmt.Fprintf(&b, "%s (%s)\n", id, o.Errors[id])
	}

	return b.String()
}

// Annotation points at the lines of the caller's entry script that trigger
// installation, so a reminder to remove them can follow a successful run.
type Annotation struct {
	File      string
	LineStart int
	LineEnd   int
}

// Result renders the outcome as a single text blob. On success, a non-empty
// annotation adds the removal reminder.
func (o *Outcome) Result(a *Annotation) string {
	if !o.Succeeded() || a == nil || a.File == "" {
		return o.Message
	}

	var b strings.Builder

	b.WriteString(o.Message)
	b.WriteString("\nYou can remove line in ")
	b.WriteString(a.File)

	if a.LineStart > 0 {
		fmt.Fprintf(&b, " start from line %d", a.LineStart)
	}

	if a.LineEnd > 0 {
		fmt.Fprintf(&b, " until line %d", a.LineEnd)
	}

	b.WriteString("\n (you can remove between that line)")

	return b.String()
}
