// Package diagnostics turns runtime faults into records an operator can act on.
package diagnostics

import (
	"errors"
	"sync"

	"github.com/coreman2200/funtimes-ledstrip/internal/function"
	"github.com/coreman2200/funtimes-ledstrip/internal/led"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// FunctionFault describes a fault raised by one animation function. dropped
// tells whether the engine removed it.
func FunctionFault(fe *function.FunctionError, dropped bool) Diagnostic {
	d := Diagnostic{
		Severity: Warn,
		Code:     "FUNC.FAULT",
		Summary:  "Animation function failed",
		Detail:   fe.Error(),
		Evidence: map[string]any{
			"id":      fe.ID.String(),
			"name":    fe.Name,
			"kind":    string(fe.Kind),
			"tick":    fe.Tick,
			"dropped": dropped,
		},
		SuggestedFixes: []string{"Check the preset's function parameters"},
	}
	if fe.Panic {
		d.Code = "FUNC.PANIC"
		d.LikelyCauses = []string{"Index outside the virtual buffer", "Empty color sequence"}
	}
	if !dropped {
		d.Severity = Err
		d.Summary = "Tick aborted by animation function"
	}
	return d
}

// SinkFault describes a failed write to the LED output.
func SinkFault(se *led.SinkError) Diagnostic {
	return Diagnostic{
		Severity: Err,
		Code:     "SINK." + se.Op,
		Summary:  "LED output failed",
		Detail:   se.Error(),
		LikelyCauses: []string{
			"Driver not permitted to access /dev/mem or /dev/spidev*",
			"Wrong GPIO pin or DMA channel",
			"Output already released",
		},
		SuggestedFixes: []string{"Run with the sim driver to rule out the hardware", "Check spi/pwm settings"},
		Evidence:       map[string]any{"driver": se.Driver, "op": se.Op},
	}
}

// FromError picks the matching record for err, or a generic one.
func FromError(err error) Diagnostic {
	var fe *function.FunctionError
	if errors.As(err, &fe) {
		return FunctionFault(fe, false)
	}
	var se *led.SinkError
	if errors.As(err, &se) {
		return SinkFault(se)
	}
	return Diagnostic{Severity: Err, Code: "RUNTIME", Summary: "Unexpected error", Detail: err.Error()}
}

// Journal keeps the most recent diagnostics and fans them out to listeners.
type Journal struct {
	mu        sync.Mutex
	size      int
	items     []Diagnostic
	listeners []func(Diagnostic)
}

func NewJournal(size int) *Journal {
	if size <= 0 {
		size = 64
	}
	return &Journal{size: size}
}

// Subscribe registers fn for every later Push. fn must not block.
func (j *Journal) Subscribe(fn func(Diagnostic)) {
	j.mu.Lock()
	j.listeners = append(j.listeners, fn)
	j.mu.Unlock()
}

func (j *Journal) Push(d Diagnostic) {
	j.mu.Lock()
	j.items = append(j.items, d)
	if over := len(j.items) - j.size; over > 0 {
		j.items = append(j.items[:0], j.items[over:]...)
	}
	ls := make([]func(Diagnostic), len(j.listeners))
	copy(ls, j.listeners)
	j.mu.Unlock()
	for _, fn := range ls {
		fn(d)
	}
}

// Recent returns the kept diagnostics, oldest first.
func (j *Journal) Recent() []Diagnostic {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Diagnostic(nil), j.items...)
}
