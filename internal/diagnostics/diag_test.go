package diagnostics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/coreman2200/funtimes-ledstrip/internal/function"
	"github.com/coreman2200/funtimes-ledstrip/internal/led"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFunctionFault(t *testing.T) {
	fe := &function.FunctionError{ID: uuid.New(), Name: "spark", Kind: function.KindMover, Tick: 9, Panic: true, Err: errors.New("index out of range")}

	d := FunctionFault(fe, true)
	assert.Equal(t, Warn, d.Severity)
	assert.Equal(t, "FUNC.PANIC", d.Code)
	assert.Equal(t, "spark", d.Evidence["name"])
	assert.Equal(t, true, d.Evidence["dropped"])

	d = FromError(fmt.Errorf("tick: %w", fe))
	assert.Equal(t, Err, d.Severity)
	assert.Equal(t, false, d.Evidence["dropped"])
}

func TestSinkFault(t *testing.T) {
	err := led.Wrap("nrz", "show", errors.New("spi: busy"))
	d := FromError(err)
	assert.Equal(t, "SINK.show", d.Code)
	assert.Equal(t, "nrz", d.Evidence["driver"])
	assert.Contains(t, d.Detail, "spi: busy")

	assert.Equal(t, "RUNTIME", FromError(errors.New("boom")).Code)
}

func TestJournalKeepsRecent(t *testing.T) {
	j := NewJournal(2)
	var seen []string
	j.Subscribe(func(d Diagnostic) { seen = append(seen, d.Code) })
	for _, c := range []string{"A", "B", "C"} {
		j.Push(Diagnostic{Code: c})
	}
	r := j.Recent()
	assert.Len(t, r, 2)
	assert.Equal(t, "B", r[0].Code)
	assert.Equal(t, "C", r[1].Code)
	assert.Equal(t, []string{"A", "B", "C"}, seen)
}
