package function

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/coreman2200/funtimes-ledstrip/internal/render"
	"github.com/coreman2200/funtimes-ledstrip/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stub struct {
	Base
	run func(c *Context) error
}

func newStub(name string, delay int, run func(*Context) error) *stub {
	return &stub{Base: newBase(name, "stub", delay, []model.ColorVal{model.Red}), run: run}
}

func (p *stub) Step(c *Context) error { return p.run(c) }

func strip(t *testing.T, n int) *render.Buffer {
	t.Helper()
	b, err := render.NewBuffer(1, n)
	require.NoError(t, err)
	return b
}

func TestTickRunsFunctionsInOrder(t *testing.T) {
	e := NewEngine(1)
	var order []string
	for _, name := range []string{"fade", "a", "b"} {
		name := name
		require.NoError(t, e.Add(newStub(name, 0, func(*Context) error {
			order = append(order, name)
			return nil
		})))
	}
	buf := strip(t, 4)
	require.NoError(t, e.Tick(context.Background(), buf))
	require.NoError(t, e.Tick(context.Background(), buf))
	assert.Equal(t, []string{"fade", "a", "b", "fade", "a", "b"}, order)
	assert.Equal(t, uint64(2), e.Ticks())
}

func TestTickHonoursDelay(t *testing.T) {
	e := NewEngine(1)
	runs := 0
	p := newStub("slow", 2, func(*Context) error { runs++; return nil })
	require.NoError(t, e.Add(p))
	buf := strip(t, 2)
	for i := 0; i < 6; i++ {
		require.NoError(t, e.Tick(context.Background(), buf))
	}
	assert.Equal(t, 3, runs)
}

func TestAddRemoveClear(t *testing.T) {
	e := NewEngine(1)
	p := newStub("p", 0, func(*Context) error { return nil })
	require.NoError(t, e.Add(p))
	assert.Error(t, e.Add(p))
	assert.Error(t, e.Add(nil))
	assert.Equal(t, 1, e.Len())
	assert.True(t, e.Remove(p.ID()))
	assert.False(t, e.Remove(p.ID()))
	require.NoError(t, e.Add(p))
	e.Clear()
	assert.Equal(t, 0, e.Len())
}

func TestFaultIsSkippedAndBufferRestored(t *testing.T) {
	e := NewEngine(1)
	var faults []*FunctionError
	e.OnFault = func(fe *FunctionError) { faults = append(faults, fe) }

	paint := newStub("paint", 0, func(c *Context) error { c.Buf.Set(0, model.Green); return nil })
	bad := newStub("bad", 0, func(c *Context) error {
		c.Buf.Fill(model.White)
		return errors.New("half drawn")
	})
	after := newStub("after", 0, func(c *Context) error { c.Buf.Set(3, model.Blue); return nil })
	for _, f := range []Function{paint, bad, after} {
		require.NoError(t, e.Add(f))
	}

	buf := strip(t, 4)
	require.NoError(t, e.Tick(context.Background(), buf))
	assert.True(t, buf.At(0).Equal(model.Green))
	assert.True(t, buf.At(1).IsOff(), "partial mutation must be rolled back")
	assert.True(t, buf.At(3).Equal(model.Blue))

	require.Len(t, faults, 1)
	assert.Equal(t, bad.ID(), faults[0].ID)
	assert.ErrorIs(t, faults[0], ErrAnimationFunction)
	assert.Equal(t, 2, e.Len())
	for _, f := range e.Functions() {
		assert.NotEqual(t, bad.ID(), f.ID())
	}
}

func TestPanicBecomesFunctionError(t *testing.T) {
	e := NewEngine(1)
	e.Policy = AbortTick
	after := 0
	require.NoError(t, e.Add(newStub("boom", 0, func(c *Context) error {
		c.Buf.Set(0, model.Red)
		var m map[string]int
		m["x"]++
		return nil
	})))
	require.NoError(t, e.Add(newStub("after", 0, func(*Context) error { after++; return nil })))

	buf := strip(t, 2)
	err := e.Tick(context.Background(), buf)
	var fe *FunctionError
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.Panic)
	assert.Equal(t, "boom", fe.Name)
	assert.Equal(t, 0, after, "abort stops the tick")
	assert.Equal(t, 2, e.Len(), "abort keeps the function list")
	assert.True(t, buf.At(0).IsOff())
	assert.Equal(t, uint64(0), e.Ticks())
}

func TestCancellationIsNotAFault(t *testing.T) {
	e := NewEngine(1)
	faulted := false
	e.OnFault = func(*FunctionError) { faulted = true }
	require.NoError(t, e.Add(newStub("stop", 0, func(c *Context) error {
		return fmt.Errorf("waiting: %w", context.Canceled)
	})))
	err := e.Tick(context.Background(), strip(t, 2))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrAnimationFunction)
	assert.False(t, faulted)
	assert.Equal(t, 1, e.Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Tick(ctx, strip(t, 2)), context.Canceled)
}

func TestTickNeedsBuffer(t *testing.T) {
	assert.ErrorIs(t, NewEngine(1).Tick(context.Background(), nil), render.ErrUninitializedBuffer)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("ABORT")
	require.NoError(t, err)
	assert.Equal(t, AbortTick, p)
	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, SkipAndContinue, p)
	_, err = ParsePolicy("retry")
	assert.Error(t, err)
}
