package function

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/coreman2200/funtimes-ledstrip/internal/render"
	"github.com/coreman2200/funtimes-ledstrip/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Policy decides what a tick does when a function faults.
type Policy int

const (
	// SkipAndContinue drops the faulting function and runs the rest.
	SkipAndContinue Policy = iota
	// AbortTick stops the tick and returns the *FunctionError.
	AbortTick
)

func (p Policy) String() string {
	if p == AbortTick {
		return "abort"
	}
	return "skip"
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "skip":
		return SkipAndContinue, nil
	case "abort":
		return AbortTick, nil
	}
	return SkipAndContinue, fmt.Errorf("unknown fault policy %q", s)
}

// Engine holds the registered functions and advances each of them once per
// tick in registration order. It is not safe for concurrent use.
type Engine struct {
	Policy Policy
	// OnFault sees every fault, whatever the policy.
	OnFault func(*FunctionError)

	funcs   []Function
	rand    *rand.Rand
	tick    uint64
	log     zerolog.Logger
	scratch []model.ColorVal
}

func NewEngine(seed int64) *Engine {
	return &Engine{
		rand: rand.New(rand.NewSource(seed)),
		log:  log.With().Str("component", "function").Logger(),
	}
}

func (e *Engine) SetLogger(l zerolog.Logger) { e.log = l.With().Str("component", "function").Logger() }

// Rand is the engine's seeded source, shared with the functions.
func (e *Engine) Rand() *rand.Rand { return e.rand }

// Add appends f; functions run in the order they were added.
func (e *Engine) Add(f Function) error {
	if f == nil {
		return errors.New("nil function")
	}
	for _, g := range e.funcs {
		if g.ID() == f.ID() {
			return fmt.Errorf("function %s already registered", f.ID())
		}
	}
	e.funcs = append(e.funcs, f)
	return nil
}

// Remove drops the function with id and reports whether it was present.
func (e *Engine) Remove(id uuid.UUID) bool {
	for i, f := range e.funcs {
		if f.ID() == id {
			e.funcs = append(e.funcs[:i], e.funcs[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Engine) Clear() { e.funcs = nil }

// Functions is a copy of the registration list.
func (e *Engine) Functions() []Function { return append([]Function(nil), e.funcs...) }

func (e *Engine) Len() int { return len(e.funcs) }

// Ticks is the number of completed ticks.
func (e *Engine) Ticks() uint64 { return e.tick }

// Tick runs every function once against buf, then the collision pass.
// Cancellation of ctx is returned as is, never as a function fault.
func (e *Engine) Tick(ctx context.Context, buf *render.Buffer) error {
	if buf == nil {
		return render.ErrUninitializedBuffer
	}
	c := &Context{Ctx: ctx, Buf: buf, Rand: e.rand, Tick: e.tick, Log: e.log}

	kept := e.funcs[:0:0]
	var abort error
	for i, f := range e.funcs {
		if abort != nil {
			kept = append(kept, e.funcs[i:]...)
			break
		}
		if err := ctx.Err(); err != nil {
			e.funcs = append(kept, e.funcs[i:]...)
			return err
		}
		if m, ok := f.(Mover); ok {
			m.Motion().begin()
		}
		if !f.Throttle().Advance() {
			kept = append(kept, f)
			continue
		}
		err := e.run(c, f, func() error { return f.Step(c) })
		if err == nil {
			kept = append(kept, f)
			continue
		}
		if isCancel(err) {
			e.funcs = append(kept, e.funcs[i:]...)
			return err
		}
		fe := err.(*FunctionError)
		if e.OnFault != nil {
			e.OnFault(fe)
		}
		if e.Policy == AbortTick {
			kept = append(kept, f)
			abort = fe
			continue
		}
		e.log.Warn().Err(fe.Err).Str("function", f.Name()).Str("id", f.ID().String()).Msg("dropping faulted function")
	}
	e.funcs = kept
	if abort != nil {
		return abort
	}

	e.collide(c)
	e.tick++
	return nil
}

// run calls step with a panic boundary. On any fault the buffer is put back
// the way it was before the call.
func (e *Engine) run(c *Context, f Function, step func() error) (err error) {
	e.scratch = append(e.scratch[:0], c.Buf.Pixels()...)
	defer func() {
		panicked := false
		if r := recover(); r != nil {
			panicked = true
			perr, ok := r.(error)
			if !ok {
				perr = fmt.Errorf("%v", r)
			}
			err = perr
		}
		if err == nil {
			return
		}
		copy(c.Buf.Pixels(), e.scratch)
		if !panicked && isCancel(err) {
			return
		}
		err = &FunctionError{ID: f.ID(), Name: f.Name(), Kind: f.Kind(), Tick: c.Tick, Panic: panicked, Err: err}
	}()
	return step()
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
