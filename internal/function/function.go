// Package function runs stateful per-frame effects against a shared
// virtual buffer.
package function

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/coreman2200/funtimes-ledstrip/internal/render"
	"github.com/coreman2200/funtimes-ledstrip/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrAnimationFunction is matched by every *FunctionError.
var ErrAnimationFunction = errors.New("animation function failure")

type Kind string

const (
	KindFade     Kind = "fade"
	KindPattern  Kind = "pattern"
	KindMarquee  Kind = "marquee"
	KindMover    Kind = "mover"
	KindRaindrop Kind = "raindrop"
	KindTwinkle  Kind = "twinkle"
	KindSweep    Kind = "sweep"
)

// Function is one registered effect. Step runs only on ticks where the
// function's Delay is ready and must not block.
type Function interface {
	ID() uuid.UUID
	Name() string
	Kind() Kind
	Throttle() *Delay
	Step(c *Context) error
}

// Mover is a Function that travels along the buffer and takes part in the
// collision pass.
type Mover interface {
	Function
	Motion() *Motion
	// OnCollision runs after the engine has resolved a hit at cell.
	OnCollision(c *Context, cell int)
}

// Context is what a Function gets on its turn.
type Context struct {
	Ctx  context.Context
	Buf  *render.Buffer
	Rand *rand.Rand
	Tick uint64
	Log  zerolog.Logger
}

// Delay throttles a function independently of the engine tick rate.
// Counter stays within [0, Max].
type Delay struct {
	Counter int
	Max     int
}

// Advance counts one tick and reports whether the function should act,
// resetting the counter when it does.
func (d *Delay) Advance() bool {
	if d.Max < 0 {
		d.Max = 0
	}
	if d.Counter < d.Max {
		d.Counter++
	}
	if d.Counter >= d.Max {
		d.Counter = 0
		return true
	}
	return false
}

// FunctionError attributes a fault to the single function that raised it.
type FunctionError struct {
	ID    uuid.UUID
	Name  string
	Kind  Kind
	Tick  uint64
	Panic bool
	Err   error
}

func (e *FunctionError) Error() string {
	what := "failed"
	if e.Panic {
		what = "panicked"
	}
	return fmt.Sprintf("%s: %s (%s) %s on tick %d: %v", ErrAnimationFunction, e.Name, e.Kind, what, e.Tick, e.Err)
}

func (e *FunctionError) Unwrap() []error { return []error{ErrAnimationFunction, e.Err} }

// Base carries the identity, throttle and colors shared by the effects.
type Base struct {
	id    uuid.UUID
	name  string
	kind  Kind
	Delay Delay
	Color model.ColorVal
	Next  model.ColorVal
	Seq   Cursor
}

func newBase(name string, kind Kind, delay int, seq []model.ColorVal) Base {
	if name == "" {
		name = string(kind)
	}
	b := Base{id: uuid.New(), name: name, kind: kind, Delay: Delay{Max: delay}, Seq: NewCursor(seq)}
	b.Color = b.Seq.Current()
	b.Next = b.Seq.Peek()
	return b
}

func (b *Base) ID() uuid.UUID    { return b.id }
func (b *Base) Name() string     { return b.name }
func (b *Base) Kind() Kind       { return b.kind }
func (b *Base) Throttle() *Delay { return &b.Delay }

// advanceColor moves Color to the next sequence entry.
func (b *Base) advanceColor() {
	b.Color = b.Seq.Next()
	b.Next = b.Seq.Peek()
}
