package function

import (
	"fmt"
	"math/rand"

	"github.com/coreman2200/funtimes-ledstrip/model"
)

// Spec declares one function, as found in preset lists of the config file.
// Fields that a kind does not use are ignored.
type Spec struct {
	Kind  Kind   `yaml:"kind" json:"kind"`
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Delay int    `yaml:"delay,omitempty" json:"delay,omitempty"`

	// Colors are palette names or hex values; empty means the seasonal default.
	Colors []string `yaml:"colors,omitempty" json:"colors,omitempty"`

	// motion (mover, marquee, raindrop stride)
	Start     *int `yaml:"start,omitempty" json:"start,omitempty"`
	Step      int  `yaml:"step,omitempty" json:"step,omitempty"`
	Direction int  `yaml:"direction,omitempty" json:"direction,omitempty"`
	Explode   int  `yaml:"explode,omitempty" json:"explode,omitempty"`

	// pattern
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Fold    int    `yaml:"fold,omitempty" json:"fold,omitempty"`
	Wrap    bool   `yaml:"wrap,omitempty" json:"wrap,omitempty"`
	Shift   int    `yaml:"shift,omitempty" json:"shift,omitempty"`

	// fade amount per ready tick
	Amount int `yaml:"amount,omitempty" json:"amount,omitempty"`

	// raindrop and twinkle
	Chance float64 `yaml:"chance,omitempty" json:"chance,omitempty"`
	Size   int     `yaml:"size,omitempty" json:"size,omitempty"`

	// sweep
	Mode string `yaml:"mode,omitempty" json:"mode,omitempty"`
}

func parseColors(names []string) ([]model.ColorVal, error) {
	out := make([]model.ColorVal, 0, len(names))
	for _, s := range names {
		c, err := model.ParseColor(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Build constructs the function s describes for a buffer of n cells.
// r picks random start positions and directions.
func Build(s Spec, n int, r *rand.Rand) (Function, error) {
	seq, err := parseColors(s.Colors)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Kind, err)
	}
	first := func() model.ColorVal {
		if len(seq) == 0 {
			return model.DefaultColors()[0]
		}
		return seq[0]
	}
	start := func() int {
		if s.Start != nil {
			return Wrap(*s.Start, n)
		}
		return RandomIndex(r, n)
	}
	dir := s.Direction
	if dir == 0 {
		dir = RandomDirection(r)
	}
	step := s.Step
	if step == 0 {
		step = 1
	}

	switch s.Kind {
	case KindFade:
		target := model.Off
		if len(seq) > 0 {
			target = seq[0]
		}
		amount := s.Amount
		if amount <= 0 {
			amount = 16
		}
		return NewFade(s.Name, s.Delay, target, amount), nil
	case KindPattern:
		if _, err := generate(s.Pattern, 1, seq, s.Fold, s.Wrap, r); err != nil {
			return nil, err
		}
		p := NewPattern(s.Name, s.Pattern, s.Delay, seq)
		p.Fold, p.Wrap, p.Shift = s.Fold, s.Wrap, s.Shift
		return p, nil
	case KindMarquee:
		return NewMarquee(s.Name, s.Delay, step, dir), nil
	case KindMover:
		sp := NewSpark(s.Name, s.Delay, start(), step, dir, seq)
		sp.Motion().Explode = s.Explode
		return sp, nil
	case KindRaindrop:
		chance := s.Chance
		if chance <= 0 {
			chance = 0.1
		}
		size := s.Size
		if size <= 0 {
			size = 4
		}
		d := NewRaindrop(s.Name, s.Delay, chance, size, step, seq)
		d.Origin = start()
		return d, nil
	case KindTwinkle:
		chance := s.Chance
		if chance <= 0 {
			chance = 0.5
		}
		return NewTwinkle(s.Name, s.Delay, chance, seq), nil
	case KindSweep:
		if s.Mode != "" && s.Mode != SweepIndex && s.Mode != SweepRGB {
			return nil, fmt.Errorf("unknown sweep mode %q", s.Mode)
		}
		return NewSweep(s.Name, s.Mode, s.Delay, first()), nil
	}
	return nil, fmt.Errorf("unknown function kind %q", s.Kind)
}

// BuildAll builds a preset, stopping at the first bad spec.
func BuildAll(specs []Spec, n int, r *rand.Rand) ([]Function, error) {
	out := make([]Function, 0, len(specs))
	for i, s := range specs {
		f, err := Build(s, n, r)
		if err != nil {
			return nil, fmt.Errorf("function %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}
