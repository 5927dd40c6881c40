package sequence

import (
	"fmt"
	"math"
	"sort"
)

// easings maps Keyframe.Ease to a curve over [0,1]. An empty ease is linear.
var easings = map[string]func(float64) float64{
	"":       func(u float64) float64 { return u },
	"linear": func(u float64) float64 { return u },
	"smooth": func(u float64) float64 { return u * u * (3 - 2*u) },
	// 6u^5 - 15u^4 + 10u^3, flat first and second derivative at both ends
	"cubic": func(u float64) float64 { return u * u * u * (u*(u*6-15) + 10) },
}

// paramRanges bounds the controller parameters a clip may automate.
// Parameters not listed here are passed through as evaluated.
var paramRanges = map[string][2]float64{
	"brightness": {0, 1},
	"gamma":      {0.1, 5},
	"fps":        {1, 1000},
}

// ClampParam limits v to the range of the named parameter.
func ClampParam(name string, v float64) float64 {
	r, ok := paramRanges[name]
	if !ok {
		return v
	}
	return math.Max(r[0], math.Min(r[1], v))
}

// Validate rejects keyframes with an unknown ease or a non-finite time or
// value.
func (e Envelope) Validate() error {
	for i, k := range e.Keys {
		if _, ok := easings[k.Ease]; !ok {
			return fmt.Errorf("key %d: unknown ease %q (want linear, smooth or cubic)", i, k.Ease)
		}
		if math.IsNaN(k.T) || math.IsInf(k.T, 0) || math.IsNaN(k.V) || math.IsInf(k.V, 0) {
			return fmt.Errorf("key %d: time and value must be finite", i)
		}
	}
	return nil
}

// Sort orders the keys by time; Load calls it for every envelope.
func (e Envelope) Sort() {
	sort.SliceStable(e.Keys, func(i, j int) bool { return e.Keys[i].T < e.Keys[j].T })
}

// Eval interpolates the envelope at t seconds. Keys must be sorted. Outside
// the keyed span the nearest end value holds; an empty envelope is 0.
func (e Envelope) Eval(t float64) float64 {
	keys := e.Keys
	switch {
	case len(keys) == 0:
		return 0
	case t <= keys[0].T:
		return keys[0].V
	case t >= keys[len(keys)-1].T:
		return keys[len(keys)-1].V
	}
	// first key strictly after t; the segment starts one before it
	j := sort.Search(len(keys), func(i int) bool { return keys[i].T > t })
	from, to := keys[j-1], keys[j]
	span := to.T - from.T
	if span <= 0 {
		return to.V
	}
	ease, ok := easings[from.Ease]
	if !ok {
		ease = easings[""]
	}
	u := ease((t - from.T) / span)
	return from.V + (to.V-from.V)*u
}
