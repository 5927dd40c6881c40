// Package sequence plays a timed show: clips that switch function presets
// and automate controller parameters with keyframed envelopes.
package sequence

// Keyframe represents a value at time T (seconds) with an easing function
// that applies to the segment starting at this keyframe.
type Keyframe struct {
	T    float64 `yaml:"t" json:"t"`
	V    float64 `yaml:"v" json:"v"`
	Ease string  `yaml:"ease,omitempty" json:"ease,omitempty"` // "linear","smooth","cubic"
}

// Envelope is a sorted list of keyframes; Eval(t) interpolates a value.
type Envelope struct {
	Keys []Keyframe `yaml:"keys" json:"keys"`
}

// Clip is one segment of a show: selects a preset for DurationS seconds
// and automates parameters (e.g. "brightness") over the clip's local time.
type Clip struct {
	Name      string              `yaml:"name" json:"name"`
	Preset    string              `yaml:"preset" json:"preset"`
	DurationS float64             `yaml:"duration_s" json:"durationS"`
	Params    map[string]Envelope `yaml:"params,omitempty" json:"params,omitempty"`
}

// Program is a full sequence of clips.
type Program struct {
	Version string `yaml:"version,omitempty" json:"version,omitempty"` // e.g., "seq.v1"
	Loop    bool   `yaml:"loop,omitempty" json:"loop,omitempty"`
	Clips   []Clip `yaml:"clips" json:"clips"`
}

// PlayerState enumerates sequencer states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are dependency-injected callbacks into the controller.
type Hooks struct {
	// Switch the active function preset immediately.
	SetPreset func(preset string)
	// Numeric parameter setter, called every tick for each automated param.
	SetParam func(name string, v float64)
}

// Player owns the current Program timeline and uses Hooks to drive the
// controller. It is not safe for concurrent use.
type Player struct {
	State PlayerState

	prog Program
	nowS float64 // position within program
	idx  int     // current clip index

	// injection
	hooks Hooks
}
