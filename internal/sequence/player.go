package sequence

import (
	"errors"
	"fmt"
	"math"
)

// NewPlayer constructs a Player with provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{
		State: Idle,
		hooks: h,
	}
}

// Validate checks that the program can be played.
func (prog Program) Validate() error {
	if len(prog.Clips) == 0 {
		return errors.New("program has no clips")
	}
	for i, c := range prog.Clips {
		if c.DurationS <= 0 {
			return fmt.Errorf("clip %d (%s): duration must be positive", i, c.Name)
		}
		for name, env := range c.Params {
			if err := env.Validate(); err != nil {
				return fmt.Errorf("clip %d (%s) param %s: %w", i, c.Name, name, err)
			}
		}
	}
	return nil
}

// Presets lists the presets the program refers to, in clip order.
func (prog Program) Presets() []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range prog.Clips {
		if c.Preset != "" && !seen[c.Preset] {
			seen[c.Preset] = true
			out = append(out, c.Preset)
		}
	}
	return out
}

// Load replaces the current program. Resets time and state to Idle.
func (p *Player) Load(prog Program) error {
	if err := prog.Validate(); err != nil {
		return err
	}
	for _, c := range prog.Clips {
		for _, env := range c.Params {
			env.Sort()
		}
	}
	p.prog = prog
	p.nowS = 0
	p.idx = 0
	p.State = Idle
	return nil
}

// Start moves to Running and primes the first clip.
func (p *Player) Start() {
	if p.State == Running || len(p.prog.Clips) == 0 {
		return
	}
	p.State = Running
	p.enter()
}

// Pause pauses playback.
func (p *Player) Pause() {
	if p.State == Running {
		p.State = Paused
	}
}

// Resume resumes playback.
func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop stops and resets to start.
func (p *Player) Stop() {
	p.State = Idle
	p.nowS = 0
	p.idx = 0
}

// Now is the position within the program in seconds.
func (p *Player) Now() float64 { return p.nowS }

// Clip is the active clip.
func (p *Player) Clip() (Clip, bool) {
	if len(p.prog.Clips) == 0 {
		return Clip{}, false
	}
	return p.prog.Clips[p.idx], true
}

// Seek jumps to absolute program time t. Clamps into [0, totalDur).
func (p *Player) Seek(t float64) {
	if len(p.prog.Clips) == 0 {
		return
	}
	if t < 0 {
		t = 0
	}
	total := p.totalDuration()
	if t >= total {
		// Clamp to just before end
		t = math.Nextafter(total, -1)
	}
	// Find clip index and local time
	acc := 0.0
	idx := 0
	for i, c := range p.prog.Clips {
		if t < acc+c.DurationS {
			idx = i
			break
		}
		acc += c.DurationS
	}
	p.idx = idx
	p.nowS = t
	p.enter()
}

// Tick advances the sequencer by dt seconds and emits control hooks.
func (p *Player) Tick(dt float64) {
	if p.State != Running || len(p.prog.Clips) == 0 {
		return
	}
	if dt <= 0 {
		return
	}
	p.nowS += dt

	clip, localT := p.currentClipAndLocalT()
	p.automate(clip, localT)

	// Clip end?
	if localT >= clip.DurationS {
		p.advanceClip()
	}
}

func (p *Player) enter() {
	clip, localT := p.currentClipAndLocalT()
	if p.hooks.SetPreset != nil {
		p.hooks.SetPreset(clip.Preset)
	}
	p.automate(clip, localT)
}

func (p *Player) automate(clip Clip, localT float64) {
	if p.hooks.SetParam == nil {
		return
	}
	for name, env := range clip.Params {
		p.hooks.SetParam(name, ClampParam(name, env.Eval(localT)))
	}
}

func (p *Player) currentClipAndLocalT() (Clip, float64) {
	acc := 0.0
	for i := 0; i < p.idx; i++ {
		acc += p.prog.Clips[i].DurationS
	}
	localT := p.nowS - acc
	return p.prog.Clips[p.idx], localT
}

func (p *Player) totalDuration() float64 {
	total := 0.0
	for _, c := range p.prog.Clips {
		total += c.DurationS
	}
	return total
}

func (p *Player) nextIndex() int {
	ni := p.idx + 1
	if ni >= len(p.prog.Clips) {
		if p.prog.Loop {
			return 0
		}
		return -1
	}
	return ni
}

func (p *Player) advanceClip() {
	next := p.nextIndex()
	if next == -1 {
		// End of program
		p.State = Idle
		return
	}
	if next == 0 {
		// keep the overshoot so looping does not drift
		p.nowS -= p.totalDuration()
		if p.nowS < 0 {
			p.nowS = 0
		}
	}
	p.idx = next
	p.enter()
}
