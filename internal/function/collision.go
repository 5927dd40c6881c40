package function

// Motion is the positional state of a Mover.
type Motion struct {
	Index     int
	Step      int
	Direction int
	// Explode is the radius of the burst painted on a hit; 0 disables it.
	Explode int

	// Per tick: where the move started and every cell it covered.
	Origin   int
	Span     []int
	Moved    bool
	Collided bool
	Hits     int
}

// begin resets the per tick state; a mover that does not step this tick
// only occupies its current cell.
func (m *Motion) begin() {
	m.Origin = m.Index
	m.Span = append(m.Span[:0], m.Index)
	m.Moved = false
	m.Collided = false
}

// move advances the motion on a ring of n cells and records the span.
func (m *Motion) move(n int) []int {
	m.Origin = m.Index
	m.Step, m.Direction = normalize(m.Step, m.Direction)
	next, span := Advance(m.Index, m.Step, m.Direction, n)
	m.Index, m.Span, m.Moved = next, span, true
	return span
}

func (m *Motion) stride() int {
	if m.Moved {
		return m.Step
	}
	return 0
}

// gapAlong is how far to sits ahead of from when travelling in dir.
func gapAlong(from, to, dir, n int) int {
	return Wrap((to-from)*dir, n)
}

// contact is the first cell of a's span that b also covered, or -1.
func contact(a, b []int) int {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return x
			}
		}
	}
	return -1
}

// approaching reports whether a and b were closing on each other this tick.
// Overlapping spans of movers heading apart, or of same speed movers in
// line, are not a hit.
func approaching(a, b *Motion, n int) bool {
	if a.Direction != b.Direction {
		g := gapAlong(a.Origin, b.Origin, a.Direction, n)
		return g > 0 && g <= a.stride()+b.stride()
	}
	fast, slow := a, b
	if b.stride() > a.stride() {
		fast, slow = b, a
	}
	if fast.stride() == slow.stride() {
		return false
	}
	g := gapAlong(fast.Origin, slow.Origin, fast.Direction, n)
	return g > 0 && g <= fast.stride()
}

// collide checks every pair of movers against this tick's spans. Head on
// hits reverse both directions and put each mover on its contact cell;
// a catch-up hit exchanges step sizes, or reverses the chaser when the
// steps are equal.
func (e *Engine) collide(c *Context) {
	n := c.Buf.Len()
	var movers []Mover
	for _, f := range e.funcs {
		if m, ok := f.(Mover); ok {
			movers = append(movers, m)
		}
	}
	type hit struct {
		m    Mover
		cell int
	}
	var hits []hit
	for i := 0; i < len(movers); i++ {
		a := movers[i].Motion()
		for j := i + 1; j < len(movers); j++ {
			b := movers[j].Motion()
			if a.Collided || b.Collided {
				continue
			}
			ca, cb := contact(a.Span, b.Span), contact(b.Span, a.Span)
			if ca < 0 || !approaching(a, b, n) {
				continue
			}
			if a.Direction != b.Direction {
				a.Direction, b.Direction = -a.Direction, -b.Direction
				a.Index, b.Index = ca, cb
			} else if a.Step != b.Step {
				a.Step, b.Step = b.Step, a.Step
			} else {
				// equal steps would swap to the same thing: the chaser bounces back
				if b.stride() > a.stride() {
					b.Direction, b.Index = -b.Direction, cb
				} else {
					a.Direction, a.Index = -a.Direction, ca
				}
			}
			a.Collided, b.Collided = true, true
			a.Hits++
			b.Hits++
			hits = append(hits, hit{movers[i], ca}, hit{movers[j], cb})
			e.log.Debug().Int("cell", ca).Str("a", movers[i].Name()).Str("b", movers[j].Name()).Msg("collision")
		}
	}
	for _, h := range hits {
		m := h.m
		cell := h.cell
		if err := e.run(c, m, func() error { m.OnCollision(c, cell); return nil }); err != nil {
			e.log.Warn().Err(err).Str("function", m.Name()).Msg("collision handler faulted")
		}
	}
}
