package function

import (
	"context"
	"testing"

	"github.com/coreman2200/funtimes-ledstrip/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadOnCollision(t *testing.T) {
	e := NewEngine(1)
	a := NewSpark("a", 0, 2, 1, 1, []model.ColorVal{model.Red})
	b := NewSpark("b", 0, 4, 1, -1, []model.ColorVal{model.Blue})
	require.NoError(t, e.Add(a))
	require.NoError(t, e.Add(b))
	buf := strip(t, 10)

	require.NoError(t, e.Tick(context.Background(), buf))
	ma, mb := a.Motion(), b.Motion()
	assert.Contains(t, ma.Span, 3)
	assert.Contains(t, mb.Span, 3)
	assert.True(t, ma.Collided)
	assert.True(t, mb.Collided)
	assert.Equal(t, -1, ma.Direction)
	assert.Equal(t, 1, mb.Direction)
	for _, m := range []*Motion{ma, mb} {
		assert.True(t, m.Index >= 0 && m.Index < 10)
	}

	// moving apart from a shared cell is not another hit
	require.NoError(t, e.Tick(context.Background(), buf))
	assert.False(t, ma.Collided)
	assert.Equal(t, 1, ma.Hits)
	assert.Equal(t, 2, ma.Index)
	assert.Equal(t, 4, mb.Index)
}

func TestCrossingMoversBounceOffContact(t *testing.T) {
	e := NewEngine(1)
	a := NewSpark("a", 0, 2, 1, 1, nil)
	b := NewSpark("b", 0, 3, 1, -1, nil)
	require.NoError(t, e.Add(a))
	require.NoError(t, e.Add(b))
	buf := strip(t, 10)
	require.NoError(t, e.Tick(context.Background(), buf))
	assert.Equal(t, 1, a.Motion().Hits)

	for i := 0; i < 3; i++ {
		require.NoError(t, e.Tick(context.Background(), buf))
	}
	assert.Equal(t, 1, a.Motion().Hits, "no jitter after the bounce")
	assert.Equal(t, -1, a.Motion().Direction)
	assert.Equal(t, 1, b.Motion().Direction)
}

func TestCatchUpSwapsSteps(t *testing.T) {
	e := NewEngine(1)
	fast := NewSpark("fast", 0, 0, 2, 1, nil)
	slow := NewSpark("slow", 0, 1, 1, 1, nil)
	require.NoError(t, e.Add(fast))
	require.NoError(t, e.Add(slow))
	buf := strip(t, 10)

	require.NoError(t, e.Tick(context.Background(), buf))
	assert.Equal(t, 1, fast.Motion().Step)
	assert.Equal(t, 2, slow.Motion().Step)
	assert.Equal(t, 1, fast.Motion().Direction)

	require.NoError(t, e.Tick(context.Background(), buf))
	assert.Equal(t, 1, fast.Motion().Hits)
}

func TestSameSpeedInLineNeverCollide(t *testing.T) {
	e := NewEngine(1)
	a := NewSpark("a", 0, 0, 2, 1, nil)
	b := NewSpark("b", 0, 1, 2, 1, nil)
	require.NoError(t, e.Add(a))
	require.NoError(t, e.Add(b))
	buf := strip(t, 10)
	for i := 0; i < 10; i++ {
		require.NoError(t, e.Tick(context.Background(), buf))
	}
	assert.Equal(t, 0, a.Motion().Hits)
}

func TestCollisionExplosion(t *testing.T) {
	e := NewEngine(1)
	a := NewSpark("a", 0, 2, 1, 1, []model.ColorVal{model.Red})
	b := NewSpark("b", 0, 4, 1, -1, []model.ColorVal{model.Blue, model.Green})
	b.Motion().Explode = 2
	require.NoError(t, e.Add(a))
	require.NoError(t, e.Add(b))
	buf := strip(t, 10)

	require.NoError(t, e.Tick(context.Background(), buf))
	assert.True(t, buf.At(3).Equal(model.Blue), "burst center at full intensity")
	assert.False(t, buf.At(1).IsOff())
	assert.False(t, buf.At(5).IsOff())
	assert.Less(t, buf.At(5).GetB(), buf.At(4).GetB())
	assert.True(t, buf.At(0).IsOff())
	assert.True(t, b.Color.Equal(model.Green), "hit advances the color")
}

func TestSparkPaintsWholeSpan(t *testing.T) {
	e := NewEngine(1)
	s := NewSpark("s", 0, 8, 3, 1, []model.ColorVal{model.Red})
	require.NoError(t, e.Add(s))
	buf := strip(t, 10)
	require.NoError(t, e.Tick(context.Background(), buf))
	for _, i := range []int{8, 9, 0, 1} {
		assert.True(t, buf.At(i).Equal(model.Red), "cell %d", i)
	}
	assert.Equal(t, 1, s.Motion().Index)
}

func TestEqualStepCatchUpBouncesChaser(t *testing.T) {
	e := NewEngine(1)
	chaser := NewSpark("chaser", 0, 2, 1, 1, nil)
	// delayed, so it holds its cell on the first tick
	parked := NewSpark("parked", 5, 3, 1, 1, nil)
	require.NoError(t, e.Add(chaser))
	require.NoError(t, e.Add(parked))
	buf := strip(t, 10)

	require.NoError(t, e.Tick(context.Background(), buf))
	mc, mp := chaser.Motion(), parked.Motion()
	assert.Equal(t, 1, mc.Hits)
	assert.Equal(t, -1, mc.Direction)
	assert.Equal(t, 3, mc.Index)
	assert.Equal(t, 1, mp.Direction)
	assert.Equal(t, 3, mp.Index)

	require.NoError(t, e.Tick(context.Background(), buf))
	assert.Equal(t, 2, mc.Index, "chaser heads back instead of passing through")
	assert.Equal(t, 1, mc.Hits)
}
