package render

import (
	"testing"

	"github.com/coreman2200/funtimes-ledstrip/model"
	"github.com/stretchr/testify/assert"
)

func TestDefaultLimiterBudgetClamp(t *testing.T) {
	// 10 LEDs all white: 10 * 60 = 600 mA before limiting
	buf := model.SolidColorArray(10, model.White)
	DefaultLimiter(buf, Power{ChannelMA: 20, BudgetMA: 300, WhiteCap: 3, Knee: 0.9})
	cur := EstimateMA(buf, 20)
	assert.LessOrEqual(t, cur, 300.1)
	assert.Greater(t, cur, 250.0)
}

func TestLimiterUnderKneeIsUntouched(t *testing.T) {
	buf := model.SolidColorArray(2, model.Red)
	DefaultLimiter(buf, Power{ChannelMA: 20, BudgetMA: 1000})
	assert.True(t, buf[0].Equal(model.Red))
}

func TestWhiteCap(t *testing.T) {
	buf := []model.ColorVal{model.White}
	DefaultLimiter(buf, Power{WhiteCap: 1.5})
	ch := buf[0].RGB()
	sum := int(ch[0]) + int(ch[1]) + int(ch[2])
	assert.LessOrEqual(t, sum, 383)
}

func TestGammaLUT(t *testing.T) {
	p := DefaultPost()
	p.Gamma = 2.2
	buf := []model.ColorVal{model.White, model.MustColor(0x808080), model.Off}
	p.Apply(buf)
	assert.True(t, buf[0].Equal(model.White))
	assert.Less(t, buf[1].GetR(), uint8(0x80))
	assert.True(t, buf[2].IsOff())
}
