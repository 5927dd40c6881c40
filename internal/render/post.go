package render

import (
	"math"

	"github.com/coreman2200/funtimes-ledstrip/model"
)

// Power configures the current limiter. A zero BudgetMA disables the
// global budget; a zero WhiteCap disables the per-LED cap.
type Power struct {
	// WhiteCap bounds R+G+B per LED, in units of full scale (3 = no cap).
	WhiteCap float64 `yaml:"white_cap"`
	// ChannelMA is the draw of one channel at full scale; WS2812 is about 20.
	ChannelMA float64 `yaml:"channel_ma"`
	BudgetMA  float64 `yaml:"budget_ma"`
	// Knee is the fraction of the budget where soft limiting begins.
	Knee float64 `yaml:"knee"`
}

// PostPipeline runs on a copy of the projected frame before it reaches the
// driver: brightness, then gamma, then the limiter.
type PostPipeline struct {
	Brightness float64
	Gamma      float64
	Power      Power

	lut      [256]uint8
	lutGamma float64
}

func DefaultPost() PostPipeline {
	return PostPipeline{Brightness: 1, Gamma: 1}
}

func (p *PostPipeline) gammaLUT() *[256]uint8 {
	g := p.Gamma
	if g <= 0 {
		g = 1
	}
	if p.lutGamma != g {
		for i := range p.lut {
			p.lut[i] = uint8(math.Round(255 * math.Pow(float64(i)/255, g)))
		}
		p.lutGamma = g
	}
	return &p.lut
}

// Apply rewrites buf in place.
func (p *PostPipeline) Apply(buf []model.ColorVal) {
	if b := p.Brightness; b < 1 {
		for i := range buf {
			buf[i] = buf[i].Scale(b)
		}
	}
	if p.Gamma > 0 && p.Gamma != 1 {
		lut := p.gammaLUT()
		for i, c := range buf {
			ch := c.RGB()
			buf[i] = c.WithRGB(lut[ch[0]], lut[ch[1]], lut[ch[2]])
		}
	}
	DefaultLimiter(buf, p.Power)
}

// EstimateMA is the limiter's current model for a frame.
func EstimateMA(buf []model.ColorVal, chanMA float64) float64 {
	if chanMA <= 0 {
		chanMA = 20
	}
	total := 0
	for _, c := range buf {
		ch := c.RGB()
		total += int(ch[0]) + int(ch[1]) + int(ch[2])
	}
	return float64(total) / 255 * chanMA
}

// DefaultLimiter applies a two-stage limiter:
// 1) per-LED white cap: scales (R,G,B) so R+G+B <= WhiteCap
// 2) global current budget: scales the whole frame to stay under BudgetMA,
// gently from Knee*BudgetMA and fully above it.
func DefaultLimiter(buf []model.ColorVal, pw Power) {
	if pw.WhiteCap > 0 && pw.WhiteCap < 3 {
		wc := pw.WhiteCap * 255
		for i, c := range buf {
			ch := c.RGB()
			s := float64(ch[0]) + float64(ch[1]) + float64(ch[2])
			if s > wc {
				buf[i] = c.Scale(wc / s)
			}
		}
	}

	if pw.BudgetMA <= 0 {
		return
	}
	knee := pw.Knee
	if knee <= 0 || knee >= 1 {
		knee = 0.9
	}
	total := EstimateMA(buf, pw.ChannelMA)
	if total <= 0 {
		return
	}
	ratio := total / pw.BudgetMA
	if ratio <= knee {
		return
	}
	s := pw.BudgetMA / total
	if ratio <= 1 {
		// map ratio in [knee,1] to scale in [1, budget/total]
		t := (ratio - knee) / (1 - knee)
		s = 1 - t*(1-s)
	}
	applyGlobalScale(buf, s)
}

func applyGlobalScale(buf []model.ColorVal, s float64) {
	if s >= 1 {
		return
	}
	for i := range buf {
		buf[i] = buf[i].Scale(s)
	}
}
