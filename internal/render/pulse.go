package render

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Pulse oscillates between lo and hi, used to animate changing tiles.
type Pulse struct {
	lo, hi float32
	half   float32
	rising bool
	value  float32
	tween  *gween.Tween
}

// NewPulse returns a pulse that takes period to travel lo -> hi -> lo.
func NewPulse(lo, hi float32, period time.Duration) *Pulse {
	half := float32(period.Seconds()) / 2
	if half <= 0 {
		half = 0.5
	}
	p := &Pulse{lo: lo, hi: hi, half: half, rising: true, value: lo}
	p.tween = p.next()
	return p
}

func (p *Pulse) next() *gween.Tween {
	if p.rising {
		return gween.New(p.lo, p.hi, p.half, ease.InOutQuad)
	}
	return gween.New(p.hi, p.lo, p.half, ease.InOutQuad)
}

// Update advances the pulse and returns the new value.
func (p *Pulse) Update(dt time.Duration) float32 {
	v, done := p.tween.Update(float32(dt.Seconds()))
	p.value = v
	if done {
		p.rising = !p.rising
		p.tween = p.next()
	}
	return v
}

// Value reports the last computed value.
func (p *Pulse) Value() float32 { return p.value }
