package identity

import (
	"math/rand/v2"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Luminosity is the brightness preference for generated colors.
type Luminosity string

const (
	LuminosityBright Luminosity = "bright"
	LuminosityLight  Luminosity = "light"
	LuminosityDark   Luminosity = "dark"
	LuminosityRandom Luminosity = "random"
)

// bounds are saturation and value ranges in [0,1].
type bounds struct {
	sMin, sMax float64
	vMin, vMax float64
}

var luminosityBounds = map[Luminosity]bounds{
	LuminosityBright: {sMin: 0.55, sMax: 1.0, vMin: 0.75, vMax: 1.0},
	LuminosityLight:  {sMin: 0.25, sMax: 0.55, vMin: 0.85, vMax: 1.0},
	LuminosityDark:   {sMin: 0.9, sMax: 1.0, vMin: 0.35, vMax: 0.55},
	LuminosityRandom: {sMin: 0.0, sMax: 1.0, vMin: 0.0, vMax: 1.0},
}

// Generator draws colors from its own random source.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator returns a Generator seeded with seed, for reproducible colors.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Color returns a "#rrggbb" color honoring l. Unknown values behave like
// LuminosityRandom.
func (g *Generator) Color(l Luminosity) string {
	b, ok := luminosityBounds[l]
	if !ok {
		b = luminosityBounds[LuminosityRandom]
	}

	g.mu.Lock()
	h := g.rnd.Float64() * 360
	s := b.sMin + g.rnd.Float64()*(b.sMax-b.sMin)
	v := b.vMin + g.rnd.Float64()*(b.vMax-b.vMin)
	g.mu.Unlock()

	return colorful.Hsv(h, s, v).Hex()
}

var defaultGenerator = &Generator{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}

// RandomColor is the default ColorGenerator.
func RandomColor(l Luminosity) string {
	return defaultGenerator.Color(l)
}
