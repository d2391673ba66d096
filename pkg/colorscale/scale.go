// Package colorscale maps travel-rate values to colors.
//
// A [Sequential] scale normalizes a value against a fixed [min, max] domain
// and feeds the result to an [Interpolator]. The only interpolator shipped is
// [Reds], a nine-stop sequential red scheme smoothed with a uniform cubic
// B-spline, matching the palette used by common charting libraries.
package colorscale

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Interpolator maps t in [0, 1] to a color. Implementations clamp t.
type Interpolator func(t float64) colorful.Color

// redsScheme is the nine-class sequential red palette, light to dark.
var redsScheme = []string{
	"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a",
	"#ef3b2c", "#cb181d", "#a50f15", "#67000d",
}

// Reds returns the sequential red interpolator. Reds()(0) is #fff5f0 and
// Reds()(1) is #67000d.
func Reds() Interpolator {
	return Basis(redsScheme)
}

// Basis returns an interpolator through hex colors using a uniform cubic
// B-spline on each RGB channel. The end points are hit exactly.
func Basis(hexes []string) Interpolator {
	cols := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic("colorscale: bad color " + h)
		}
		cols[i] = c
	}
	r := make([]float64, len(cols))
	g := make([]float64, len(cols))
	b := make([]float64, len(cols))
	for i, c := range cols {
		r[i], g[i], b[i] = c.R, c.G, c.B
	}
	fr, fg, fb := basisChannel(r), basisChannel(g), basisChannel(b)
	return func(t float64) colorful.Color {
		return colorful.Color{R: fr(t), G: fg(t), B: fb(t)}.Clamped()
	}
}

func basisChannel(values []float64) func(float64) float64 {
	n := len(values) - 1
	return func(t float64) float64 {
		var i int
		switch {
		case t <= 0 || math.IsNaN(t):
			t = 0
			i = 0
		case t >= 1:
			t = 1
			i = n - 1
		default:
			i = int(math.Floor(t * float64(n)))
		}
		v1, v2 := values[i], values[i+1]
		v0 := 2*v1 - v2
		if i > 0 {
			v0 = values[i-1]
		}
		v3 := 2*v2 - v1
		if i < n-1 {
			v3 = values[i+2]
		}
		return basis((t-float64(i)/float64(n))*float64(n), v0, v1, v2, v3)
	}
}

func basis(t1, v0, v1, v2, v3 float64) float64 {
	t2 := t1 * t1
	t3 := t2 * t1
	return ((1-3*t1+3*t2-t3)*v0 +
		(4-6*t2+3*t3)*v1 +
		(1+3*t1+3*t2-3*t3)*v2 +
		t3*v3) / 6
}

// Sequential is a continuous scale over a fixed domain. It is immutable and
// safe for concurrent use.
type Sequential struct {
	lo, hi float64
	interp Interpolator
}

// NewSequential fits the domain to [min, max] of values, ignoring NaN and
// infinities.
// With no numeric values the domain is [0, 0]. A nil interp means [Reds].
func NewSequential(values []float64, interp Interpolator) *Sequential {
	if interp == nil {
		interp = Reds()
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo > hi {
		lo, hi = 0, 0
	}
	return &Sequential{lo: lo, hi: hi, interp: interp}
}

// Domain returns the fitted [min, max].
func (s *Sequential) Domain() (lo, hi float64) { return s.lo, s.hi }

// Normalize maps v to [0, 1]. Values outside the domain are clamped; a
// degenerate domain and NaN map to 0.
func (s *Sequential) Normalize(v float64) float64 {
	if s.hi == s.lo || math.IsNaN(v) {
		return 0
	}
	t := (v - s.lo) / (s.hi - s.lo)
	return max(0, min(1, t))
}

// Color returns the color for v.
func (s *Sequential) Color(v float64) colorful.Color {
	return s.interp(s.Normalize(v))
}

// Hex returns the color for v as "#rrggbb".
func (s *Sequential) Hex(v float64) string {
	return s.Color(v).Hex()
}

// At returns the interpolator color at t directly, bypassing the domain.
func (s *Sequential) At(t float64) colorful.Color {
	return s.interp(t)
}

// Ticks returns n evenly spaced values from min to max inclusive.
func (s *Sequential) Ticks(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{s.lo}
	}
	ticks := make([]float64, n)
	step := (s.hi - s.lo) / float64(n-1)
	for i := range ticks {
		ticks[i] = s.lo + step*float64(i)
	}
	ticks[n-1] = s.hi
	return ticks
}

// Stop is one gradient stop of the legend bar.
type Stop struct {
	Offset float64
	Color  string
}

// Stops returns n+1 stops at offsets 0, 1/n, ..., 1 along the interpolator.
func (s *Sequential) Stops(n int) []Stop {
	if n <= 0 {
		n = 1
	}
	stops := make([]Stop, n+1)
	for i := range stops {
		t := float64(i) / float64(n)
		stops[i] = Stop{Offset: t, Color: s.interp(t).Hex()}
	}
	return stops
}
