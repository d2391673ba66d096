package topo

import (
	"math"
	"strconv"

	"github.com/twpayne/go-geom"
)

// Projection maps geometry coordinates to screen coordinates.
type Projection func(x, y float64) (float64, float64)

// Identity leaves coordinates untouched. It suits pre-projected topologies
// such as us-atlas' states-albers-10m, whose coordinates are already pixels
// in a 975x610 frame.
func Identity(x, y float64) (float64, float64) { return x, y }

// Fit scales and centers bounds into a width x height frame, preserving
// aspect ratio. flipY mirrors the vertical axis, which is needed for
// longitude/latitude data where y grows northwards.
func Fit(b *geom.Bounds, width, height float64, flipY bool) Projection {
	if b == nil || b.IsEmpty() {
		return Identity
	}
	minX, minY := b.Min(0), b.Min(1)
	dx, dy := b.Max(0)-minX, b.Max(1)-minY
	if dx == 0 || dy == 0 {
		return Identity
	}
	k := math.Min(width/dx, height/dy)
	ox := (width - dx*k) / 2
	oy := (height - dy*k) / 2
	return func(x, y float64) (float64, float64) {
		px := ox + (x-minX)*k
		py := oy + (y-minY)*k
		if flipY {
			py = height - py
		}
		return px, py
	}
}

// Bounds returns the combined bounds of all features.
func Bounds(features []Feature) *geom.Bounds {
	b := geom.NewBounds(geom.XY)
	for _, f := range features {
		if f.Geometry != nil && f.Geometry.NumPolygons() > 0 {
			b.Extend(f.Geometry)
		}
	}
	return b
}

// PathData renders g as SVG path data: one "M x,y L x,y ... Z" subpath per
// ring. Coordinates are rounded to two decimals.
func PathData(g *geom.MultiPolygon, proj Projection) string {
	if g == nil {
		return ""
	}
	if proj == nil {
		proj = Identity
	}
	var buf []byte
	for _, poly := range g.Coords() {
		for _, ring := range poly {
			if len(ring) == 0 {
				continue
			}
			for i, c := range ring {
				x, y := proj(c.X(), c.Y())
				if i == 0 {
					buf = append(buf, 'M')
				} else {
					buf = append(buf, 'L')
				}
				buf = appendCoord(buf, x)
				buf = append(buf, ',')
				buf = appendCoord(buf, y)
			}
			buf = append(buf, 'Z')
		}
	}
	return string(buf)
}

func appendCoord(buf []byte, v float64) []byte {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // normalize -0
	}
	return strconv.AppendFloat(buf, v, 'f', -1, 64)
}
