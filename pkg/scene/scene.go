// Package scene is the retained-mode model of the map: one shape per
// state with its current fill and stroke, the hover tooltip, and the
// filter controller that recolors shapes.
//
// A Scene is mutable and not safe for concurrent use. Each HTTP request
// and each terminal session builds its own from a shared *atlas.Atlas.
package scene

import (
	"github.com/matzehuels/accessmap/pkg/atlas"
	"github.com/matzehuels/accessmap/pkg/region"
	"github.com/matzehuels/accessmap/pkg/topo"
)

// Viewport and styling constants.
const (
	DefaultWidth  = 975
	DefaultHeight = 610

	NeutralFill      = "#ccc"
	StrokeColor      = "#444"
	StrokeWidth      = 1.0
	HoverStrokeWidth = 2.0

	// Tooltip offset from the pointer.
	TooltipDX = 10.0
	TooltipDY = -28.0
)

// Shape is one drawn region.
type Shape struct {
	Code        region.Code
	Name        string
	Path        string // SVG path data in viewport coordinates
	Fill        string
	StrokeWidth float64
	Info        atlas.RegionInfo
}

// Tooltip is the hover popup state.
type Tooltip struct {
	Visible bool
	Title   string
	Lines   []string
	X, Y    float64
}

// Scene holds the shapes and the hover state.
type Scene struct {
	Width, Height float64

	atlas   *atlas.Atlas
	shapes  []Shape
	index   map[region.Code]int
	hovered int
	tooltip Tooltip
}

// Option configures New.
type Option func(*options)

type options struct {
	width, height float64
	projection    topo.Projection
	fit           bool
}

// WithSize sets the rendered width and height. The viewBox stays at the
// default viewport, so the map scales to fit.
func WithSize(width, height float64) Option {
	return func(o *options) {
		if width > 0 {
			o.width = width
		}
		if height > 0 {
			o.height = height
		}
	}
}

// WithProjection sets the projection from topology to viewport
// coordinates. The default is the identity, for pre-projected topologies.
func WithProjection(p topo.Projection) Option {
	return func(o *options) { o.projection = p }
}

// WithFit projects an unprojected (lon/lat) topology into the viewport,
// flipping the y axis.
func WithFit() Option {
	return func(o *options) { o.fit = true }
}

// New builds a scene with one gray shape per feature, in topology order.
func New(a *atlas.Atlas, opts ...Option) *Scene {
	o := options{width: DefaultWidth, height: DefaultHeight, projection: topo.Identity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fit {
		o.projection = topo.Fit(topo.Bounds(a.Features), DefaultWidth, DefaultHeight, true)
	}

	s := &Scene{
		Width:   o.width,
		Height:  o.height,
		atlas:   a,
		shapes:  make([]Shape, 0, len(a.Features)),
		index:   make(map[region.Code]int, len(a.Features)),
		hovered: -1,
	}
	for _, f := range a.Features {
		code := region.Code(f.ID)
		info := a.Region(code)
		s.index[code] = len(s.shapes)
		s.shapes = append(s.shapes, Shape{
			Code:        code,
			Name:        info.Name,
			Path:        topo.PathData(f.Geometry, o.projection),
			Fill:        NeutralFill,
			StrokeWidth: StrokeWidth,
			Info:        info,
		})
	}
	return s
}

// Atlas returns the context the scene was built from.
func (s *Scene) Atlas() *atlas.Atlas { return s.atlas }

// Shapes returns a copy of all shapes in draw order.
func (s *Scene) Shapes() []Shape {
	return append([]Shape(nil), s.shapes...)
}

// Shape returns the shape for code.
func (s *Scene) Shape(code region.Code) (Shape, bool) {
	i, ok := s.index[code]
	if !ok {
		return Shape{}, false
	}
	return s.shapes[i], true
}

// Len returns the number of shapes.
func (s *Scene) Len() int { return len(s.shapes) }

// Fills returns the current fill of every shape.
func (s *Scene) Fills() map[region.Code]string {
	fills := make(map[region.Code]string, len(s.shapes))
	for _, sh := range s.shapes {
		fills[sh.Code] = sh.Fill
	}
	return fills
}

// Reset grays every shape.
func (s *Scene) Reset() {
	for i := range s.shapes {
		s.shapes[i].Fill = NeutralFill
	}
}

// PointerEnter starts hovering code at page position (x, y). It returns
// false, changing nothing, if code has no shape.
func (s *Scene) PointerEnter(code region.Code, x, y float64) bool {
	i, ok := s.index[code]
	if !ok {
		return false
	}
	if s.hovered >= 0 && s.hovered != i {
		s.shapes[s.hovered].StrokeWidth = StrokeWidth
	}
	s.hovered = i
	s.shapes[i].StrokeWidth = HoverStrokeWidth

	info := s.shapes[i].Info
	s.tooltip = Tooltip{
		Visible: true,
		Title:   info.Name,
		Lines:   info.Lines(),
	}
	s.PointerMove(x, y)
	return true
}

// PointerMove repositions the tooltip while a shape is hovered.
func (s *Scene) PointerMove(x, y float64) {
	if s.hovered < 0 {
		return
	}
	s.tooltip.X = x + TooltipDX
	s.tooltip.Y = y + TooltipDY
}

// PointerLeave ends the hover and hides the tooltip.
func (s *Scene) PointerLeave() {
	if s.hovered >= 0 {
		s.shapes[s.hovered].StrokeWidth = StrokeWidth
	}
	s.hovered = -1
	s.tooltip = Tooltip{}
}

// Hovered returns the code under the pointer, if any.
func (s *Scene) Hovered() (region.Code, bool) {
	if s.hovered < 0 {
		return "", false
	}
	return s.shapes[s.hovered].Code, true
}

// Tooltip returns the current tooltip state.
func (s *Scene) Tooltip() Tooltip {
	t := s.tooltip
	t.Lines = append([]string(nil), t.Lines...)
	return t
}
