package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/accessmap/pkg/scene"
)

const mapCSS = `
    .state { cursor: pointer; }
    .tooltip { pointer-events: none; font: 12px sans-serif; }
    .tooltip rect { fill: #fff; stroke: #999; }`

// svgTooltipJS positions an in-SVG tooltip at the pointer, offset by
// (+10, -28) in viewBox units.
const svgTooltipJS = `
    (function () {
      const svg = document.currentScript ? document.currentScript.closest('svg') : document.querySelector('svg');
      const tip = svg.querySelector('.tooltip');
      const text = tip.querySelector('text');
      const pt = svg.createSVGPoint();
      function place(evt) {
        pt.x = evt.clientX; pt.y = evt.clientY;
        const p = pt.matrixTransform(svg.getScreenCTM().inverse());
        tip.setAttribute('transform', 'translate(' + (p.x + 10).toFixed(1) + ',' + (p.y - 28).toFixed(1) + ')');
      }
      svg.querySelectorAll('.state').forEach(el => {
        el.addEventListener('mouseenter', evt => {
          el.setAttribute('stroke-width', '2');
          const lines = [el.dataset.name, 'Out-of-state travel: ' + el.dataset.travel + '%',
            'Clinic access: ' + el.dataset.clinic + '%', 'Provider access: ' + el.dataset.provider + '%'];
          text.querySelectorAll('tspan').forEach((ts, i) => { ts.textContent = lines[i]; });
          const box = text.getBBox();
          const rect = tip.querySelector('rect');
          rect.setAttribute('width', (box.width + 12).toFixed(1));
          rect.setAttribute('height', (box.height + 8).toFixed(1));
          place(evt);
          tip.setAttribute('visibility', 'visible');
        });
        el.addEventListener('mousemove', place);
        el.addEventListener('mouseleave', () => {
          el.setAttribute('stroke-width', '1');
          tip.setAttribute('visibility', 'hidden');
        });
      });
    })();`

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	tooltips bool
	title    string
	id       string
}

// WithTooltips embeds the hover tooltip and its script.
func WithTooltips() SVGOption { return func(r *svgRenderer) { r.tooltips = true } }

// WithTitle adds a <title> element.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithID sets the id of the root <svg> element.
func WithID(id string) SVGOption { return func(r *svgRenderer) { r.id = id } }

// RenderSVG renders the scene's current fills and strokes.
func RenderSVG(s *scene.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{id: "us-map"}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	writeMapSVG(&buf, s, r)
	return buf.Bytes()
}

func writeMapSVG(buf *bytes.Buffer, s *scene.Scene, r svgRenderer) {
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" id="%s" viewBox="0 0 %d %d" width="%s" height="%s">`+"\n",
		escapeXML(r.id), scene.DefaultWidth, scene.DefaultHeight, formatNum(s.Width), formatNum(s.Height))
	if r.title != "" {
		fmt.Fprintf(buf, "  <title>%s</title>\n", escapeXML(r.title))
	}

	fmt.Fprintf(buf, `  <g stroke="%s">`+"\n", scene.StrokeColor)
	for _, sh := range s.Shapes() {
		writeShape(buf, s, sh)
	}
	buf.WriteString("  </g>\n")

	if r.tooltips {
		renderSVGTooltip(buf)
	}
	buf.WriteString("</svg>\n")
}

func writeShape(buf *bytes.Buffer, s *scene.Scene, sh scene.Shape) {
	info := sh.Info
	m := info.Metrics()
	color := ""
	if m.Complete() {
		color = s.Atlas().Scale.Hex(m.Travel)
	}
	fmt.Fprintf(buf, `    <path class="state" id="state-%s" d="%s" fill="%s" stroke-width="%s"`,
		escapeXML(string(sh.Code)), sh.Path, sh.Fill, formatNum(sh.StrokeWidth))
	fmt.Fprintf(buf, ` data-code="%s" data-name="%s" data-travel="%s" data-clinic="%s" data-provider="%s"`,
		escapeXML(string(sh.Code)), escapeXML(sh.Name),
		info.Travel.String(), info.ClinicAccess.String(), info.ProviderAccess.String())
	fmt.Fprintf(buf, ` data-color="%s" data-clinic-access="%s" data-provider-access="%s"><title>%s</title></path>`+"\n",
		color, rawValue(m.ClinicAccess), rawValue(m.ProviderAccess), escapeXML(sh.Name))
}

func renderSVGTooltip(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", mapCSS)
	buf.WriteString(`  <g class="tooltip" visibility="hidden"><rect rx="3" ry="3"/><text x="6" y="4">`)
	for i := range 4 {
		weight := ""
		if i == 0 {
			weight = ` font-weight="bold"`
		}
		fmt.Fprintf(buf, `<tspan x="6" dy="1.2em"%s></tspan>`, weight)
	}
	buf.WriteString("</text></g>\n")
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", svgTooltipJS)
}

// rawValue encodes a metric for a data attribute; NaN becomes empty.
func rawValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
