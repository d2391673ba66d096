package render

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/accessmap/pkg/scene"
)

// DefaultPageTitle heads the HTML page.
const DefaultPageTitle = "Abortion access and out-of-state travel by state"

const pageCSS = `
    body { font-family: "Segoe UI", sans-serif; margin: 24px; color: #222; }
    .controls { display: flex; gap: 32px; margin: 12px 0; }
    .controls label { display: block; font-size: 13px; margin-bottom: 4px; }
    .state { cursor: pointer; }
    .tooltip { position: absolute; opacity: 0; pointer-events: none; background: #fff;
      border: 1px solid #999; border-radius: 3px; padding: 6px 8px; font-size: 12px; line-height: 1.4; }`

// pageJS mirrors scene.Passes: inclusive maxima, and a region with any
// missing value stays gray.
const pageJS = `
    const neutral = '#ccc';
    const tooltip = document.getElementById('tooltip');
    const clinicSlider = document.getElementById('clinicSlider');
    const providerSlider = document.getElementById('providerSlider');
    const states = document.querySelectorAll('#us-map .state');

    states.forEach(el => {
      el.addEventListener('mouseover', () => {
        el.setAttribute('stroke-width', '2');
        tooltip.style.opacity = 1;
        const title = document.createElement('strong');
        title.textContent = el.dataset.name;
        const nodes = [title];
        ['Out-of-state travel: ' + el.dataset.travel + '%',
          'Clinic access: ' + el.dataset.clinic + '%',
          'Provider access: ' + el.dataset.provider + '%'].forEach(line => {
          nodes.push(document.createElement('br'), document.createTextNode(line));
        });
        tooltip.replaceChildren(...nodes);
      });
      el.addEventListener('mousemove', evt => {
        tooltip.style.left = (evt.pageX + 10) + 'px';
        tooltip.style.top = (evt.pageY - 28) + 'px';
      });
      el.addEventListener('mouseout', () => {
        el.setAttribute('stroke-width', '1');
        tooltip.style.opacity = 0;
      });
    });

    function updateMapColors() {
      const clinicMax = +clinicSlider.value;
      const providerMax = +providerSlider.value;
      document.getElementById('clinicVal').textContent = clinicMax + '%';
      document.getElementById('providerVal').textContent = providerMax + '%';
      states.forEach(el => {
        const d = el.dataset;
        if (!d.color || d.clinicAccess === '' || d.providerAccess === '') {
          el.setAttribute('fill', neutral);
          return;
        }
        const pass = +d.clinicAccess <= clinicMax && +d.providerAccess <= providerMax;
        el.setAttribute('fill', pass ? d.color : neutral);
      });
    }
    clinicSlider.addEventListener('input', updateMapColors);
    providerSlider.addEventListener('input', updateMapColors);`

// PageOption configures RenderPage.
type PageOption func(*pageRenderer)

type pageRenderer struct {
	title string
}

// WithPageTitle replaces [DefaultPageTitle].
func WithPageTitle(t string) PageOption { return func(r *pageRenderer) { r.title = t } }

// RenderPage renders a self-contained HTML page for the controller's
// scene: the map, the legend, and both sliders at the controller's
// current values.
func RenderPage(c *scene.Controller, opts ...PageOption) []byte {
	r := pageRenderer{title: DefaultPageTitle}
	for _, opt := range opts {
		opt(&r)
	}
	s := c.Scene()
	th := c.Thresholds()
	clinicLabel, providerLabel := c.Labels()

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", escapeXML(r.title))
	fmt.Fprintf(&buf, "<style>%s\n</style>\n</head>\n<body>\n", pageCSS)
	fmt.Fprintf(&buf, "<h1>%s</h1>\n", escapeXML(r.title))

	buf.WriteString("<div class=\"controls\">\n")
	writeSlider(&buf, "clinicSlider", "clinicVal", "Max % of counties with a known clinic", th.ClinicMax, clinicLabel)
	writeSlider(&buf, "providerSlider", "providerVal", "Max % of counties with a known provider", th.ProviderMax, providerLabel)
	buf.WriteString("</div>\n")

	writeMapSVG(&buf, s, svgRenderer{id: "us-map"})
	buf.WriteString("<div id=\"legend\">\n")
	writeLegend(&buf, s.Atlas().Scale)
	buf.WriteString("</div>\n")

	buf.WriteString("<div id=\"tooltip\" class=\"tooltip\"></div>\n")
	fmt.Fprintf(&buf, "<script>%s\n</script>\n</body>\n</html>\n", pageJS)
	return buf.Bytes()
}

func writeSlider(buf *bytes.Buffer, id, valID, label string, value float64, text string) {
	fmt.Fprintf(buf, `  <div><label for="%s">%s: <span id="%s">%s</span></label>`, id, escapeXML(label), valID, text)
	fmt.Fprintf(buf, `<input type="range" id="%s" min="0" max="100" step="1" value="%s"></div>`+"\n", id, formatNum(value))
}
