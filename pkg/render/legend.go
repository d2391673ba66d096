package render

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/accessmap/pkg/colorscale"
)

// Legend geometry.
const (
	LegendWidth  = 300
	LegendHeight = 10
	LegendTicks  = 5
	LegendStops  = 10

	LegendCaption = "% of residents obtaining abortions who traveled out of state (2020)"
)

// RenderLegend renders the color ramp: a gradient bar, a bottom axis with
// evenly spaced ticks across the scale domain, and the caption.
func RenderLegend(scale *colorscale.Sequential) []byte {
	var buf bytes.Buffer
	writeLegend(&buf, scale)
	return buf.Bytes()
}

func writeLegend(buf *bytes.Buffer, scale *colorscale.Sequential) {
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" class="legend" width="%d" height="60">`+"\n", LegendWidth+50)
	buf.WriteString(`  <g transform="translate(20,20)">` + "\n")

	buf.WriteString(`    <defs><linearGradient id="legend-gradient">`)
	for _, st := range scale.Stops(LegendStops) {
		fmt.Fprintf(buf, `<stop offset="%s" stop-color="%s"/>`, formatNum(st.Offset), st.Color)
	}
	buf.WriteString("</linearGradient></defs>\n")

	fmt.Fprintf(buf, `    <rect width="%d" height="%d" style="fill: url(#legend-gradient)"/>`+"\n", LegendWidth, LegendHeight)

	fmt.Fprintf(buf, `    <g class="axis" transform="translate(0,%d)" font-family="sans-serif" font-size="10" text-anchor="middle">`+"\n", LegendHeight)
	fmt.Fprintf(buf, `      <path stroke="currentColor" fill="none" d="M0.5,6V0.5H%.1fV6"/>`+"\n", LegendWidth+0.5)
	for i, v := range scale.Ticks(LegendTicks) {
		x := float64(LegendWidth) * float64(i) / float64(LegendTicks-1)
		fmt.Fprintf(buf, `      <g class="tick" transform="translate(%s,0)"><line stroke="currentColor" y2="6"/><text fill="currentColor" y="9" dy="0.71em">%.1f%%</text></g>`+"\n",
			formatNum(x+0.5), v)
	}
	buf.WriteString("    </g>\n")

	fmt.Fprintf(buf, `    <text x="0" y="-5" style="font-family: Segoe UI; font-size: 12px">%s</text>`+"\n", escapeXML(LegendCaption))
	buf.WriteString("  </g>\n</svg>\n")
}
