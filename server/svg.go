package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/gdpchart/models"
)

const (
	xAxisLabel = "Year"
	yAxisLabel = "Gross Domestic Product"
	barFill    = "green"
)

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func attr(name, value string) string {
	return fmt.Sprintf(` %s="%s"`, name, templ.EscapeString(value))
}

// chartSVG draws the axes, axis labels and one rect per bar.
func chartSVG(c *models.Chart) string {
	p := c.Params
	pad := p.Padding
	base := p.Baseline()
	right := p.Width - pad.Right

	var b strings.Builder
	fmt.Fprintf(&b, `<svg class="graph" width="%s" height="%s" viewBox="0 0 %s %s">`, px(p.Width), px(p.Height), px(p.Width), px(p.Height))

	fmt.Fprintf(&b, `<g id="x-axis" transform="translate(0, %s)">`, px(base))
	fmt.Fprintf(&b, `<path class="domain" d="M%s,6V0H%sV6"></path>`, px(pad.Left), px(right))
	for _, t := range c.XTicks {
		fmt.Fprintf(&b, `<g class="tick" transform="translate(%s, 0)"><line y2="6"></line><text y="9" dy="0.71em" text-anchor="middle">%s</text></g>`,
			px(t.Pos), templ.EscapeString(t.Label))
	}
	b.WriteString(`</g>`)

	fmt.Fprintf(&b, `<g id="y-axis" transform="translate(%s, 0)">`, px(pad.Left))
	fmt.Fprintf(&b, `<path class="domain" d="M-6,%sH0V%sH-6"></path>`, px(base), px(pad.Top))
	for _, t := range c.YTicks {
		fmt.Fprintf(&b, `<g class="tick" transform="translate(0, %s)"><line x2="-6"></line><text x="-9" dy="0.32em" text-anchor="end">%s</text></g>`,
			px(t.Pos), templ.EscapeString(t.Label))
	}
	b.WriteString(`</g>`)

	fmt.Fprintf(&b, `<text id="x-axis-label" class="axis-label" x="%s" y="%s" text-anchor="middle">%s</text>`,
		px(pad.Left+p.PlotWidth()/2), px(p.Height-15), xAxisLabel)
	fmt.Fprintf(&b, `<text id="y-axis-label" class="axis-label" transform="rotate(-90)" x="%s" y="15" text-anchor="middle">%s</text>`,
		px(-(pad.Top+base)/2), yAxisLabel)

	for _, bar := range c.Bars {
		b.WriteString(`<rect class="bar"`)
		b.WriteString(attr("data-date", bar.Date))
		b.WriteString(attr("data-gdp", strconv.FormatFloat(bar.GDP, 'f', -1, 64)))
		b.WriteString(attr("data-index", strconv.Itoa(bar.Index)))
		b.WriteString(attr("data-quarter", bar.Quarter))
		b.WriteString(attr("data-value", bar.Value))
		b.WriteString(attr("data-offset", strconv.Itoa(bar.TooltipOffset)))
		fmt.Fprintf(&b, ` x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="white" stroke-width="1"><title>%s</title></rect>`,
			px(bar.X), px(bar.Y), px(bar.Width), px(bar.Height), barFill, templ.EscapeString(bar.Label()))
	}
	b.WriteString(`</svg>`)
	return b.String()
}
