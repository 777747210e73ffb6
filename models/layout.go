package models

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultWidth = 1000
	MinWidth     = 320
	MaxHeight    = 600
	HeightRatio  = 0.6

	// Pixel offsets applied to the cursor position when the tooltip is shown.
	TooltipRise        = 20
	TooltipOffsetRight = 20
	TooltipOffsetLeft  = -150

	tickCount = 10
)

// DefaultPadding leaves more room on the left and bottom, where the axes
// and their labels are drawn.
var DefaultPadding = Padding{Top: 20, Right: 20, Bottom: 60, Left: 60}

var tickPrinter = message.NewPrinter(language.English)

type Padding struct {
	Top, Right, Bottom, Left float64
}

// ScaleParams is everything a render derives from the dataset and the
// viewport. YearMin and YearMax are the x-domain bounds, so YearMax is one
// past the last year in the data.
type ScaleParams struct {
	YearMin int
	YearMax int
	GDPMax  float64
	Width   float64
	Height  float64
	Padding Padding
}

// Tick is one labelled axis tick at pixel position Pos.
type Tick struct {
	Value float64
	Pos   float64
	Label string
}

// Bar is one rendered data point.
type Bar struct {
	Index         int
	Date          string
	GDP           float64
	X, Y          float64
	Width, Height float64
	Quarter       string
	Value         string
	TooltipOffset int
}

// Chart is a fully laid out bar chart, ready to be drawn.
type Chart struct {
	Title   string
	Links   []Link
	Params  ScaleParams
	X, Y    LinearScale
	XTicks  []Tick
	YTicks  []Tick
	Bars    []Bar
	Warning string
}

// PlotWidth is the horizontal space between the left and right padding.
func (p ScaleParams) PlotWidth() float64 {
	return p.Width - p.Padding.Left - p.Padding.Right
}

// Baseline is the y pixel of the x axis, where a zero value sits.
func (p ScaleParams) Baseline() float64 {
	return p.Height - p.Padding.Bottom
}

// NewScaleParams clamps the viewport width, derives the height from it and
// rounds the y-domain up to the next multiple of 1000.
func NewScaleParams(ds *Dataset, viewportWidth int) ScaleParams {
	width := float64(viewportWidth)
	if width < MinWidth {
		width = MinWidth
	}
	height := math.Min(width*HeightRatio, MaxHeight)

	lo, hi := ds.YearRange()
	gdpMax := math.Ceil(ds.MaxGDP()/1000) * 1000
	if gdpMax <= 0 {
		gdpMax = 1000
	}
	return ScaleParams{
		YearMin: lo,
		YearMax: hi + 1,
		GDPMax:  gdpMax,
		Width:   width,
		Height:  height,
		Padding: DefaultPadding,
	}
}

// Render parses raw and lays it out for the given viewport width. A payload
// that fails to parse yields a *ParseError and no chart.
func Render(raw []byte, viewportWidth int) (*Chart, error) {
	ds, err := ParseDataset(raw)
	if err != nil {
		return nil, err
	}
	return Layout(ds, viewportWidth), nil
}

// Layout computes scales, axis ticks and one bar per data point.
func Layout(ds *Dataset, viewportWidth int) *Chart {
	params := NewScaleParams(ds, viewportWidth)
	pad := params.Padding

	x := NewLinearScale(float64(params.YearMin), float64(params.YearMax), pad.Left, params.Width-pad.Right)
	y := NewLinearScale(0, params.GDPMax, params.Baseline(), pad.Top)

	chart := &Chart{
		Title:  ds.Title(),
		Links:  ds.Attribution(),
		Params: params,
		X:      x,
		Y:      y,
		XTicks: axisTicks(x, formatYearTick),
		YTicks: axisTicks(y, formatValueTick),
		Bars:   make([]Bar, len(ds.Data)),
	}
	if err := ds.CheckQuarters(); err != nil {
		chart.Warning = err.Error()
	}

	n := len(ds.Data)
	barWidth := params.PlotWidth() / float64(n)
	zero := y.Scale(0)
	for i, p := range ds.Data {
		top := y.Scale(p.GDP)
		chart.Bars[i] = Bar{
			Index:         i,
			Date:          p.Date,
			GDP:           p.GDP,
			X:             x.Scale(float64(p.Year()) + 0.25*float64(i%4)),
			Y:             top,
			Width:         barWidth,
			Height:        zero - top,
			Quarter:       QuarterLabel(i, p),
			Value:         ValueLabel(p),
			TooltipOffset: TooltipOffset(i, n),
		}
	}
	return chart
}

// QuarterLabel names the quarter of the i-th point, e.g. "Q1 1947".
func QuarterLabel(i int, p DataPoint) string {
	return fmt.Sprintf("Q%d %d", i%4+1, p.Year())
}

// ValueLabel formats a value rounded to whole billions, e.g. "$243 Billion".
func ValueLabel(p DataPoint) string {
	return fmt.Sprintf("$%d Billion", int64(math.Round(p.GDP)))
}

func TooltipLabel(i int, p DataPoint) string {
	return QuarterLabel(i, p) + " — " + ValueLabel(p)
}

// TooltipOffset returns the horizontal offset from the cursor for the tooltip
// of the i-th of n bars. Past the middle of the data the tooltip flips to the
// left of the cursor so it stays on screen.
func TooltipOffset(i, n int) int {
	if float64(i) < float64(n)/2 {
		return TooltipOffsetRight
	}
	return TooltipOffsetLeft
}

func (b Bar) Label() string {
	return b.Quarter + " — " + b.Value
}

func axisTicks(s LinearScale, format func(float64) string) []Tick {
	values := s.Ticks(tickCount)
	ticks := make([]Tick, len(values))
	for i, v := range values {
		ticks[i] = Tick{Value: v, Pos: s.Scale(v), Label: format(v)}
	}
	return ticks
}

func formatYearTick(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatValueTick(v float64) string {
	if v == math.Trunc(v) {
		return tickPrinter.Sprintf("%d", int64(v))
	}
	return tickPrinter.Sprintf("%.1f", v)
}
