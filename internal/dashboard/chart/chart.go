// Package chart draws the dashboard charts as inline SVG.
package chart

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 640
	DefaultHeight  = 260
	DefaultPadding = 36.0
	DefaultTicks   = 4
)

const (
	axisColor = "#64748b"
	gridColor = "#e2e8f0"
)

// Bar is one bar of a bar chart.
type Bar struct {
	Label string
	Value float64
	Color string
}

// Opts titles a chart and formats its axis.
type Opts struct {
	Title       string
	Description string
	Color       string
	// Tick formats axis values; defaults to compact numbers.
	Tick func(float64) string
}

type frame struct {
	width, height           int
	padding                 float64
	chartWidth, chartHeight float64
	maxVal                  float64
	tick                    func(float64) string
}

func newFrame(width, height int, values []float64, tick func(float64) string) (frame, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	f := frame{width: width, height: height, padding: DefaultPadding, tick: tick}
	f.chartWidth = float64(width) - 2*f.padding
	f.chartHeight = float64(height) - 2*f.padding
	if f.chartWidth <= 0 || f.chartHeight <= 0 {
		return frame{}, fmt.Errorf("chart: viewport too small")
	}
	for _, v := range values {
		f.maxVal = math.Max(f.maxVal, v)
	}
	if f.maxVal <= 0 {
		f.maxVal = 1
	}
	if f.tick == nil {
		f.tick = Compact
	}
	return f, nil
}

func (f frame) y(v float64) float64 {
	return f.padding + f.chartHeight - math.Max(v, 0)/f.maxVal*f.chartHeight
}

func (f frame) open(b *strings.Builder, opts Opts, kind string) {
	titleID := makeID(opts.Title, kind+"-title")
	descID := makeID(opts.Title, kind+"-desc")
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, f.width, f.height, titleID, descID)
	fmt.Fprintf(b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(fallback(opts.Title, "Gráfico")))
	fmt.Fprintf(b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(opts.Description))
	for i := 0; i <= DefaultTicks; i++ {
		value := f.maxVal * float64(i) / DefaultTicks
		y := f.y(value)
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`, f.padding, y, f.padding+f.chartWidth, y, gridColor)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`, f.padding-6, y+4, axisColor, template.HTMLEscapeString(f.tick(value)))
	}
	base := f.padding + f.chartHeight
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"></line>`, f.padding, base, f.padding+f.chartWidth, base, axisColor)
}

func (f frame) label(b *strings.Builder, x float64, text string) {
	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, x, f.padding+f.chartHeight+16, axisColor, template.HTMLEscapeString(text))
}

// Bars renders one bar per entry, each in its own color.
func Bars(width, height int, bars []Bar, opts Opts) (template.HTML, error) {
	if len(bars) == 0 {
		return "", fmt.Errorf("chart: bars required")
	}
	values := make([]float64, len(bars))
	for i, bar := range bars {
		values[i] = bar.Value
	}
	f, err := newFrame(width, height, values, opts.Tick)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	f.open(&b, opts, "bar")
	slot := f.chartWidth / float64(len(bars))
	barWidth := slot * 0.6
	for i, bar := range bars {
		x := f.padding + float64(i)*slot + (slot-barWidth)/2
		y := f.y(bar.Value)
		h := f.padding + f.chartHeight - y
		color := fallback(bar.Color, fallback(opts.Color, "#2563eb"))
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="3" fill="%s"><title>%s: %s</title></rect>`,
			x, y, barWidth, h, color, template.HTMLEscapeString(bar.Label), template.HTMLEscapeString(f.tick(bar.Value)))
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="11" text-anchor="middle">%s</text>`, x+barWidth/2, y-4, axisColor, template.HTMLEscapeString(f.tick(bar.Value)))
		f.label(&b, x+barWidth/2, bar.Label)
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// Line renders series as a line with an area fill and a dot per point.
func Line(width, height int, series []float64, labels []string, opts Opts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("chart: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("chart: labels length must match series")
	}
	f, err := newFrame(width, height, series, opts.Tick)
	if err != nil {
		return "", err
	}
	color := fallback(opts.Color, "#16a34a")
	x := func(i int) float64 {
		if len(series) == 1 {
			return f.padding + f.chartWidth/2
		}
		return f.padding + float64(i)*f.chartWidth/float64(len(series)-1)
	}

	var path strings.Builder
	for i, v := range series {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f ", cmd, x(i), f.y(v))
	}
	line := strings.TrimSpace(path.String())
	base := f.padding + f.chartHeight

	var b strings.Builder
	f.open(&b, opts, "line")
	fmt.Fprintf(&b, `<path d="%s L%.2f %.2f L%.2f %.2f Z" fill="%s" fill-opacity="0.12" stroke="none" aria-hidden="true"></path>`, line, x(len(series)-1), base, x(0), base, color)
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"></path>`, line, color)
	for i, v := range series {
		fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"><title>%s: %s</title></circle>`, x(i), f.y(v), color, template.HTMLEscapeString(labels[i]), template.HTMLEscapeString(f.tick(v)))
		f.label(&b, x(i), labels[i])
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// Compact formats axis values as 950, 1,2k or 3,4M.
func Compact(v float64) string {
	abs := math.Abs(v)
	var s string
	switch {
	case abs >= 1_000_000:
		s = fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		s = fmt.Sprintf("%.1fk", v/1_000)
	case math.Abs(v-math.Round(v)) < 1e-9:
		s = fmt.Sprintf("%.0f", v)
	default:
		s = fmt.Sprintf("%.1f", v)
	}
	return strings.Replace(s, ".", ",", 1)
}

// Euros is Compact with a euro sign.
func Euros(v float64) string {
	return Compact(v) + " €"
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}
