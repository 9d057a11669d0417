// Package charts computes the numbers behind the explorer's side panel:
// node color scales and their legend, the time slider histogram, actor
// year spans, the rating-over-time series and the radar chart.
package charts

import (
	"fmt"
	"math"
	"strconv"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/internal/util"
)

// ColorData selects which actor measure drives node color
type ColorData string

const (
	RevenueTotal   ColorData = "revenueTotal"
	RevenueAverage ColorData = "revenueAverage"
	VoteAverage    ColorData = "voteAverage"
	NoColor        ColorData = "none"
)

// ColorScheme names a sequential color ramp
type ColorScheme string

const (
	Viridis ColorScheme = "viridis"
	Magma   ColorScheme = "magma"
	Plasma  ColorScheme = "plasma"
	Heatmap ColorScheme = "heatmap"
)

// Domains of the measures. Values outside are clamped.
const (
	TotalRevenueMin   = 0
	TotalRevenueMax   = 7_000_000_000
	AverageRevenueMin = 0
	AverageRevenueMax = 200_000_000
	VoteMin           = 5
	VoteMax           = 10
)

// FlatColor is used for every node when ColorData is none
const FlatColor = "lime"

// LegendSteps is the number of legend swatches over a domain starting at 0
const LegendSteps = 100

// Anchor colors sampled evenly along d3's interpolators
var schemeAnchors = map[ColorScheme][]string{
	Viridis: {"#440154", "#472d7b", "#3b528b", "#2c728e", "#21918c", "#28ae80", "#5ec962", "#addc30", "#fde725"},
	Magma:   {"#000004", "#1c1044", "#4f127b", "#812581", "#b5367a", "#e55064", "#fb8761", "#fec287", "#fcfdbf"},
	Plasma:  {"#0d0887", "#4c02a1", "#7e03a8", "#a92395", "#cc4778", "#e56b5d", "#f89540", "#fdc527", "#f0f921"},
	Heatmap: {"#ffffcc", "#ffeda0", "#fed976", "#feb24c", "#fd8d3c", "#fc4e2a", "#e31a1c", "#bd0026", "#800026"},
}

// ParseColorData validates a color data name
func ParseColorData(s string) (ColorData, error) {
	switch d := ColorData(s); d {
	case RevenueTotal, RevenueAverage, VoteAverage, NoColor:
		return d, nil
	}
	return "", errors.NewInvalidRequestError("unknown color data %q", s)
}

// ParseColorScheme validates a color scheme name
func ParseColorScheme(s string) (ColorScheme, error) {
	if _, ok := schemeAnchors[ColorScheme(s)]; ok {
		return ColorScheme(s), nil
	}
	return "", errors.NewInvalidRequestError("unknown color scheme %q", s)
}

// ColorScale maps one actor measure onto a color ramp
type ColorScale struct {
	Data   ColorData   `json:"color_data"`
	Scheme ColorScheme `json:"color_scheme"`
}

// DefaultColorScale colors by total revenue on viridis
func DefaultColorScale() ColorScale {
	return ColorScale{Data: RevenueTotal, Scheme: Viridis}
}

// Domain returns the [min, max] of the measure. none uses 0-1000.
func (s ColorScale) Domain() (float64, float64) {
	switch s.Data {
	case RevenueTotal:
		return TotalRevenueMin, TotalRevenueMax
	case RevenueAverage:
		return AverageRevenueMin, AverageRevenueMax
	case VoteAverage:
		return VoteMin, VoteMax
	}
	return 0, 1000
}

// Color returns the hex color of v
func (s ColorScale) Color(v float64) string {
	if s.Data == NoColor {
		return FlatColor
	}
	lo, hi := s.Domain()
	return interpolate(s.anchors(), util.Normalize(v, lo, hi))
}

// NodeColor picks the measure matching Data from an actor's derived values
func (s ColorScale) NodeColor(revenueTotal, revenueAverage, voteAverage float64) string {
	switch s.Data {
	case RevenueTotal:
		return s.Color(revenueTotal)
	case RevenueAverage:
		return s.Color(revenueAverage)
	case VoteAverage:
		return s.Color(voteAverage)
	}
	return FlatColor
}

func (s ColorScale) anchors() []string {
	if a, ok := schemeAnchors[s.Scheme]; ok {
		return a
	}
	return schemeAnchors[Viridis]
}

// LegendStep is one swatch of the color legend. Label is empty for
// unlabelled swatches.
type LegendStep struct {
	Value float64 `json:"value"`
	Color string  `json:"color"`
	Label string  `json:"label,omitempty"`
}

// Legend returns the swatches from the domain minimum in steps of max/100.
// Revenue legends label steps 0, 50 and 99 in millions; the vote legend
// labels every tenth step and closes with "10".
func (s ColorScale) Legend() []LegendStep {
	lo, hi := s.Domain()
	step := hi / LegendSteps
	n := int(math.Ceil((hi-lo)/step - 1e-9))

	steps := make([]LegendStep, 0, n)
	for i := 0; i < n; i++ {
		v := lo + float64(i)*step
		steps = append(steps, LegendStep{Value: v, Color: s.Color(v), Label: s.legendLabel(i, v)})
	}
	return steps
}

func (s ColorScale) legendLabel(i int, v float64) string {
	switch s.Data {
	case RevenueTotal, RevenueAverage:
		if i == 0 || i == 50 || i == 99 {
			return strconv.FormatFloat(math.Round(v/1e6), 'f', -1, 64) + "M"
		}
	case VoteAverage:
		if i%10 == 0 {
			return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
		}
		if i == 49 {
			return "10"
		}
	}
	return ""
}

func interpolate(anchors []string, t float64) string {
	if len(anchors) == 1 {
		return anchors[0]
	}
	pos := t * float64(len(anchors)-1)
	i := int(math.Floor(pos))
	if i >= len(anchors)-1 {
		return anchors[len(anchors)-1]
	}
	frac := pos - float64(i)
	r0, g0, b0 := parseHex(anchors[i])
	r1, g1, b1 := parseHex(anchors[i+1])
	return fmt.Sprintf("#%02x%02x%02x",
		int(math.Round(util.Lerp(r0, r1, frac))),
		int(math.Round(util.Lerp(g0, g1, frac))),
		int(math.Round(util.Lerp(b0, b1, frac))),
	)
}

func parseHex(hex string) (r, g, b float64) {
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return float64(v >> 16 & 0xff), float64(v >> 8 & 0xff), float64(v & 0xff)
}
