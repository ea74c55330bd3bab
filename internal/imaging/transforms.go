package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	dimaging "github.com/disintegration/imaging"
)

type Filter string

const (
	FilterGrayscale Filter = "grayscale"
	FilterBlur      Filter = "blur"
	FilterSharpen   Filter = "sharpen"
	FilterNegative  Filter = "negative"
)

// Filters is the order filters are offered in.
var Filters = []Filter{FilterGrayscale, FilterBlur, FilterSharpen, FilterNegative}

// Label is the text logged for the filter.
func (f Filter) Label() string {
	switch f {
	case FilterGrayscale:
		return "Grayscale"
	case FilterBlur:
		return "Blur"
	case FilterSharpen:
		return "Sharpen"
	case FilterNegative:
		return "Negative"
	default:
		return string(f)
	}
}

func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FilterGrayscale, FilterBlur, FilterSharpen, FilterNegative:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter: %q", s)
}

type Adjustment string

const (
	AdjustBrightness Adjustment = "brightness"
	AdjustContrast   Adjustment = "contrast"
	AdjustSaturation Adjustment = "saturation"
)

var Adjustments = []Adjustment{AdjustBrightness, AdjustContrast, AdjustSaturation}

// Slider range for adjustments. NeutralValue leaves the image unchanged;
// the enhancement factor is value/100.
const (
	MinValue     = 0
	MaxValue     = 200
	NeutralValue = 100
)

func (a Adjustment) Label() string {
	switch a {
	case AdjustBrightness:
		return "Brightness"
	case AdjustContrast:
		return "Contrast"
	case AdjustSaturation:
		return "Saturation"
	default:
		return string(a)
	}
}

func ParseAdjustment(s string) (Adjustment, error) {
	a := Adjustment(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case AdjustBrightness, AdjustContrast, AdjustSaturation:
		return a, nil
	}
	return "", fmt.Errorf("unknown adjustment: %q", s)
}

// ClampValue limits v to the slider range.
func ClampValue(v int) int {
	if v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}

func (p *Processor) Apply(s Snapshot, f Filter) (Snapshot, error) {
	if !s.Valid() {
		return Snapshot{}, fmt.Errorf("apply %s: no image", f)
	}
	switch f {
	case FilterGrayscale:
		return s.derive(dimaging.Grayscale(s.Image)), nil
	case FilterBlur:
		return s.derive(dimaging.Blur(s.Image, p.BlurSigma)), nil
	case FilterSharpen:
		return s.derive(dimaging.Sharpen(s.Image, p.SharpenSigma)), nil
	case FilterNegative:
		return s.derive(dimaging.Invert(s.Image)), nil
	}
	return Snapshot{}, fmt.Errorf("unknown filter: %q", f)
}

// Adjust applies an enhancement with factor value/100. Each adjustment
// blends the image with a degenerate version of itself: black for
// brightness, the mean grey level for contrast and the pixel's own grey for
// saturation. Factor 1 leaves the image unchanged, 0 yields the degenerate
// image and values above 1 extrapolate away from it. Alpha is kept.
func (p *Processor) Adjust(s Snapshot, a Adjustment, value int) (Snapshot, error) {
	if !s.Valid() {
		return Snapshot{}, fmt.Errorf("adjust %s: no image", a)
	}
	f := float64(ClampValue(value)) / NeutralValue
	switch a {
	case AdjustBrightness:
		return s.derive(dimaging.AdjustFunc(s.Image, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{R: blend(0, c.R, f), G: blend(0, c.G, f), B: blend(0, c.B, f), A: c.A}
		})), nil
	case AdjustContrast:
		mean := meanLuma(s.Image)
		return s.derive(dimaging.AdjustFunc(s.Image, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{R: blend(mean, c.R, f), G: blend(mean, c.G, f), B: blend(mean, c.B, f), A: c.A}
		})), nil
	case AdjustSaturation:
		return s.derive(dimaging.AdjustFunc(s.Image, func(c color.NRGBA) color.NRGBA {
			g := math.Round(luma(c))
			return color.NRGBA{R: blend(g, c.R, f), G: blend(g, c.G, f), B: blend(g, c.B, f), A: c.A}
		})), nil
	}
	return Snapshot{}, fmt.Errorf("unknown adjustment: %q", a)
}

// luma is the ITU-R 601-2 grey level of c.
func luma(c color.NRGBA) float64 {
	return (299*float64(c.R) + 587*float64(c.G) + 114*float64(c.B)) / 1000
}

// meanLuma is the image's average grey level, rounded to an integer.
func meanLuma(img image.Image) float64 {
	src := dimaging.Clone(img)
	n := len(src.Pix) / 4
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < len(src.Pix); i += 4 {
		sum += luma(color.NRGBA{R: src.Pix[i], G: src.Pix[i+1], B: src.Pix[i+2]})
	}
	return math.Floor(sum/float64(n) + 0.5)
}

// blend computes base + f*(v-base), clamped to a channel value.
func blend(base float64, v uint8, f float64) uint8 {
	out := math.Round(base + f*(float64(v)-base))
	switch {
	case out < 0:
		return 0
	case out > 255:
		return 255
	}
	return uint8(out)
}
