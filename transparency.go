package main

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/ettle/strcase"
	"github.com/rs/zerolog"
)

type Mode string

const (
	ModeHardEdge Mode = "hard-edge"
	ModeGradient Mode = "gradient"
)

// ParseMode accepts a mode name in any case style, so "HardEdge", "hard_edge"
// and "hard-edge" all name the same mode.
func ParseMode(name string) (Mode, error) {
	switch mode := Mode(strcase.ToKebab(name)); mode {
	case ModeHardEdge, ModeGradient:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

// Transformer rewrites the alpha channel of an image in place.
type Transformer interface {
	fmt.Stringer
	Apply(img *image.NRGBA) Report
	Validate() error
}

// Report is the per-run statistics of a Transformer.
type Report interface {
	io.WriterTo
	zerolog.LogObjectMarshaler
}

// Bounds of the gradient ramp. The ramp maps a channel value in
// [rampLow,rampHigh] onto an alpha in [rampAlphaLow,255] and is independent of
// the luminance thresholds, which only decide the fully transparent and fully
// opaque cases.
const (
	rampLow      = 20.0
	rampHigh     = 100.0
	rampAlphaLow = 51.0

	maxBrightness = 765
	maxLuminance  = 255.0
	maxChroma     = 255
)

type HardEdgeParams struct {
	Threshold int
}

func (p HardEdgeParams) String() string {
	return fmt.Sprintf("%s threshold=%d", ModeHardEdge, p.Threshold)
}

func (p HardEdgeParams) Validate() error {
	if p.Threshold < 0 || p.Threshold > maxBrightness {
		return fmt.Errorf("%w: threshold %d not in [0,%d]", ErrThresholdOutOfRange, p.Threshold, maxBrightness)
	}
	return nil
}

func (p HardEdgeParams) Apply(img *image.NRGBA) Report {
	return HardEdge(img, p)
}

type HardEdgeStats struct {
	Params      HardEdgeParams
	Total       int
	Transparent int
}

// HardEdge makes every pixel whose channel sum is below the threshold fully
// transparent. Other pixels keep their alpha.
func HardEdge(img *image.NRGBA, p HardEdgeParams) HardEdgeStats {
	stats := HardEdgeStats{Params: p}
	eachPixel(img, func(c color.NRGBA) uint8 {
		stats.Total++
		if brightness(c) < p.Threshold {
			stats.Transparent++
			return 0
		}
		return c.A
	})
	return stats
}

func (s HardEdgeStats) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "  Processed pixels: %d/%d\n  Black threshold: %d\n",
		s.Transparent, s.Total, s.Params.Threshold)
	return int64(n), err
}

func (s HardEdgeStats) MarshalZerologObject(e *zerolog.Event) {
	e.Str("mode", string(ModeHardEdge)).
		Int("threshold", s.Params.Threshold).
		Int("total", s.Total).
		Int("transparent", s.Transparent)
}

type GradientParams struct {
	MinThreshold   float64
	MaxThreshold   float64
	ColorThreshold int
}

func (p GradientParams) String() string {
	return fmt.Sprintf("%s min=%g max=%g color=%d", ModeGradient, p.MinThreshold, p.MaxThreshold, p.ColorThreshold)
}

func (p GradientParams) Validate() error {
	for _, v := range []float64{p.MinThreshold, p.MaxThreshold} {
		if !(v >= 0 && v <= maxLuminance) {
			return fmt.Errorf("%w: luminance threshold %g not in [0,%g]", ErrThresholdOutOfRange, v, maxLuminance)
		}
	}
	if p.ColorThreshold < 0 || p.ColorThreshold > maxChroma {
		return fmt.Errorf("%w: color threshold %d not in [0,%d]", ErrThresholdOutOfRange, p.ColorThreshold, maxChroma)
	}
	if p.MinThreshold >= p.MaxThreshold {
		return fmt.Errorf("%w: min %g, max %g", ErrInvalidThresholds, p.MinThreshold, p.MaxThreshold)
	}
	return nil
}

func (p GradientParams) Apply(img *image.NRGBA) Report {
	return Gradient(img, p)
}

// GradientStats counts pixels per rule. Colored and Gray pixels got their
// alpha from the ramp.
type GradientStats struct {
	Params      GradientParams
	Total       int
	Transparent int
	Opaque      int
	Colored     int
	Gray        int
}

// Gradient assigns every pixel an alpha derived from its luminance and chroma:
//
//   - dark and gray pixels become fully transparent
//   - bright pixels become fully opaque
//   - colored pixels in between ramp on their strongest channel
//   - gray pixels in between ramp on their luminance
//
// Saturated dark colors such as a deep blue stay partially visible while true
// black is erased.
func Gradient(img *image.NRGBA, p GradientParams) GradientStats {
	stats := GradientStats{Params: p}
	eachPixel(img, func(c color.NRGBA) uint8 {
		stats.Total++
		y := luminance(c)
		diff := chroma(c)
		switch {
		case y < p.MinThreshold && diff < p.ColorThreshold:
			stats.Transparent++
			return 0
		case y > p.MaxThreshold:
			stats.Opaque++
			return 255
		case diff > p.ColorThreshold:
			stats.Colored++
			return ramp(float64(maxChannel(c)))
		default:
			stats.Gray++
			return ramp(y)
		}
	})
	return stats
}

func ramp(v float64) uint8 {
	switch {
	case v < rampLow:
		return 0
	case v > rampHigh:
		return 255
	}
	ratio := (v - rampLow) / (rampHigh - rampLow)
	return uint8(rampAlphaLow + ratio*(255-rampAlphaLow))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func (s GradientStats) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"  Transparent: %d (%.1f%%)\n"+
			"  Semi-transparent (colored): %d (%.1f%%)\n"+
			"  Semi-transparent (gray): %d (%.1f%%)\n"+
			"  Opaque: %d (%.1f%%)\n"+
			"  Luminance range: %g (transparent) ~ %g (opaque)\n"+
			"  Color threshold: %d\n",
		s.Transparent, percent(s.Transparent, s.Total),
		s.Colored, percent(s.Colored, s.Total),
		s.Gray, percent(s.Gray, s.Total),
		s.Opaque, percent(s.Opaque, s.Total),
		s.Params.MinThreshold, s.Params.MaxThreshold,
		s.Params.ColorThreshold,
	)
	return int64(n), err
}

func (s GradientStats) MarshalZerologObject(e *zerolog.Event) {
	e.Str("mode", string(ModeGradient)).
		Float64("min_threshold", s.Params.MinThreshold).
		Float64("max_threshold", s.Params.MaxThreshold).
		Int("color_threshold", s.Params.ColorThreshold).
		Int("total", s.Total).
		Int("transparent", s.Transparent).
		Int("colored", s.Colored).
		Int("gray", s.Gray).
		Int("opaque", s.Opaque)
}
