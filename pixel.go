package main

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Channel weights of the perceptual luminance.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// luminance returns the perceptual brightness of c in [0,255]
func luminance(c color.NRGBA) float64 {
	return lumaR*float64(c.R) + lumaG*float64(c.G) + lumaB*float64(c.B)
}

// brightness is the plain channel sum used by the hard-edge mode, in [0,765]
func brightness(c color.NRGBA) int {
	return int(c.R) + int(c.G) + int(c.B)
}

func maxChannel(c color.NRGBA) uint8 {
	m := c.R
	if c.G > m {
		m = c.G
	}
	if c.B > m {
		m = c.B
	}
	return m
}

func minChannel(c color.NRGBA) uint8 {
	m := c.R
	if c.G < m {
		m = c.G
	}
	if c.B < m {
		m = c.B
	}
	return m
}

// chroma is the color difference of c: how far it is from a gray.
func chroma(c color.NRGBA) int {
	return int(maxChannel(c)) - int(minChannel(c))
}

// ToNRGBA returns img as a non-premultiplied RGBA buffer with the same bounds.
// An *image.NRGBA is returned as is, anything else is converted into a new
// buffer.
func ToNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}

	bounds := img.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
	return dst
}

// eachPixel calls fn for every pixel of img, row by row. fn returns the new
// alpha for the pixel; the color channels are never written.
func eachPixel(img *image.NRGBA, fn func(c color.NRGBA) uint8) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		off := img.PixOffset(bounds.Min.X, y)
		row := img.Pix[off : off+bounds.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			c := color.NRGBA{R: row[i], G: row[i+1], B: row[i+2], A: row[i+3]}
			row[i+3] = fn(c)
		}
	}
}
