package mosaic

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// hsvPixels scales src to size×size over black and returns its pixels as
// interleaved H, S, V bytes in row-major order.
func hsvPixels(src image.Image, size int) []uint8 {
	return toHSV(scaleOverBlack(src, size, size))
}

func scaleOverBlack(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func toHSV(img *image.RGBA) []uint8 {
	b := img.Bounds()
	out := make([]uint8, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			h, s, v := rgbToHSV(c.R, c.G, c.B)
			out = append(out, h, s, v)
		}
	}
	return out
}

// rgbToHSV maps 8-bit RGB to 8-bit HSV with hue scaled to 0..255.
func rgbToHSV(r, g, b uint8) (uint8, uint8, uint8) {
	maxc := max(r, g, b)
	minc := min(r, g, b)
	if maxc == minc {
		return 0, 0, maxc
	}

	cr := float64(maxc - minc)
	s := cr / float64(maxc)
	rc := float64(maxc-r) / cr
	gc := float64(maxc-g) / cr
	bc := float64(maxc-b) / cr

	var h float64
	switch maxc {
	case r:
		h = bc - gc
	case g:
		h = 2 + rc - bc
	default:
		h = 4 + gc - rc
	}
	h = math.Mod(h/6, 1)
	if h < 0 {
		h++
	}
	return clip8(h * 255), clip8(s * 255), maxc
}

func clip8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
