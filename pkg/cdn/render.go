package cdn

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	errs "emojiscraper/pkg/errors"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultSize is the edge of the rendered tile in pixels.
const DefaultSize = 96

// DefaultBackground is the dark theme chat background, #313338.
var DefaultBackground = color.RGBA{R: 49, G: 51, B: 56, A: 0xff}

// Renderer turns downloaded images into opaque square PNG tiles.
type Renderer struct {
	Size       int
	Background color.Color
}

// NewRenderer returns a renderer for size×size tiles over background.
func NewRenderer(size int, background color.Color) *Renderer {
	if size <= 0 {
		size = DefaultSize
	}
	if background == nil {
		background = DefaultBackground
	}
	return &Renderer{Size: size, Background: background}
}

// Compose decodes raw (webp, png, gif or jpeg) and draws it centered on the
// background. Images larger than the tile are scaled down keeping their
// aspect ratio.
func (r *Renderer) Compose(raw []byte) (*image.RGBA, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to decode image: %v", err),
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, r.Size, r.Size))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(r.Background), image.Point{}, draw.Src)

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > r.Size || h > r.Size {
		if w >= h {
			w, h = r.Size, max(1, h*r.Size/b.Dx())
		} else {
			w, h = max(1, w*r.Size/b.Dy()), r.Size
		}
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, b, draw.Src, nil)
		src, b = scaled, scaled.Bounds()
	}

	offset := image.Pt((r.Size-w)/2, (r.Size-h)/2)
	draw.Draw(canvas, image.Rectangle{Min: offset, Max: offset.Add(image.Pt(w, h))}, src, b.Min, draw.Over)
	return canvas, nil
}

// Render composes raw and encodes the tile as PNG.
func (r *Renderer) Render(raw []byte) ([]byte, error) {
	img, err := r.Compose(raw)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
