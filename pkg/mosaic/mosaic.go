package mosaic

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"emojiscraper/pkg/logger"
	"emojiscraper/pkg/models"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// DefaultSuffix is appended to the source file stem to name outputs.
const DefaultSuffix = "_mosaic_{we}_{r}_{hw}_{sw}_{vw}"

// Options controls the matching.
type Options struct {
	// WidthEmojis is the mosaic width in tiles.
	WidthEmojis int
	// Resize is the edge every tile is reduced to before comparing.
	Resize int

	HueWeight        float64
	SaturationWeight float64
	ValueWeight      float64
}

// DefaultOptions weighs the three channels equally.
func DefaultOptions(widthEmojis, resize int) Options {
	return Options{
		WidthEmojis:      widthEmojis,
		Resize:           resize,
		HueWeight:        1,
		SaturationWeight: 1,
		ValueWeight:      1,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	var errs []error
	if o.WidthEmojis <= 0 {
		errs = append(errs, errors.New("width in emojis must be positive"))
	}
	if o.Resize <= 0 {
		errs = append(errs, errors.New("resize must be positive"))
	}
	if o.HueWeight < 0 || o.SaturationWeight < 0 || o.ValueWeight < 0 {
		errs = append(errs, errors.New("channel weights cannot be negative"))
	}
	return errors.Join(errs...)
}

// Suffix fills the {we}, {r}, {hw}, {sw} and {vw} placeholders of template.
func (o Options) Suffix(template string) string {
	return strings.NewReplacer(
		"{we}", strconv.Itoa(o.WidthEmojis),
		"{r}", strconv.Itoa(o.Resize),
		"{hw}", formatWeight(o.HueWeight),
		"{sw}", formatWeight(o.SaturationWeight),
		"{vw}", formatWeight(o.ValueWeight),
	).Replace(template)
}

// formatWeight prints whole weights with one decimal, so 1 becomes "1.0".
func formatWeight(w float64) string {
	if w == math.Trunc(w) {
		return strconv.FormatFloat(w, 'f', 1, 64)
	}
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// ImageStore locates downloaded emoji images.
type ImageStore interface {
	IsDownloaded(id string) bool
	PathFor(id string) string
}

type tile struct {
	emoji models.EmojiRecord
	hsv   []uint8
}

// Builder matches pictures against a fixed set of emoji tiles.
type Builder struct {
	opts   Options
	tiles  []tile
	images ImageStore
	logger logger.Logger
}

// NewBuilder loads and reduces the image of every emoji. All images must
// have been downloaded.
func NewBuilder(emojis []models.EmojiRecord, images ImageStore, opts Options, log logger.Logger) (*Builder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(emojis) == 0 {
		return nil, errors.New("no emojis selected")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	b := &Builder{opts: opts, images: images, logger: log, tiles: make([]tile, 0, len(emojis))}
	for _, e := range emojis {
		img, err := b.open(e)
		if err != nil {
			return nil, err
		}
		b.tiles = append(b.tiles, tile{emoji: e, hsv: hsvPixels(img, opts.Resize)})
	}

	log.WithFields(map[string]interface{}{
		"tiles":  len(b.tiles),
		"resize": opts.Resize,
	}).Debug("Mosaic tiles loaded")
	return b, nil
}

func (b *Builder) open(e models.EmojiRecord) (image.Image, error) {
	if !b.images.IsDownloaded(e.ID) {
		return nil, fmt.Errorf("no image for emoji :%s: (%s), run download first", e.Name, e.ID)
	}
	img, err := LoadImage(b.images.PathFor(e.ID))
	if err != nil {
		return nil, fmt.Errorf("emoji :%s: (%s): %w", e.Name, e.ID, err)
	}
	return img, nil
}

// LoadImage decodes a png, jpeg, gif or webp file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// Mosaic is the grid of emojis chosen for a source, top row first.
type Mosaic struct {
	Rows [][]models.EmojiRecord
}

// Columns returns the width of the grid in tiles.
func (m *Mosaic) Columns() int {
	if len(m.Rows) == 0 {
		return 0
	}
	return len(m.Rows[0])
}

// Text renders the grid as chat text, one row per line.
func (m *Mosaic) Text() string {
	var sb strings.Builder
	for _, row := range m.Rows {
		for i, e := range row {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(":" + e.Name + ":")
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Match picks the closest emoji for every cell of src. The grid is
// WidthEmojis wide and as tall as the source's aspect ratio allows, rounded
// down. Transparent parts of src count as black.
func (b *Builder) Match(ctx context.Context, src image.Image) (*Mosaic, error) {
	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, errors.New("source image is empty")
	}

	cols := b.opts.WidthEmojis
	rows := int(math.Floor(float64(bounds.Dy()) / float64(bounds.Dx()) * float64(cols)))
	if rows < 1 {
		return nil, fmt.Errorf("source image %dx%d is too wide for %d emojis", bounds.Dx(), bounds.Dy(), cols)
	}

	size := b.opts.Resize
	scaled := scaleOverBlack(src, cols*size, rows*size)
	weights := [3]float64{b.opts.HueWeight, b.opts.SaturationWeight, b.opts.ValueWeight}

	out := make([][]models.EmojiRecord, rows)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for r := 0; r < rows; r++ {
		g.Go(func() error {
			row := make([]models.EmojiRecord, cols)
			for c := 0; c < cols; c++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				cell := scaled.SubImage(image.Rect(c*size, r*size, (c+1)*size, (r+1)*size)).(*image.RGBA)
				row[c] = b.tiles[closest(b.tiles, toHSV(cell), weights)].emoji
			}
			out[r] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.logger.WithFields(map[string]interface{}{
		"columns": cols,
		"rows":    rows,
	}).Debug("Mosaic matched")
	return &Mosaic{Rows: out}, nil
}

// closest returns the index of the tile with the smallest weighted distance
// to cell. Ties go to the earlier tile.
func closest(tiles []tile, cell []uint8, weights [3]float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, t := range tiles {
		var sums [3]int
		for p, v := range cell {
			d := int(v) - int(t.hsv[p])
			if d < 0 {
				d = -d
			}
			sums[p%3] += d
		}
		dist := weights[0]*float64(sums[0]) + weights[1]*float64(sums[1]) + weights[2]*float64(sums[2])
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// Composite draws the grid with the full-size emoji images, each in a
// tileSize square, then scales the result to width pixels keeping its aspect
// ratio. A width of zero keeps the natural size.
func (b *Builder) Composite(m *Mosaic, tileSize, width int) (*image.RGBA, error) {
	cols := m.Columns()
	if cols == 0 {
		return nil, errors.New("empty mosaic")
	}
	if tileSize <= 0 {
		return nil, errors.New("tile size must be positive")
	}

	canvas := image.NewRGBA(image.Rect(0, 0, cols*tileSize, len(m.Rows)*tileSize))
	cache := make(map[string]image.Image)
	for r, row := range m.Rows {
		for c, e := range row {
			img, ok := cache[e.ID]
			if !ok {
				var err error
				if img, err = b.open(e); err != nil {
					return nil, err
				}
				cache[e.ID] = img
			}
			cell := image.Rect(c*tileSize, r*tileSize, (c+1)*tileSize, (r+1)*tileSize)
			if img.Bounds().Dx() == tileSize && img.Bounds().Dy() == tileSize {
				draw.Draw(canvas, cell, img, img.Bounds().Min, draw.Src)
			} else {
				draw.CatmullRom.Scale(canvas, cell, img, img.Bounds(), draw.Src, nil)
			}
		}
	}

	if width <= 0 || width == canvas.Bounds().Dx() {
		return canvas, nil
	}
	cb := canvas.Bounds()
	height := max(1, int(math.Round(float64(cb.Dy())/float64(cb.Dx())*float64(width))))
	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(resized, resized.Bounds(), canvas, cb, draw.Src, nil)
	return resized, nil
}
