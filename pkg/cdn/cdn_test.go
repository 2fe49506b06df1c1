package cdn

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	errs "emojiscraper/pkg/errors"
	"emojiscraper/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red         = color.RGBA{R: 255, A: 255}
	transparent = color.RGBA{}
	bg          = color.RGBA{R: 49, G: 51, B: 56, A: 255}
)

func encodeSquare(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestComposeCentersImage(t *testing.T) {
	r := NewRenderer(4, bg)

	img, err := r.Compose(encodeSquare(t, 2, 2, red))
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
	assert.Equal(t, bg, img.RGBAAt(0, 0))
	assert.Equal(t, red, img.RGBAAt(1, 1))
	assert.Equal(t, red, img.RGBAAt(2, 2))
	assert.Equal(t, bg, img.RGBAAt(3, 3))
}

func TestComposeTransparentShowsBackground(t *testing.T) {
	r := NewRenderer(2, bg)

	img, err := r.Compose(encodeSquare(t, 2, 2, transparent))
	require.NoError(t, err)
	assert.Equal(t, bg, img.RGBAAt(1, 1))
}

func TestComposeScalesDownLargeImages(t *testing.T) {
	r := NewRenderer(4, bg)

	img, err := r.Compose(encodeSquare(t, 8, 4, red))
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
	// 8x4 becomes 4x2, placed on rows 1 and 2
	assert.Equal(t, bg, img.RGBAAt(0, 0))
	assert.Equal(t, bg, img.RGBAAt(3, 3))
	for _, p := range []image.Point{{0, 1}, {3, 2}} {
		c := img.RGBAAt(p.X, p.Y)
		assert.Greater(t, c.R, uint8(240), "pixel %v", p)
		assert.Less(t, c.G, uint8(15), "pixel %v", p)
	}
}

func TestComposeRejectsGarbage(t *testing.T) {
	_, err := NewRenderer(4, bg).Compose([]byte("not an image"))
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeParsing, errs.TypeOf(err))
}

func TestRenderProducesPNG(t *testing.T) {
	out, err := NewRenderer(0, nil).Render(encodeSquare(t, 10, 10, red))
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
}

func TestFetch(t *testing.T) {
	payload := encodeSquare(t, 1, 1, red)
	var gotPath, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	c := NewClient(server.URL+"/emojis/{id}.webp", time.Second, logger.NewTestLogger())
	data, err := c.Fetch(context.Background(), "123")

	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "/emojis/123.webp", gotPath)
	assert.True(t, strings.HasPrefix(gotAccept, "image/webp"))
}

func TestFetchStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   errs.ErrorType
	}{
		{http.StatusNotFound, errs.ErrorTypeNotFound},
		{http.StatusTooManyRequests, errs.ErrorTypeRateLimit},
		{http.StatusServiceUnavailable, errs.ErrorTypeServerError},
		{http.StatusForbidden, errs.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			c := NewClient(server.URL+"/{id}", time.Second, logger.NewTestLogger())
			_, err := c.Fetch(context.Background(), "1")

			require.Error(t, err)
			assert.Equal(t, tt.want, errs.TypeOf(err))

			var typed *errs.Error
			require.ErrorAs(t, err, &typed)
			assert.Equal(t, tt.status, typed.Code)
		})
	}
}

func TestFetchNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url+"/{id}", time.Second, logger.NewTestLogger())
	_, err := c.Fetch(context.Background(), "1")
	assert.Equal(t, errs.ErrorTypeNetwork, errs.TypeOf(err))
}

func TestURLFor(t *testing.T) {
	c := NewClient("", time.Second, logger.NewNopLogger())
	assert.Equal(t, "https://cdn.discordapp.com/emojis/42.webp?size=96&quality=lossless", c.URLFor("42"))
}

func TestFetchRejectsInvalidID(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/emojis/{id}.webp", time.Second, logger.NewNopLogger())
	_, err := c.Fetch(context.Background(), "../admin")
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeParsing, errs.TypeOf(err))
	assert.Zero(t, hits)

	assert.Equal(t, srv.URL+"/emojis/a%2Fb.webp", c.URLFor("a/b"))
}

func TestFetchSendsConfiguredHeaders(t *testing.T) {
	var gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
	}))
	defer server.Close()

	c := NewClient(server.URL+"/{id}", time.Second, logger.NewTestLogger())
	c.SetHeader("Referer", "https://discord.com/")
	_, err := c.Fetch(context.Background(), "1")

	require.NoError(t, err)
	assert.Equal(t, "https://discord.com/", gotReferer)
}
