package poster

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func posterServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/poster.png" {
			http.NotFound(w, r)
			return
		}
		img := image.NewRGBA(image.Rect(0, 0, 20, 30))
		for y := 0; y < 30; y++ {
			for x := 0; x < 20; x++ {
				img.Set(x, y, color.RGBA{uint8(x * 10), uint8(y * 8), 0x80, 0xff})
			}
		}
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRender(t *testing.T) {
	srv := posterServer(t)
	r := NewRenderer(nil, time.Second, nil)

	art, err := r.Render(context.Background(), srv.URL+"/poster.png", 10, 8)
	require.NoError(t, err)
	assert.NotEmpty(t, art)
}

func TestRenderMissingPoster(t *testing.T) {
	r := NewRenderer(nil, time.Second, nil)

	_, err := r.Render(context.Background(), "N/A", 10, 8)
	assert.ErrorIs(t, err, ErrNoPoster)

	_, err = r.Render(context.Background(), "", 10, 8)
	assert.ErrorIs(t, err, ErrNoPoster)
}

func TestRenderHTTPError(t *testing.T) {
	srv := posterServer(t)
	r := NewRenderer(nil, time.Second, nil)

	_, err := r.Render(context.Background(), srv.URL+"/missing.png", 10, 8)
	assert.Error(t, err)
}

func TestRenderInvalidSize(t *testing.T) {
	r := NewRenderer(nil, time.Second, nil)
	_, err := r.Render(context.Background(), "http://example.com/p.png", 0, 8)
	assert.Error(t, err)
}
