// Package poster turns poster images into ANSI block art for the terminal.
package poster

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/eliukblau/pixterm/pkg/ansimage"
)

const maxImageBytes = 5 << 20

// ErrNoPoster is returned for movies without a poster URL.
var ErrNoPoster = errors.New("no poster available")

// Renderer downloads posters and renders them at a given cell size.
type Renderer struct {
	client  *http.Client
	timeout time.Duration
	bg      color.Color
	log     *slog.Logger
}

// NewRenderer creates a renderer. A nil client uses a client bounded by
// timeout.
func NewRenderer(client *http.Client, timeout time.Duration, logger *slog.Logger) *Renderer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{
		client:  client,
		timeout: timeout,
		bg:      color.RGBA{0x17, 0x17, 0x17, 0xff},
		log:     logger.With("component", "poster"),
	}
}

// Render fetches url and renders it to fit cols x rows terminal cells.
func (r *Renderer) Render(ctx context.Context, url string, cols, rows int) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" || strings.EqualFold(url, "N/A") {
		return "", ErrNoPoster
	}
	if cols < 1 || rows < 1 {
		return "", fmt.Errorf("invalid poster size %dx%d", cols, rows)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch poster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch poster: status code %d", resp.StatusCode)
	}

	// Each cell holds two vertical pixels.
	img, err := ansimage.NewScaledFromReader(io.LimitReader(resp.Body, maxImageBytes), rows*2, cols, r.bg, ansimage.ScaleModeFit, ansimage.NoDithering)
	if err != nil {
		return "", fmt.Errorf("decode poster: %w", err)
	}

	r.log.Debug("poster rendered", "url", url, "cols", cols, "rows", rows)
	return img.Render(), nil
}
