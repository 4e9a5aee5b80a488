// Package browser renders local HTML pages in headless Chrome.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/logger"
)

// Previewer takes full-page screenshots of local HTML files
type Previewer struct {
	Width   int64
	Height  int64
	Settle  time.Duration // wait for tiles and clusters after load
	Timeout time.Duration
	Visible bool // show the browser window
}

// NewPreviewer creates a previewer with a 1600x1000 viewport
func NewPreviewer() *Previewer {
	return &Previewer{
		Width:   1600,
		Height:  1000,
		Settle:  3 * time.Second,
		Timeout: 60 * time.Second,
	}
}

// Screenshot loads htmlPath and writes a PNG screenshot to outPath
func (p *Previewer) Screenshot(ctx context.Context, htmlPath, outPath string) error {
	pageURL, err := fileURL(htmlPath)
	if err != nil {
		return err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !p.Visible),
		chromedp.WindowSize(int(p.Width), int(p.Height)),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, p.Timeout)
	defer cancel()

	var (
		buf     []byte
		markers int
	)
	if err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(p.Width, p.Height),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady(`#map .leaflet-map-pane`, chromedp.ByQuery),
		chromedp.Sleep(p.Settle),
		chromedp.Evaluate(`document.querySelectorAll('.leaflet-marker-icon').length`, &markers),
		chromedp.FullScreenshot(&buf, 100),
	); err != nil {
		return fmt.Errorf("capturing %s: %w", htmlPath, err)
	}
	logger.Debugf(ctx, "preview shows %d markers and clusters", markers)

	if err := os.WriteFile(outPath, buf, 0644); err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}
	return nil
}

// PreviewPath returns the screenshot path next to an HTML file
func PreviewPath(htmlPath string) string {
	ext := filepath.Ext(htmlPath)
	return htmlPath[:len(htmlPath)-len(ext)] + ".png"
}

func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("page not found: %w", err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
