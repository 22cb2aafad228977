// Package pdf turns rendered HTML into PDF using one of supported engines.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"karm/config"
	"karm/css"
)

// ErrNoExecutable is returned when no Chrome family browser could be found.
var ErrNoExecutable = errors.New("could not find a Chrome/Chromium executable, set pdf.chrome_path in configuration or CHROME_PATH")

const (
	chromeEnv     = "CHROME_PATH"
	weasyprintEnv = "WEASYPRINT_PATH"
	weasyprintBin = "weasyprint"
)

var chromeCandidates = []string{
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"C:/Program Files/Google/Chrome/Application/chrome.exe",
	"C:/Program Files (x86)/Google/Chrome/Application/chrome.exe",
	"/usr/bin/google-chrome",
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
}

// Driver runs configured engine.
type Driver struct {
	cfg *config.PDFConfig
	log *zap.Logger

	getenv     func(string) string
	candidates []string
}

func New(cfg *config.PDFConfig, log *zap.Logger) *Driver {
	return &Driver{
		cfg:        cfg,
		log:        log.Named("pdf"),
		getenv:     os.Getenv,
		candidates: chromeCandidates,
	}
}

func exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// ChromePath resolves browser executable: configured path first, then
// environment, then well known install locations.
func (d *Driver) ChromePath() (string, error) {
	list := append([]string{d.cfg.ChromePath, d.getenv(chromeEnv)}, d.candidates...)
	for _, p := range list {
		if p != "" && exists(p) {
			return p, nil
		}
	}
	return "", ErrNoExecutable
}

// WeasyprintPath resolves weasyprint executable, it is expected to be on the
// PATH when nothing else is specified.
func (d *Driver) WeasyprintPath() string {
	for _, p := range []string{d.cfg.WeasyprintPath, d.getenv(weasyprintEnv)} {
		if p != "" && exists(p) {
			return p
		}
	}
	return weasyprintBin
}

// ChromeArgs builds headless print command line.
func ChromeArgs(htmlPath, pdfPath string, dpi int) []string {
	return []string{
		"--headless=new",
		"--disable-gpu",
		"--allow-file-access-from-files",
		"--print-to-pdf-no-header",
		"--force-device-scale-factor=" + scaleFactor(dpi),
		"--print-to-pdf=" + pdfPath,
		css.FileURL(htmlPath),
	}
}

// WeasyprintArgs builds weasyprint command line.
func WeasyprintArgs(htmlPath, pdfPath string, dpi int) []string {
	return []string{"--presentational-hints", "--dpi", strconv.Itoa(dpi), htmlPath, pdfPath}
}

func scaleFactor(dpi int) string {
	return strconv.FormatFloat(float64(dpi)/96, 'f', -1, 64)
}

// Render produces pdfPath from htmlPath. Renderer failures are returned with
// captured renderer output.
func (d *Driver) Render(ctx context.Context, htmlPath, pdfPath string) error {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}
	dpi := d.cfg.ClampDPI()

	switch d.cfg.Engine {
	case config.EngineWeasyprint:
		return d.run(ctx, d.WeasyprintPath(), WeasyprintArgs(htmlPath, pdfPath, dpi))
	case config.EngineCdp:
		exe, err := d.ChromePath()
		if err != nil {
			return err
		}
		return d.print(ctx, exe, htmlPath, pdfPath, dpi)
	default:
		exe, err := d.ChromePath()
		if err != nil {
			return err
		}
		return d.run(ctx, exe, ChromeArgs(htmlPath, pdfPath, dpi))
	}
}

func (d *Driver) run(ctx context.Context, exe string, args []string) error {
	d.log.Debug("Running renderer", zap.String("exe", exe), zap.Strings("args", args))

	out, err := exec.CommandContext(ctx, exe, args...).CombinedOutput()
	if len(out) > 0 {
		d.log.Debug("Renderer output", zap.ByteString("output", out))
	}
	if err != nil {
		return fmt.Errorf("renderer %s failed: %w\n%s", exe, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// print drives browser over devtools protocol in process instead of relying
// on command line printing.
func (d *Driver) print(ctx context.Context, exe, htmlPath, pdfPath string, dpi int) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(exe),
		chromedp.DisableGPU,
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.Flag("force-device-scale-factor", scaleFactor(dpi)),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx, chromedp.WithLogf(d.log.Sugar().Debugf))
	defer cancelTask()

	d.log.Debug("Printing over devtools protocol", zap.String("exe", exe), zap.String("html", htmlPath))

	var data []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(css.FileURL(htmlPath)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			data = buf
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("devtools print of %s failed: %w", htmlPath, err)
	}
	if err := os.WriteFile(pdfPath, data, 0644); err != nil {
		return fmt.Errorf("unable to write pdf: %w", err)
	}
	return nil
}
