// Package generate drives a whole rulings book run: fetching, building,
// ordering, rendering and printing.
package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"karm/cards"
	"karm/config"
	"karm/css"
	"karm/feed"
	"karm/icons"
	"karm/layout"
	"karm/pdf"
	"karm/render"
	"karm/state"
)

const noWarnings = "No warnings.\n"

// Result describes what has been produced.
type Result struct {
	Entries  int
	Pages    int
	Web      bool
	HTML     []string
	PDF      string
	Warnings []string
}

func Run(ctx context.Context, _ *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("generate")

	log.Info("Processing starting", zap.String("html", env.Cfg.Output.HTML), zap.Bool("dry-run", env.DryRun))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	res, err := Book(ctx, env)
	if err != nil {
		return err
	}
	unit := "pages"
	if res.Web {
		unit = "files"
	}
	log.Info(fmt.Sprintf("Generated %d entries across %d %s.", res.Entries, res.Pages, unit))
	if res.PDF != "" {
		log.Info("PDF written", zap.String("path", res.PDF))
	}
	return nil
}

// Book runs generation using configuration and switches from env.
func Book(ctx context.Context, env *state.LocalEnv) (res *Result, err error) {
	cfg := env.Cfg
	log := env.Log.Named("generate")

	opts, cssWarnings, err := prepare(cfg, log)
	if err != nil {
		return nil, err
	}

	snapshot, err := feed.OpenSnapshot(&cfg.Cache)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, snapshot.Close())
		if err != nil {
			res = nil
		}
	}()

	done := env.BeginStage("fetch")
	data, err := feed.NewClient(&cfg.API, snapshot, log).Fetch(ctx)
	done()
	if err != nil {
		return nil, fmt.Errorf("unable to fetch rulings data: %w", err)
	}
	env.Rpt.StoreData("dump/data.txt", []byte(dumpData(data)))

	done = env.BeginStage("build")
	builder := cards.NewBuilder(&cfg.Selection, opts.Icons, log)
	list := cards.Arrange(builder.Build(data), cards.NewSorter(cfg.Selection.SourceOrder), opts.Icons)
	done()
	env.Rpt.StoreData("dump/cards.txt", []byte(dumpCards(list)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res = &Result{Web: isWeb(cfg), Warnings: append(cssWarnings, builder.Warnings()...)}
	for _, c := range list {
		if !c.IsHeader() {
			res.Entries++
		}
	}

	done = env.BeginStage("render")
	if res.Web {
		err = writeWeb(cfg, opts, list, res)
	} else {
		err = writePaginated(env, opts, list, res)
	}
	done()
	if err != nil {
		return nil, err
	}
	for _, p := range res.HTML {
		env.Rpt.Store("output/"+filepath.Base(p), p)
	}

	if err := writeCompileLog(cfg.Output.CompileLog, res.Warnings); err != nil {
		return nil, err
	}
	env.Rpt.Store("output/"+filepath.Base(cfg.Output.CompileLog), cfg.Output.CompileLog)

	if res.Web || env.DryRun {
		log.Debug("PDF rendering skipped", zap.Bool("web", res.Web), zap.Bool("dry-run", env.DryRun))
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := mkdirFor(cfg.Output.PDF); err != nil {
		return nil, err
	}
	defer env.BeginStage("pdf")()
	if err := pdf.New(&cfg.PDF, log).Render(ctx, res.HTML[0], cfg.Output.PDF); err != nil {
		return nil, err
	}
	res.PDF = cfg.Output.PDF
	return res, nil
}

// prepare loads everything renderer needs besides cards. Stylesheet problems
// are returned as warnings.
func prepare(cfg *config.Config, log *zap.Logger) (render.Options, []string, error) {
	fonts := render.LoadFonts(cfg.Document.Fonts, log)

	stylesheet, sheet, err := render.LoadStylesheet(cfg.Document.TemplateCSS, css.NewParser(log))
	if err != nil {
		return render.Options{}, nil, err
	}

	var warnings []string
	for _, w := range sheet.Warnings {
		warnings = append(warnings, "[warn] stylesheet: "+w)
	}

	// icon font glyphs are useless when there is no font to show them
	glyphs := false
	if cfg.Icons.UseGlyphs {
		glyphs = sheet.HasFamily(cfg.Icons.FontFamily)
		for _, f := range fonts {
			if strings.EqualFold(f.Family, cfg.Icons.FontFamily) {
				glyphs = true
			}
		}
		if !glyphs {
			log.Debug("Icon font is not available, using emoji", zap.String("family", cfg.Icons.FontFamily))
		}
	}

	return render.Options{
		Title:      cfg.Document.Title,
		CSS:        stylesheet,
		Fonts:      fonts,
		Background: cfg.Document.PageBackgroundImage,
		Before:     render.LoadStaticPages(cfg.Document.StaticPages.Before, log),
		After:      render.LoadStaticPages(cfg.Document.StaticPages.After, log),
		Icons:      icons.NewResolver(icons.Load(cfg.Icons.MapPath, cfg.Icons.ScrapeSource, log), glyphs),
		Navigation: cfg.Web.Navigation,
	}, warnings, nil
}

func writePaginated(env *state.LocalEnv, opts render.Options, list []cards.Card, res *Result) error {
	pages := layout.Paginate(list, layout.FromConfig(&env.Cfg.Layout))
	env.Rpt.StoreData("dump/pages.txt", []byte(dumpPages(pages)))

	res.Pages = len(pages)
	doc, err := render.New(opts).Paginated(pages)
	if err != nil {
		return err
	}
	if err := writeDocument(env.Cfg.Output.HTML, doc); err != nil {
		return err
	}
	res.HTML = append(res.HTML, env.Cfg.Output.HTML)
	return nil
}

func writeWeb(cfg *config.Config, opts render.Options, list []cards.Card, res *Result) error {
	parts := split(list, cfg.Web.Split)
	if len(parts) == 1 {
		res.Pages = 1
		doc, err := render.New(opts).Continuous(list)
		if err != nil {
			return err
		}
		if err := writeDocument(cfg.Output.HTML, doc); err != nil {
			return err
		}
		res.HTML = append(res.HTML, cfg.Output.HTML)
		return nil
	}

	n, err := newNamer(cfg.Web.NameTemplate, filepath.Base(cfg.Output.HTML))
	if err != nil {
		return err
	}

	// static pages belong to index only
	partOpts := opts
	partOpts.Before, partOpts.After = nil, nil

	dir := filepath.Dir(cfg.Output.HTML)
	links := make([]render.Link, 0, len(parts))
	for i := range parts {
		name, err := n.name(&parts[i], i)
		if err != nil {
			return fmt.Errorf("unable to name web output for %s: %w", parts[i].Title, err)
		}
		p := filepath.Join(dir, name)
		doc, err := render.New(partOpts).Continuous(parts[i].Cards)
		if err != nil {
			return err
		}
		if err := writeDocument(p, doc); err != nil {
			return err
		}
		res.HTML = append(res.HTML, p)
		links = append(links, render.Link{Title: parts[i].Title, Href: name, Count: parts[i].count()})
	}
	res.Pages = len(parts)

	doc, err := render.New(opts).Index(links)
	if err != nil {
		return err
	}
	if err := writeDocument(cfg.Output.HTML, doc); err != nil {
		return err
	}
	res.HTML = append([]string{cfg.Output.HTML}, res.HTML...)
	return nil
}

func writeCompileLog(path string, warnings []string) error {
	text := noWarnings
	if len(warnings) > 0 {
		text = strings.Join(warnings, "\n") + "\n"
	}
	return writeFile(path, []byte(text))
}

func mkdirFor(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create directory for %s: %w", path, err)
	}
	return nil
}

func writeDocument(path string, doc *html.Node) error {
	data, err := render.Bytes(doc)
	if err != nil {
		return fmt.Errorf("unable to serialize %s: %w", path, err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := mkdirFor(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return nil
}
