package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

// Categories which could be requested for inclusion. Nexus variants follow
// their base category.
var KnownCategories = []string{"objectives", "damage-cards", "upgrades", "ace-squadrons"}

type (
	TemplateFieldName string

	APIConfig struct {
		BaseURL   string        `yaml:"base_url" validate:"required,url"`
		BackupURL string        `yaml:"backup_url" validate:"omitempty,url"`
		Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
		UserAgent string        `yaml:"user_agent"`
		Token     SecretString  `yaml:"token,omitempty"`
	}

	CacheConfig struct {
		Mode CacheMode `yaml:"mode"`
		Path string    `yaml:"path" sanitize:"path_clean" validate:"required,filepath"`
	}

	SelectionConfig struct {
		Categories      []string `yaml:"include_categories" validate:"dive,oneof=objectives damage-cards upgrades ace-squadrons"`
		UpgradeTypes    []string `yaml:"include_upgrade_types" validate:"dive,required"`
		ExcludedSources []string `yaml:"excluded_sources" validate:"dive,required"`
		SourceOrder     []string `yaml:"source_order" validate:"dive,required"`
	}

	OutputConfig struct {
		HTML       string `yaml:"html" sanitize:"path_clean" validate:"required,filepath"`
		PDF        string `yaml:"pdf" sanitize:"path_clean" validate:"required,filepath"`
		CompileLog string `yaml:"compile_log" sanitize:"path_clean" validate:"required,filepath"`
	}

	FontFace struct {
		Family string `yaml:"family" validate:"required"`
		Path   string `yaml:"path"`
		Weight string `yaml:"weight" validate:"required"`
		Style  string `yaml:"style" validate:"oneof=normal italic oblique"`
	}

	StaticPagesConfig struct {
		Before []string `yaml:"before" validate:"dive,required"`
		After  []string `yaml:"after" validate:"dive,required"`
	}

	DocumentConfig struct {
		Title               string            `yaml:"title" validate:"required"`
		TemplateCSS         string            `yaml:"template_css" sanitize:"assure_file_access"`
		PageBackgroundImage string            `yaml:"page_background_image"`
		StaticPages         StaticPagesConfig `yaml:"static_pages"`
		Fonts               []FontFace        `yaml:"fonts" validate:"dive"`
	}

	IconsConfig struct {
		MapPath      string `yaml:"map_path"`
		ScrapeSource string `yaml:"scrape_source"`
		UseGlyphs    bool   `yaml:"use_glyphs"`
		FontFamily   string `yaml:"font_family"`
	}

	WebConfig struct {
		Mode         WebMode  `yaml:"mode"`
		Split        WebSplit `yaml:"split"`
		Navigation   bool     `yaml:"navigation"`
		NameTemplate string   `yaml:"name_template" validate:"required"`
	}

	PDFConfig struct {
		Engine Engine `yaml:"engine"`
		// DPI out of [MinDPI, MaxDPI] is clamped, 0 means renderer default.
		DPI            int           `yaml:"dpi"`
		ChromePath     string        `yaml:"chrome_path"`
		WeasyprintPath string        `yaml:"weasyprint_path"`
		Timeout        time.Duration `yaml:"timeout" validate:"gte=0"`
	}

	// LayoutConfig holds pagination heuristic constants, all in CSS pixels
	// except CharsPerLine.
	LayoutConfig struct {
		UsableHeight   int `yaml:"usable_height" validate:"gt=0"`
		Base           int `yaml:"base" validate:"gte=0"`
		SectionHeading int `yaml:"section_heading" validate:"gte=0"`
		RuleBullet     int `yaml:"rule_bullet" validate:"gte=0"`
		LineHeight     int `yaml:"line_height" validate:"gt=0"`
		CharsPerLine   int `yaml:"chars_per_line" validate:"gt=0"`
		KeywordRow     int `yaml:"keyword_row" validate:"gte=0"`
		TopSummary     int `yaml:"top_summary" validate:"gte=0"`
		FootnoteBlock  int `yaml:"footnote_block" validate:"gte=0"`
		FootnoteLine   int `yaml:"footnote_line" validate:"gte=0"`
		Margin         int `yaml:"margin" validate:"gte=0"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		API       APIConfig       `yaml:"api"`
		Cache     CacheConfig     `yaml:"cache"`
		Selection SelectionConfig `yaml:"selection"`
		Output    OutputConfig    `yaml:"output"`
		Document  DocumentConfig  `yaml:"document"`
		Icons     IconsConfig     `yaml:"icons"`
		Web       WebConfig       `yaml:"web"`
		PDF       PDFConfig       `yaml:"pdf"`
		Layout    LayoutConfig    `yaml:"layout"`
		Logging   LoggingConfig   `yaml:"logging"`
		Reporting ReporterConfig  `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	WebNameTemplateFieldName TemplateFieldName = "name_template"
)

const (
	MinDPI = 72
	MaxDPI = 600
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(WebNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := cfg.check(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// check sanitizes and validates what has been loaded.
func (cfg *Config) check() error {
	if err := gencfg.Sanitize(cfg); err != nil {
		return err
	}
	if err := gencfg.Validate(cfg); err != nil {
		return err
	}
	return nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation. The file could be either YAML or JSON.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Overrides carries values specified on the command line, zero values mean
// "not specified".
type Overrides struct {
	Engine       string
	DPI          int
	Categories   []string
	UpgradeTypes []string
	OutputHTML   string
	OutputPDF    string
	CompileLog   string
	Web          bool
}

// Apply superimposes command line values on top of loaded configuration and
// validates the result again.
func (cfg *Config) Apply(o Overrides) error {
	if o.Engine != "" {
		e, err := ParseEngine(o.Engine)
		if err != nil {
			return fmt.Errorf("unsupported engine requested (supported: %v): %w", EngineNames(), err)
		}
		cfg.PDF.Engine = e
	}
	if o.DPI != 0 {
		cfg.PDF.DPI = o.DPI
	}
	if len(o.Categories) > 0 {
		for _, c := range o.Categories {
			if !slices.Contains(KnownCategories, c) {
				return fmt.Errorf("unknown category %q requested (supported: %v)", c, KnownCategories)
			}
		}
		cfg.Selection.Categories = o.Categories
	}
	if len(o.UpgradeTypes) > 0 {
		cfg.Selection.UpgradeTypes = o.UpgradeTypes
	}
	if o.OutputHTML != "" {
		cfg.Output.HTML = o.OutputHTML
	}
	if o.OutputPDF != "" {
		cfg.Output.PDF = o.OutputPDF
	}
	if o.CompileLog != "" {
		cfg.Output.CompileLog = o.CompileLog
	}
	if o.Web {
		cfg.Web.Mode = WebModeOn
	}
	return cfg.check()
}

// ClampDPI keeps requested resolution within what renderers could handle.
func (cfg *PDFConfig) ClampDPI() int {
	switch {
	case cfg.DPI == 0:
		return 96
	case cfg.DPI < MinDPI:
		return MinDPI
	case cfg.DPI > MaxDPI:
		return MaxDPI
	}
	return cfg.DPI
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
