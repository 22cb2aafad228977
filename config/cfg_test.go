package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.API.Timeout != 7*time.Second {
		t.Errorf("API.Timeout = %v, want 7s", cfg.API.Timeout)
	}
	if cfg.PDF.Engine != EngineChrome {
		t.Errorf("PDF.Engine = %v, want chrome", cfg.PDF.Engine)
	}
	if cfg.Web.NameTemplate != "{{ .Category }}{{ if .Type }}-{{ .Type }}{{ end }}" {
		t.Errorf("name_template must not be expanded, got %q", cfg.Web.NameTemplate)
	}
	if len(cfg.Selection.Categories) != 4 {
		t.Errorf("include_categories = %v", cfg.Selection.Categories)
	}
	if cfg.Layout.UsableHeight != 2580 {
		t.Errorf("Layout.UsableHeight = %d, want 2580", cfg.Layout.UsableHeight)
	}
}

func TestLoadConfiguration_JSONFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	content := `{
  "version": 1,
  "api": {"base_url": "http://127.0.0.1:8080", "timeout": "2s"},
  "selection": {"include_categories": ["upgrades"], "excluded_sources": ["legacy-alpha", "legends"]},
  "pdf": {"engine": "weasyprint", "dpi": 150},
  "web": {"mode": "on", "split": "type"}
}`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:8080" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	// untouched values keep defaults
	if cfg.API.BackupURL != "https://api-backup.swarmada.wiki" {
		t.Errorf("BackupURL = %q, want default", cfg.API.BackupURL)
	}
	if cfg.API.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", cfg.API.Timeout)
	}
	if cfg.PDF.Engine != EngineWeasyprint || cfg.PDF.DPI != 150 {
		t.Errorf("PDF = %+v", cfg.PDF)
	}
	if cfg.Web.Mode != WebModeOn || cfg.Web.Split != WebSplitType {
		t.Errorf("Web = %+v", cfg.Web)
	}
	if len(cfg.Selection.ExcludedSources) != 2 {
		t.Errorf("ExcludedSources = %v", cfg.Selection.ExcludedSources)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid_yaml", content: "version: 1\napi:\n  base_url: x\n invalid indent\n"},
		{name: "unknown_field", content: "version: 1\nunknown_field: value\n"},
		{name: "bad_version", content: "version: 2\n"},
		{name: "bad_engine", content: "version: 1\npdf:\n  engine: wkhtmltopdf\n"},
		{name: "bad_category", content: "version: 1\nselection:\n  include_categories: [ships]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}
			if _, err := LoadConfiguration(configPath); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestApply(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	err = cfg.Apply(Overrides{
		Engine:       "cdp",
		DPI:          1200,
		Categories:   []string{"upgrades", "objectives"},
		UpgradeTypes: []string{"commander"},
		OutputHTML:   "public/rulings/index.html",
		CompileLog:   "out/other.log",
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if cfg.PDF.Engine != EngineCdp {
		t.Errorf("Engine = %v, want cdp", cfg.PDF.Engine)
	}
	if got := cfg.PDF.ClampDPI(); got != MaxDPI {
		t.Errorf("ClampDPI() = %d, want %d", got, MaxDPI)
	}
	if cfg.Output.HTML != filepath.Clean("public/rulings/index.html") {
		t.Errorf("Output.HTML = %q", cfg.Output.HTML)
	}
	if strings.Join(cfg.Selection.Categories, ",") != "upgrades,objectives" {
		t.Errorf("Categories = %v", cfg.Selection.Categories)
	}

	if err := cfg.Apply(Overrides{Engine: "prince"}); !errors.Is(err, ErrInvalidEngine) {
		t.Errorf("Apply(bad engine) error = %v, want ErrInvalidEngine", err)
	}
	if err := cfg.Apply(Overrides{Categories: []string{"ships"}}); err == nil {
		t.Error("Apply(bad category) expected error")
	}
}

func TestApplyNegativeDPI(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if err := cfg.Apply(Overrides{DPI: -5}); err != nil {
		t.Fatalf("Apply(dpi=-5) error = %v", err)
	}
	if got := cfg.PDF.ClampDPI(); got != MinDPI {
		t.Errorf("ClampDPI() = %d, want %d", got, MinDPI)
	}

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("version: 1\npdf:\n  dpi: -300\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	if cfg, err = LoadConfiguration(configPath); err != nil {
		t.Fatalf("LoadConfiguration(dpi=-300) error = %v", err)
	}
	if got := cfg.PDF.ClampDPI(); got != MinDPI {
		t.Errorf("ClampDPI() from file = %d, want %d", got, MinDPI)
	}
}

func TestClampDPI(t *testing.T) {
	for _, tt := range []struct{ in, want int }{{-5, 72}, {0, 96}, {10, 72}, {72, 72}, {300, 300}, {600, 600}, {601, 600}} {
		c := PDFConfig{DPI: tt.in}
		if got := c.ClampDPI(); got != tt.want {
			t.Errorf("ClampDPI(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}

	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.API.Token = "top-secret"
	dump, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if strings.Contains(string(dump), "top-secret") {
		t.Error("token leaked into configuration dump")
	}
	if !strings.Contains(string(dump), "engine: chrome") {
		t.Errorf("enum is not marshaled by name:\n%s", dump)
	}
}
