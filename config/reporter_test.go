package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReport_NilIsSafe(t *testing.T) {
	var r *Report
	r.Store("x", "/nonexistent")
	r.StoreData("y", []byte("data"))
	if r.Name() != "" {
		t.Errorf("Name() on nil report = %q, want empty", r.Name())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() on nil report error = %v", err)
	}
}

func TestReport_Finalize(t *testing.T) {
	tmpDir := t.TempDir()

	conf := ReporterConfig{Destination: filepath.Join(tmpDir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	html := filepath.Join(tmpDir, "book.html")
	if err := os.WriteFile(html, []byte("<html></html>"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	r.Store("out/book.html", html)
	r.StoreData("cards.txt", []byte("Card[upgrades] Screed"))
	r.Store("missing.log", filepath.Join(tmpDir, "missing.log"))

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := zip.OpenReader(conf.Destination)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	got := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		got[f.Name] = string(data)
	}

	if _, ok := got["MANIFEST"]; !ok {
		t.Error("report has no MANIFEST")
	}
	if got["out/book.html"] != "<html></html>" {
		t.Errorf("out/book.html = %q", got["out/book.html"])
	}
	if got["cards.txt"] != "Card[upgrades] Screed" {
		t.Errorf("cards.txt = %q", got["cards.txt"])
	}
	if _, ok := got["missing.log"]; ok {
		t.Error("absent files must be skipped")
	}
}

func TestReport_StoreDataTwicePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("a", []byte("1"))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate data entry")
		}
	}()
	r.StoreData("a", []byte("2"))
}

func TestReport_DirectoryAndManifest(t *testing.T) {
	tmpDir := t.TempDir()
	parts := filepath.Join(tmpDir, "rulings")
	if err := os.MkdirAll(filepath.Join(parts, "upgrades"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(parts, "upgrades", "commander.html"), []byte("cmd"), 0644); err != nil {
		t.Fatal(err)
	}

	conf := ReporterConfig{Destination: filepath.Join(tmpDir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	r.Store("web", parts)
	r.StoreData("empty.txt", nil)
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := zip.OpenReader(conf.Destination)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	names := make(map[string]*zip.File)
	for _, f := range zr.File {
		names[f.Name] = f
	}
	if _, ok := names["web/upgrades/commander.html"]; !ok {
		t.Errorf("directory contents are not archived, have %v", names)
	}
	if _, ok := names["empty.txt"]; !ok {
		t.Error("empty data entry must be archived")
	}

	rc, err := names["MANIFEST"].Open()
	if err != nil {
		t.Fatal(err)
	}
	manifest, _ := io.ReadAll(rc)
	rc.Close()
	if !strings.Contains(string(manifest), "empty.txt\tcaptured 0 bytes") {
		t.Errorf("MANIFEST = %q", manifest)
	}
}

func TestReport_StoreSamePath(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("a", "/tmp/x")
	r.Store("a", "/tmp/x")

	defer func() {
		if recover() == nil {
			t.Error("expected panic when name is reused for another path")
		}
	}()
	r.Store("a", "/tmp/y")
}
