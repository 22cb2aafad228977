package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/multierr"

	"karm/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report. When destination cannot be created report
// goes to temporary directory instead.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return &Report{entries: make(map[string]entry), file: f}, nil
}

// entry is either a path on disk (file or directory) or captured data.
type entry struct {
	original string
	actual   string
	stamp    time.Time
	data     []byte
}

func (e entry) captured() bool {
	return e.data != nil
}

// Report accumulates everything necessary to troubleshoot a generation run:
// effective configuration, logs, produced HTML, card and page dumps.
// All methods are safe to call on nil report, which means no report was
// requested. Not safe for concurrent use.
type Report struct {
	entries map[string]entry
	file    *os.File
}

// Close writes the archive.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.write()
	return multierr.Append(err, r.file.Close())
}

// Name returns absolute name of the archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers file or directory to be archived under name. Contents are
// read on Close, so files which are still being written are fine. Storing the
// same name for a different path is a programming error.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if old, ok := r.entries[name]; ok && old.original != path {
		panic(fmt.Sprintf("report entry [%s] already points to %s, not %s", name, old.original, path))
	}
	actual, err := filepath.Abs(path)
	if err != nil {
		actual = path
	}
	r.entries[name] = entry{original: path, actual: actual}
}

// StoreData archives data under name. Names could not be reused.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if _, ok := r.entries[name]; ok {
		panic(fmt.Sprintf("report entry [%s] already exists", name))
	}
	if data == nil {
		data = []byte{}
	}
	r.entries[name] = entry{data: data, stamp: time.Now()}
}

func (r *Report) write() (err error) {
	arc := zip.NewWriter(r.file)
	defer func() {
		err = multierr.Append(err, arc.Close())
	}()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)

	now := time.Now()
	if err := addFile(arc, "MANIFEST", now, strings.NewReader(manifest(names, r.entries, now))); err != nil {
		return err
	}
	for _, name := range names {
		e := r.entries[name]
		if e.captured() {
			if err := addFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		info, err := os.Stat(e.actual)
		if err != nil {
			// absent output, run most likely failed before producing it
			continue
		}
		switch {
		case info.Mode().IsRegular():
			err = addPath(arc, name, e.actual, info.ModTime())
		case info.IsDir():
			err = addDir(arc, name, e.actual)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func manifest(names []string, entries map[string]entry, now time.Time) string {
	var b strings.Builder
	for _, name := range names {
		e := entries[name]
		stamp, origin := e.stamp, e.original+" : "+e.actual
		if stamp.IsZero() {
			stamp = now
		}
		if e.captured() {
			origin = fmt.Sprintf("captured %d bytes", len(e.data))
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\n", stamp.UTC().Format(time.UnixDate), name, origin)
	}
	return b.String()
}

func addFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return fmt.Errorf("unable to add %s to report: %w", name, err)
	}
	_, err = io.Copy(w, src)
	return err
}

func addPath(dst *zip.Writer, name, path string, t time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return addFile(dst, name, t, f)
}

// addDir archives regular files of the directory tree under name.
func addDir(dst *zip.Writer, name, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return addPath(dst, filepath.ToSlash(filepath.Join(name, rel)), path, info.ModTime())
	})
}
