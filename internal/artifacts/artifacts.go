// Package artifacts manages the files derived from a conversion record:
// the uploaded PDF and the rendered workbook, both named by record id.
package artifacts

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Macora01/pdftoexcl/internal/fsutil"
	"github.com/Macora01/pdftoexcl/internal/xlsx"
)

const (
	pdfExt  = ".pdf"
	xlsxExt = ".xlsx"
)

// Store keeps uploads under <root>/uploads and workbooks under <root>/outputs.
// It is safe for concurrent use; writes are atomic per file.
type Store struct {
	uploads string
	outputs string
}

// Open prepares the artifact directories under root.
func Open(root string) (*Store, error) {
	s := &Store{
		uploads: filepath.Join(root, "uploads"),
		outputs: filepath.Join(root, "outputs"),
	}
	for _, dir := range []string{s.uploads, s.outputs} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return s, nil
}

// PDFPath returns where the uploaded PDF of id lives.
func (s *Store) PDFPath(id string) string {
	return filepath.Join(s.uploads, id+pdfExt)
}

// XLSXPath returns where the rendered workbook of id lives.
func (s *Store) XLSXPath(id string) string {
	return filepath.Join(s.outputs, id+xlsxExt)
}

// SavePDF stores the uploaded document for id.
func (s *Store) SavePDF(id string, data []byte) error {
	return fsutil.WriteAtomic(s.PDFPath(id), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// RenderXLSX renders rows to the workbook for id and returns its path.
func (s *Store) RenderXLSX(id string, rows [][]string) (string, error) {
	path := s.XLSXPath(id)
	if err := xlsx.RenderFile(rows, path); err != nil {
		return "", err
	}
	return path, nil
}

// Remove deletes every artifact of id. Missing files are not an error.
func (s *Store) Remove(id string) error {
	var errs []error
	for _, path := range []string{s.PDFPath(id), s.XLSXPath(id)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Entry is an artifact file found on disk.
type Entry struct {
	ID      string
	Path    string
	ModTime time.Time
	Temp    bool
}

// List returns every artifact and leftover temporary file.
func (s *Store) List() ([]Entry, error) {
	var out []Entry
	for _, dir := range []struct {
		path string
		ext  string
	}{{s.uploads, pdfExt}, {s.outputs, xlsxExt}} {
		entries, err := os.ReadDir(dir.path)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir.path, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				// Removed between ReadDir and Info.
				continue
			}
			name := e.Name()
			entry := Entry{
				Path:    filepath.Join(dir.path, name),
				ModTime: info.ModTime(),
				Temp:    fsutil.IsTemp(name),
			}
			if !entry.Temp {
				if !strings.HasSuffix(name, dir.ext) {
					continue
				}
				entry.ID = strings.TrimSuffix(name, dir.ext)
			}
			out = append(out, entry)
		}
	}
	return out, nil
}

// RemovePath deletes a single file returned by List.
func (s *Store) RemovePath(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
