// Package fsutil holds small filesystem helpers shared by the artifact
// store and the spreadsheet renderer.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TempSuffix marks in-progress files; the janitor sweeps stale ones.
const TempSuffix = ".tmp"

// WriteAtomic publishes a file at path. write receives a temporary file in
// the same directory; once it returns nil the file is synced, closed and
// renamed over path. On any failure the temporary file is removed and
// path is left untouched, so readers never observe a partial file.
func WriteAtomic(path string, write func(w io.Writer) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*"+TempSuffix)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("publish %s: %w", base, err)
	}
	return nil
}

// IsTemp reports whether name looks like a WriteAtomic temporary file.
func IsTemp(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, TempSuffix)
}
