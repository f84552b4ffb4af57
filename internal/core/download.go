package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Macora01/pdftoexcl/internal/logging"
)

// Download renders the record with id to a workbook and opens it.
//
// A delete racing the download either wins before the record is read
// (ErrNotFound) or after the workbook is opened, in which case the open
// handle still serves the full file.
func (s *Service) Download(ctx context.Context, id string) (*Download, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(rec.Rows) == 0 {
		return nil, errNoRows()
	}

	path, err := s.files.RenderXLSX(id, rec.Rows)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat workbook: %w", err)
	}

	logging.WithRecord(ctx, id).Debug("workbook rendered", "rows", len(rec.Rows), "bytes", info.Size())
	return &Download{
		File:     f,
		Filename: DownloadFilename(rec.OriginalFilename),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
	}, nil
}
