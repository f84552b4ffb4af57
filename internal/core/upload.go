package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Macora01/pdftoexcl/internal/logging"
	"github.com/Macora01/pdftoexcl/internal/store"
)

// Upload validates and converts one PDF. size is the length the client
// declared, or -1 when unknown; at most MaxFileSize+1 bytes are read from r
// regardless.
//
// On success the record is persisted as ready and its preview returned.
// Validation failures leave nothing behind. Extraction failures remove the
// saved upload before returning.
func (s *Service) Upload(ctx context.Context, filename string, size int64, r io.Reader) (*Preview, error) {
	if !IsPDFFilename(filename) {
		return nil, errNotPDF()
	}
	if size > s.maxFileSize {
		return nil, ErrFileTooLarge(s.maxFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, ErrFileTooLarge(s.maxFileSize)
	}
	if len(data) == 0 {
		return nil, ErrNoFile()
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	id := s.newID()
	log := logging.WithRecord(ctx, id).With("filename", filename)
	start := time.Now()
	log.Info("upload started", append([]any{"bytes", len(data)}, clientAttrs(ctx)...)...)

	if err := s.files.SavePDF(id, data); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	rec, err := s.convert(ctx, id, filename, data)
	if err != nil {
		s.discard(ctx, id)
		var verr *ValidationError
		if errors.As(err, &verr) {
			log.Info("upload rejected", "code", verr.Code)
		} else {
			log.Error("upload failed", "error", err)
		}
		return nil, err
	}

	log.Info("upload converted",
		"rows", rec.TotalRows,
		"pages", rec.TotalPages,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return previewOf(rec, s.previewRows), nil
}

func (s *Service) convert(ctx context.Context, id, filename string, data []byte) (*store.Record, error) {
	res, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return nil, err
	}
	if res.TotalRows == 0 {
		return nil, errNoData()
	}

	rec := &store.Record{
		ID:               id,
		OriginalFilename: filename,
		Status:           store.StatusReady,
		Rows:             res.Rows,
		TotalRows:        res.TotalRows,
		TotalPages:       res.TotalPages,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist record: %w", err)
	}
	return rec, nil
}

// discard removes what a failed upload left behind.
func (s *Service) discard(ctx context.Context, id string) {
	if err := s.files.Remove(id); err != nil {
		logging.WithRecord(ctx, id).Warn("failed to remove rejected upload", "error", err)
	}
}
