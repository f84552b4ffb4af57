package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Macora01/pdftoexcl/internal/artifacts"
	"github.com/Macora01/pdftoexcl/internal/config"
	"github.com/Macora01/pdftoexcl/internal/extract"
	"github.com/Macora01/pdftoexcl/internal/logging"
	"github.com/Macora01/pdftoexcl/internal/store"
)

// ErrNotFound is returned for ids with no record.
var ErrNotFound = fmt.Errorf("conversion: %w", store.ErrNotFound)

// Service converts uploaded PDFs and serves the results.
type Service struct {
	records   store.Store
	files     *artifacts.Store
	extractor *extract.Extractor
	limiter   *UploadLimiter

	maxFileSize int64
	previewRows int

	newID func() string
	now   func() time.Time
}

// NewService wires the service to its stores. The caller owns records and
// closes it after the service stops.
func NewService(records store.Store, files *artifacts.Store, extractor *extract.Extractor, cfg config.UploadConfig) *Service {
	return &Service{
		records:     records,
		files:       files,
		extractor:   extractor,
		limiter:     NewUploadLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		maxFileSize: cfg.MaxFileSize,
		previewRows: cfg.PreviewRows,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// MaxFileSize returns the upload size limit in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// Preview returns the first rows of the record with id.
func (s *Service) Preview(ctx context.Context, id string) (*Preview, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return nil, err
	}
	return previewOf(rec, s.previewRows), nil
}

// Delete removes the record with id and its files. Unknown ids and missing
// files are not errors.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	log := logging.WithRecord(ctx, id)

	if err := s.records.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if err := s.files.Remove(id); err != nil {
		// The janitor retries whatever is left.
		log.Warn("failed to remove artifacts", "error", err)
	}

	log.Info("conversion deleted", clientAttrs(ctx)...)
	return nil
}

// Ping checks the record store.
func (s *Service) Ping(ctx context.Context) error {
	return s.records.Ping(ctx)
}

// WaitForUploads blocks until running uploads finish or ctx ends.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// UploadLimiterStatus reports extraction slot usage.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

func (s *Service) record(ctx context.Context, id string) (*store.Record, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// validID accepts canonical UUIDs only. Ids name files on disk, so anything
// else is rejected before it reaches a path.
func validID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == id
}

// DownloadFilename derives the workbook name from the uploaded filename by
// replacing its extension with .xlsx.
//
//	report.PDF -> report.xlsx
//	noext      -> noext.xlsx
func DownloadFilename(original string) string {
	name := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." || name == "/" {
		name = "converted"
	}
	return name + ".xlsx"
}
