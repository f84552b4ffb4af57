package core

import (
	"os"
	"time"

	"github.com/Macora01/pdftoexcl/internal/store"
)

// Preview is the client view of a record: its metadata and first rows.
type Preview struct {
	ID               string       `json:"id"`
	OriginalFilename string       `json:"original_filename"`
	Status           store.Status `json:"status"`
	PreviewData      [][]string   `json:"preview_data"`
	TotalRows        int          `json:"total_rows"`
	TotalPages       int          `json:"total_pages"`
}

// Download is a rendered workbook opened for reading. The caller must
// Close it.
type Download struct {
	File     *os.File
	Filename string
	Size     int64
	ModTime  time.Time
}

// Close releases the workbook file.
func (d *Download) Close() error {
	return d.File.Close()
}

// SweepResult counts what one janitor pass removed.
type SweepResult struct {
	Expired int // records past RETENTION_MAX_AGE, with their files
	Orphans int // artifacts whose record no longer exists
	Temp    int // leftovers of interrupted atomic writes
}

func previewOf(rec *store.Record, limit int) *Preview {
	rows := rec.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = [][]string{}
	}
	return &Preview{
		ID:               rec.ID,
		OriginalFilename: rec.OriginalFilename,
		Status:           rec.Status,
		PreviewData:      rows,
		TotalRows:        rec.TotalRows,
		TotalPages:       rec.TotalPages,
	}
}
