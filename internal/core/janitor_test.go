package core

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Macora01/pdftoexcl/internal/config"
	"github.com/Macora01/pdftoexcl/internal/store"
	"github.com/Macora01/pdftoexcl/internal/testutil"
)

func backdate(t *testing.T, path string, age time.Duration) {
	t.Helper()
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, old, old))
}

func TestJanitor_ExpiresOldRecords(t *testing.T) {
	svc := newTestService(t, testUploadConfig())
	ctx := context.Background()
	data := testutil.PDF(t, testutil.TextLines("keep me"))

	svc.now = func() time.Time { return time.Now().Add(-72 * time.Hour) }
	old, err := svc.Upload(ctx, "old.pdf", -1, bytes.NewReader(data))
	require.NoError(t, err)

	svc.now = time.Now
	fresh, err := svc.Upload(ctx, "fresh.pdf", -1, bytes.NewReader(data))
	require.NoError(t, err)

	j := svc.Janitor(config.RetentionConfig{MaxAge: 24 * time.Hour, OrphanGrace: time.Hour})
	res, err := j.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Expired)

	_, err = svc.Preview(ctx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = os.Stat(svc.files.PDFPath(old.ID))
	assert.True(t, os.IsNotExist(err), "expired upload should be removed")

	_, err = svc.Preview(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestJanitor_ZeroMaxAgeKeepsRecords(t *testing.T) {
	svc := newTestService(t, testUploadConfig())
	ctx := context.Background()
	data := testutil.PDF(t, testutil.TextLines("forever"))

	svc.now = func() time.Time { return time.Now().Add(-365 * 24 * time.Hour) }
	preview, err := svc.Upload(ctx, "old.pdf", -1, bytes.NewReader(data))
	require.NoError(t, err)
	svc.now = time.Now

	res, err := svc.Janitor(config.RetentionConfig{OrphanGrace: time.Minute}).Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, res)

	_, err = svc.Preview(ctx, preview.ID)
	assert.NoError(t, err)
}

func TestJanitor_RemovesOrphansAfterGrace(t *testing.T) {
	svc := newTestService(t, testUploadConfig())
	ctx := context.Background()

	// A workbook published after its record was deleted.
	orphan := uuid.NewString()
	orphanPath, err := svc.files.RenderXLSX(orphan, [][]string{{"x"}})
	require.NoError(t, err)
	backdate(t, orphanPath, 2*time.Hour)

	// A fresh orphan may belong to an upload still extracting.
	young := uuid.NewString()
	require.NoError(t, svc.files.SavePDF(young, []byte("%PDF")))

	// Leftover of an interrupted write.
	temp := filepath.Join(filepath.Dir(orphanPath), "."+uuid.NewString()+".xlsx.42.tmp")
	require.NoError(t, os.WriteFile(temp, []byte("partial"), 0o644))
	backdate(t, temp, 2*time.Hour)

	// A live record's files are kept however old.
	data := testutil.PDF(t, testutil.TextLines("live"))
	live, err := svc.Upload(ctx, "live.pdf", -1, bytes.NewReader(data))
	require.NoError(t, err)
	backdate(t, svc.files.PDFPath(live.ID), 2*time.Hour)

	res, err := svc.Janitor(config.RetentionConfig{OrphanGrace: time.Hour}).Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Orphans: 1, Temp: 1}, res)

	assert.NoFileExists(t, orphanPath)
	assert.NoFileExists(t, temp)
	assert.FileExists(t, svc.files.PDFPath(young))
	assert.FileExists(t, svc.files.PDFPath(live.ID))
}

func TestJanitor_RunStopsWithContext(t *testing.T) {
	svc := newTestService(t, testUploadConfig())
	j := svc.Janitor(config.RetentionConfig{Schedule: "@every 1h", OrphanGrace: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestJanitor_RunRejectsBadSchedule(t *testing.T) {
	svc := newTestService(t, testUploadConfig())
	err := svc.Janitor(config.RetentionConfig{Schedule: "whenever"}).Run(context.Background())
	assert.Error(t, err)
}

func TestJanitor_ExpiredRecordWithoutFiles(t *testing.T) {
	svc := newTestService(t, testUploadConfig())
	ctx := context.Background()

	id := uuid.NewString()
	require.NoError(t, svc.records.Create(ctx, &store.Record{
		ID:        id,
		Status:    store.StatusReady,
		Rows:      [][]string{{"a"}},
		TotalRows: 1,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}))

	res, err := svc.Janitor(config.RetentionConfig{MaxAge: time.Hour}).Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Expired)
}
