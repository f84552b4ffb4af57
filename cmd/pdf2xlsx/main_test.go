package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Macora01/pdftoexcl/internal/core"
	"github.com/Macora01/pdftoexcl/internal/testutil"
	"github.com/Macora01/pdftoexcl/internal/xlsx"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestConvert_DefaultOutput(t *testing.T) {
	input := writeFixture(t, "table.pdf", testutil.PDF(t, testutil.RuledTable(testutil.ThreeByThree)))

	out, err := execute(t, "convert", input)
	require.NoError(t, err)

	want := filepath.Join(filepath.Dir(input), "table.xlsx")
	assert.Contains(t, out, "3 rows from 1 pages")

	f, err := excelize.OpenFile(want)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(xlsx.SheetName)
	require.NoError(t, err)
	assert.Equal(t, testutil.ThreeByThree, rows)
}

func TestConvert_ExplicitOutput(t *testing.T) {
	input := writeFixture(t, "notes.pdf", testutil.PDF(t, testutil.TextLines("alpha", "beta")))
	output := filepath.Join(t.TempDir(), "out.xlsx")

	_, err := execute(t, "convert", input, "-o", output, "--strategy", "auto")
	require.NoError(t, err)
	assert.FileExists(t, output)
}

func TestConvert_BlankPDF(t *testing.T) {
	input := writeFixture(t, "blank.pdf", testutil.PDF(t, testutil.BlankPage))

	_, err := execute(t, "convert", input)
	require.Error(t, err)
	assert.Equal(t, core.CodeNoData, core.MapError(err).Code)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(input), "blank.xlsx"))
}

func TestConvert_RejectsNonPDF(t *testing.T) {
	input := writeFixture(t, "notes.txt", []byte("hi"))

	_, err := execute(t, "convert", input)
	assert.Equal(t, core.CodeNotPDF, core.MapError(err).Code)
}

func TestInspect_JSON(t *testing.T) {
	input := writeFixture(t, "lines.pdf", testutil.PDF(t, testutil.TextLines("one", "two", "three")))

	out, err := execute(t, "inspect", input, "--limit", "2")
	require.NoError(t, err)

	var res inspectResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, [][]string{{"one"}, {"two"}}, res.Rows)
	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, 1, res.TotalPages)
	assert.Equal(t, "lines", res.Strategy)
}

func TestInspect_BadStrategy(t *testing.T) {
	input := writeFixture(t, "lines.pdf", testutil.PDF(t, testutil.TextLines("one")))

	_, err := execute(t, "inspect", input, "--strategy", "stream")
	assert.ErrorContains(t, err, "unknown table strategy")
}
