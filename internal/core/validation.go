package core

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Error codes quoted to support. See error_messages.go for the catalog.
const (
	CodeNotPDF      = "FILE001"
	CodeTooLarge    = "FILE002"
	CodeNoData      = "FILE003"
	CodeNoFile      = "FILE004"
	CodeNoRows      = "DATA001"
	CodeNotFound    = "NF001"
	CodeExtraction  = "PDF001"
	CodeRender      = "XLS001"
	CodeBusy        = "UPL002"
	CodeRateLimited = "RATE001"
	CodeUnknown     = "ERR000"
)

// ValidationError reports input the client can correct. Message is already
// localized for display.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// IsPDFFilename reports whether name carries a .pdf extension, ignoring case.
func IsPDFFilename(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

func errNotPDF() error {
	return &ValidationError{Code: CodeNotPDF, Field: "file", Message: catalog[CodeNotPDF].Message}
}

// ErrFileTooLarge builds the oversize error for limit bytes.
func ErrFileTooLarge(limit int64) error {
	return &ValidationError{
		Code:    CodeTooLarge,
		Field:   "file",
		Message: fmt.Sprintf("El archivo excede el límite de %s", humanize.IBytes(uint64(limit))),
	}
}

// ErrNoFile is returned when a request carries no file.
func ErrNoFile() error {
	return &ValidationError{Code: CodeNoFile, Field: "file", Message: catalog[CodeNoFile].Message}
}

func errNoData() error {
	return &ValidationError{Code: CodeNoData, Message: catalog[CodeNoData].Message}
}

func errNoRows() error {
	return &ValidationError{Code: CodeNoRows, Message: catalog[CodeNoRows].Message}
}
