package core

// # Error Codes Reference
//
// User-facing messages are Spanish and carry a code users can quote to
// support. Codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Not a PDF: the filename does not end in .pdf
//	FILE002 - Too large: the upload exceeds UPLOAD_MAX_FILE_SIZE
//	FILE003 - No data: nothing could be extracted from the document
//	FILE004 - No file: the form carried no file field
//
// # Conversion Errors (DATA, PDF, XLS)
//
//	DATA001 - The record has no rows to convert
//	PDF001  - The document could not be read
//	XLS001  - The workbook could not be written
//
// # Lookup Errors (NF001)
//
//	NF001 - Unknown record id
//
// # Capacity Errors (UPL, RATE)
//
//	UPL002  - Every extraction slot stayed busy
//	RATE001 - The client exceeded its request rate
//
// # Fallback (ERR000)
//
//	ERR000 - Anything else. The cause is logged, never shown.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Macora01/pdftoexcl/internal/extract"
	"github.com/Macora01/pdftoexcl/internal/xlsx"
)

// UserMessage is an error rendered for display.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

var catalog = map[string]UserMessage{
	CodeNotPDF: {
		Message: "Solo se permiten archivos PDF",
		Action:  "Seleccione un archivo con extensión .pdf",
		Code:    CodeNotPDF,
	},
	CodeTooLarge: {
		Message: "El archivo excede el límite de 10 MiB",
		Action:  "Divida el documento o reduzca su tamaño",
		Code:    CodeTooLarge,
	},
	CodeNoData: {
		Message: "No se encontraron datos en el PDF",
		Action:  "Verifique que el PDF contenga texto seleccionable y no solo imágenes",
		Code:    CodeNoData,
	},
	CodeNoFile: {
		Message: "No se recibió ningún archivo",
		Action:  "Adjunte un archivo PDF en el campo file",
		Code:    CodeNoFile,
	},
	CodeNoRows: {
		Message: "No hay datos para convertir",
		Action:  "Suba un PDF que contenga tablas o texto",
		Code:    CodeNoRows,
	},
	CodeNotFound: {
		Message: "Archivo no encontrado",
		Action:  "Verifique el identificador o vuelva a subir el archivo",
		Code:    CodeNotFound,
	},
	CodeExtraction: {
		Message: "Error procesando el PDF",
		Action:  "Verifique que el archivo no esté dañado ni protegido con contraseña",
		Code:    CodeExtraction,
	},
	CodeRender: {
		Message: "Error creando el archivo Excel",
		Action:  "Intente nuevamente",
		Code:    CodeRender,
	},
	CodeBusy: {
		Message: "Demasiadas cargas en curso",
		Action:  "Espere unos segundos e intente nuevamente",
		Code:    CodeBusy,
	},
	CodeRateLimited: {
		Message: "Demasiadas solicitudes",
		Action:  "Espere un momento antes de reintentar",
		Code:    CodeRateLimited,
	},
}

var defaultMessage = UserMessage{
	Message: "Ocurrió un error inesperado",
	Action:  "Intente nuevamente o contacte a soporte",
	Code:    CodeUnknown,
}

type errorPattern struct {
	pattern string
	code    string
}

// errorPatterns catch errors that reach MapError as plain text, such as
// those produced by middleware.
var errorPatterns = []errorPattern{
	{pattern: "rate limit", code: CodeRateLimited},
	{pattern: "too many concurrent uploads", code: CodeBusy},
	{pattern: "request body too large", code: CodeTooLarge},
}

// Lookup returns the catalog entry for code, or the fallback message.
func Lookup(code string) UserMessage {
	if msg, ok := catalog[code]; ok {
		return msg
	}
	return defaultMessage
}

// MapError converts an error to a user-facing message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		verr *ValidationError
		xerr *extract.ExtractionError
		rerr *xlsx.RenderError
	)
	switch {
	case errors.As(err, &verr):
		msg := Lookup(verr.Code)
		if verr.Message != "" {
			msg.Message = verr.Message
		}
		return msg
	case errors.Is(err, ErrNotFound):
		return catalog[CodeNotFound]
	case errors.Is(err, ErrTooManyUploads):
		return catalog[CodeBusy]
	case errors.As(err, &xerr):
		return catalog[CodeExtraction]
	case errors.As(err, &rerr):
		return catalog[CodeRender]
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return catalog[ep.code]
		}
	}
	return defaultMessage
}

// FormatUserError renders err as a single line for terminals and logs.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Código: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than the
// generic fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
