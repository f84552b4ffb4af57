// Package core provides the conversion service behind the HTTP API.
//
// A conversion starts with an uploaded PDF. Upload validates the file,
// extracts its rows and persists a record; Preview returns the first rows
// of a record; Download renders the record to a workbook; Delete removes
// the record and every file derived from it. The package is independent of
// the transport layer so the same service can back the web server and
// tests.
//
// # Errors
//
// Operations return:
//   - *ValidationError for input the client can fix (wrong file type,
//     oversized file, nothing to extract, nothing to convert)
//   - ErrNotFound for unknown ids
//   - ErrTooManyUploads when every extraction slot stays busy
//   - *extract.ExtractionError and *xlsx.RenderError for processing failures
//
// MapError turns any of these into a localized UserMessage with a support
// code (see error_messages.go).
//
// # Retention
//
// Janitor runs on a cron schedule, expiring old records and sweeping
// artifacts left behind by interrupted writes or racing deletes.
package core
