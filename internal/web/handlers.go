package web

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Macora01/pdftoexcl/internal/core"
	"github.com/Macora01/pdftoexcl/internal/xlsx"
)

// multipartOverhead is the body allowance on top of the file limit for
// multipart boundaries and headers.
const multipartOverhead = 1 << 20

// multipartMemory is how much of a form is buffered before spilling to disk.
const multipartMemory = 8 << 20

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status  string                   `json:"status"`
	Uploads core.UploadLimiterStatus `json:"uploads"`
}

// handleRoot identifies the API.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, messageResponse{Message: "PDF to XLSX Converter API"})
}

// handleHealth reports whether the record store answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Uploads: s.service.UploadLimiterStatus()}
	status := http.StatusOK
	if err := s.service.Ping(r.Context()); err != nil {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, r, status, resp)
}

// handleUpload converts the PDF in the multipart field "file".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.service.MaxFileSize()
	if r.ContentLength > limit+multipartOverhead {
		s.respondError(w, r, core.ErrFileTooLarge(limit))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, core.ErrFileTooLarge(limit))
			return
		}
		s.respondError(w, r, core.ErrNoFile())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, core.ErrNoFile())
		return
	}
	defer file.Close()

	preview, err := s.service.Upload(withClient(r.Context(), r), header.Filename, header.Size, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, preview)
}

// handlePreview returns the first rows of a conversion.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	preview, err := s.service.Preview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, preview)
}

// handleDownload streams the conversion as a workbook attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	dl, err := s.service.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer dl.Close()

	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	http.ServeContent(w, r, dl.Filename, dl.ModTime, dl.File)
}

// handleDelete removes a conversion. Deleting twice succeeds twice.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(withClient(r.Context(), r), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, messageResponse{Message: "Archivo eliminado correctamente"})
}

// handleAPINotFound answers unknown API routes in the error format.
func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, r, core.ErrNotFound)
}
