package web

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Macora01/pdftoexcl/internal/web/templates"
)

// frontend serves FRONTEND_DIR when it holds a build, falling back to
// index.html for client-side routes. Without one it serves the built-in
// upload page at "/" only.
func (s *Server) frontend() http.HandlerFunc {
	dir := s.cfg.Server.FrontendDir
	if dir != "" {
		if _, err := os.Stat(filepath.Join(dir, "index.html")); err == nil {
			slog.Info("serving frontend", "dir", dir)
			return spaHandler(dir)
		}
		slog.Warn("frontend directory has no index.html, using built-in page", "dir", dir)
	}

	maxSize := humanize.IBytes(uint64(s.service.MaxFileSize()))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.Index(maxSize).Render(r.Context(), w); err != nil {
			slog.Error("render index", "error", err)
		}
	}
}

func spaHandler(dir string) http.HandlerFunc {
	root := os.DirFS(dir)
	files := http.FileServerFS(root)
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}
		if _, err := fs.Stat(root, name); errors.Is(err, fs.ErrNotExist) {
			http.ServeFileFS(w, r, root, "index.html")
			return
		}
		files.ServeHTTP(w, r)
	}
}
