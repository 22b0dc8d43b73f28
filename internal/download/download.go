// Package download serves produced clips and zip bundles out of the output
// tree. Responses honour HTTP Range requests so browsers can seek inside a
// part without pulling the whole file.
package download

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type Server struct {
	root   string
	logger *slog.Logger
}

func NewServer(root string, logger *slog.Logger) *Server {
	return &Server{root: root, logger: logger}
}

// Root is the directory artifacts are served from.
func (s *Server) Root() string {
	return s.root
}

// ServeArtifact streams <root>/<jobID>/<name>. Both path elements must be
// plain names; anything that could climb out of the output tree is a 404.
func (s *Server) ServeArtifact(w http.ResponseWriter, r *http.Request, jobID, name string) error {
	if !safeName(jobID) || !safeName(name) {
		http.Error(w, "file not found", http.StatusNotFound)
		return nil
	}

	path := filepath.Join(s.root, jobID, name)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "file not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat artifact: %w", err)
	}

	size := stat.Size()
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	byteRange, err := parseRange(r.Header.Get("Range"), size)
	if err == errUnsatisfiable {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	}
	if err == errInvalidRange {
		// Malformed Range headers fall back to a full response.
		byteRange = nil
	}

	if byteRange == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		io.Copy(w, file)
		return nil
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", byteRange.length()))
	w.Header().Set("Content-Range", byteRange.contentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := file.Seek(byteRange.start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	io.CopyN(w, file, byteRange.length())
	return nil
}

// safeName accepts a single path element: no separators, no traversal.
func safeName(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`)
}
