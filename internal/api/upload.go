package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/splitflow/splitflow/internal/job"
)

// Form field values are short; anything larger is hostile.
const maxFieldBytes = 1 << 10

const uploadChunkBytes = 256 * 1024

// splitHandler accepts the multipart submission: a "video" file plus the
// intro/outro/part/quality fields. Parts are consumed as a stream, so a
// multi-gigabyte upload never lands in memory.
//
// Both field orders are tolerated. When the cut fields precede the file,
// they are validated before the job exists and the body streams straight
// into the job's spool file with live upload percent. When the file comes
// first (as the stock web client sends it), it is spooled under a temporary
// name and validation still happens before any Job Record is created.
func splitHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// A declared oversize is rejected outright, before any Job Record
		// exists. MaxBytesReader backstops chunked bodies that lie.
		if r.ContentLength > cfg.MaxUploadBytes {
			WriteError(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit", "TOO_LARGE")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)

		mr, err := r.MultipartReader()
		if err != nil {
			WriteError(w, http.StatusBadRequest, "expected a multipart form upload", "BAD_REQUEST")
			return
		}

		var (
			fields    = make(map[string]string)
			filename  string
			spoolPath string
			jobID     string
			params    job.SplitParams
			validated bool
		)
		cleanupSpool := func() {
			if spoolPath != "" && jobID == "" {
				os.Remove(spoolPath)
			}
		}

		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				cleanupSpool()
				writeUploadError(w, err)
				return
			}

			if part.FormName() != "video" {
				value, err := readField(part)
				if err != nil {
					cleanupSpool()
					writeUploadError(w, err)
					return
				}
				fields[part.FormName()] = value
				continue
			}

			if spoolPath != "" {
				part.Close()
				continue // only the first file part counts
			}

			filename = part.FileName()
			if filename == "" {
				filename = "video.mp4"
			}

			if fieldsReady(fields) {
				// Fields arrived first: reject bad parameters before a
				// single file byte is accepted or a record created.
				params, err = job.NormalizeParams(fields["intro"], fields["outro"], fields["part"], fields["quality"])
				if err != nil {
					writeValidationError(w, err)
					return
				}
				validated = true

				snap, err := cfg.Controller.Create(r.Context(), filename)
				if err != nil {
					WriteError(w, http.StatusInternalServerError, "failed to create job", "INTERNAL_ERROR")
					return
				}
				jobID = snap.ID
				cfg.Controller.BeginUpload(jobID)
				spoolPath = filepath.Join(cfg.UploadsDir, jobID+spoolExt(filename))
			} else {
				spoolPath = filepath.Join(cfg.UploadsDir, "pending-"+job.NewID()+spoolExt(filename))
			}

			if err := spoolFile(cfg, part, spoolPath, jobID, r.ContentLength); err != nil {
				if jobID != "" {
					cfg.Controller.Fail(r.Context(), jobID, "upload interrupted")
				}
				os.Remove(spoolPath)
				writeUploadError(w, err)
				return
			}
		}

		if spoolPath == "" {
			WriteError(w, http.StatusBadRequest, "video file is required", "BAD_REQUEST")
			return
		}

		if !validated {
			params, err = job.NormalizeParams(fields["intro"], fields["outro"], fields["part"], fields["quality"])
			if err != nil {
				cleanupSpool()
				writeValidationError(w, err)
				return
			}

			snap, err := cfg.Controller.Create(r.Context(), filename)
			if err != nil {
				cleanupSpool()
				WriteError(w, http.StatusInternalServerError, "failed to create job", "INTERNAL_ERROR")
				return
			}
			jobID = snap.ID
			cfg.Controller.BeginUpload(jobID)

			// Adopt the already-spooled upload under the job's name.
			finalPath := filepath.Join(cfg.UploadsDir, jobID+spoolExt(filename))
			if err := os.Rename(spoolPath, finalPath); err == nil {
				spoolPath = finalPath
			}
		}

		cfg.Controller.StartProcessing(cfg.BaseContext, jobID, spoolPath, params)
		WriteJSON(w, http.StatusOK, SubmitResponse{JobID: jobID})
	}
}

// fieldsReady reports whether every cut parameter needed for validation has
// been seen. Quality is optional and defaults downstream.
func fieldsReady(fields map[string]string) bool {
	for _, name := range []string{"intro", "outro", "part"} {
		if _, ok := fields[name]; !ok {
			return false
		}
	}
	return true
}

func readField(part *multipart.Part) (string, error) {
	defer part.Close()
	value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(value)), nil
}

// spoolFile streams one multipart file part to disk. With a known job the
// received fraction is fed back as upload percent, using the request's
// Content-Length as the denominator (the multipart framing overhead skews it
// by a negligible amount).
func spoolFile(cfg ServerConfig, part *multipart.Part, path, jobID string, total int64) error {
	defer part.Close()

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	buf := make([]byte, uploadChunkBytes)
	var written int64
	for {
		n, rerr := part.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
			written += int64(n)
			if jobID != "" {
				cfg.Controller.ReportUploadProgress(jobID, written, total)
			}
		}
		if rerr == io.EOF {
			return out.Sync()
		}
		if rerr != nil {
			return rerr
		}
	}
}

func spoolExt(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" || len(ext) > 8 {
		return ".mp4"
	}
	return ext
}

func writeValidationError(w http.ResponseWriter, err error) {
	if job.IsValidation(err) {
		WriteError(w, http.StatusBadRequest, err.Error(), "VALIDATION")
		return
	}
	WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
}

func writeUploadError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		WriteError(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit", "TOO_LARGE")
		return
	}
	WriteError(w, http.StatusBadRequest, "malformed upload", "BAD_REQUEST")
}
