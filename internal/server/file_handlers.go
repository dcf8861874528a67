package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"gatehouse/internal/auth"
	"gatehouse/internal/constants"
	"gatehouse/internal/services"
)

// uploadResponse is the wire shape of a successful upload.
type uploadResponse struct {
	Success      bool   `json:"success"`
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	Mimetype     string `json:"mimetype"`
	Checksum     string `json:"checksum"`
}

// handleUpload accepts one multipart file upload from an authenticated
// user and streams it to the storage backend.
// POST /api/upload
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed", constants.ErrCodeInvalidRequest)
		return
	}

	principal := auth.GetPrincipal(r)
	if err := s.app.Guard.RequireAuthenticated(principal); err != nil {
		s.handleServiceError(w, services.ErrAuthRequired)
		return
	}

	// MultipartReader streams parts without buffering the body. The
	// upload pipeline enforces the size cap on the stream itself.
	mr, err := r.MultipartReader()
	if err != nil {
		s.handleServiceError(w, services.ErrInvalidRequest)
		return
	}

	for {
		part, err := mr.NextPart()
		if err != nil {
			// No file field in the form.
			s.handleServiceError(w, services.ErrInvalidRequest)
			return
		}
		if part.FormName() != constants.FormFieldFile {
			part.Close()
			continue
		}

		result, err := s.app.UploadService.Upload(r.Context(), services.UploadRequest{
			Reader:       part,
			Filename:     part.FileName(),
			ContentType:  part.Header.Get(constants.HeaderContentType),
			DeclaredSize: declaredPartSize(part, r),
		})
		part.Close()
		if err != nil {
			s.handleServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusCreated, toUploadResponse(result))
		return
	}
}

// handleUploadMultiple accepts up to MaxFilesPerUpload files under the
// "files" field and runs each through the upload pipeline. One failing
// file fails the request; files already stored for it are removed so a
// failed request leaves nothing behind.
// POST /api/upload/multiple
func (s *Server) handleUploadMultiple(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed", constants.ErrCodeInvalidRequest)
		return
	}

	principal := auth.GetPrincipal(r)
	if err := s.app.Guard.RequireAuthenticated(principal); err != nil {
		s.handleServiceError(w, services.ErrAuthRequired)
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		s.handleServiceError(w, services.ErrInvalidRequest)
		return
	}

	var results []uploadResponse
	fail := func(failErr error) {
		// Best effort rollback of this request's stored objects
		for _, stored := range results {
			if delErr := s.app.Backend.Delete(r.Context(), stored.FileName); delErr != nil {
				s.logger.Warn("Upload: rollback of %s failed: %v", stored.FileName, delErr)
			}
		}
		s.handleServiceError(w, failErr)
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			fail(services.ErrInvalidRequest)
			return
		}
		if part.FormName() != constants.FormFieldFiles {
			part.Close()
			continue
		}
		if len(results) >= constants.MaxFilesPerUpload {
			part.Close()
			fail(services.ErrInvalidRequest)
			return
		}

		result, err := s.app.UploadService.Upload(r.Context(), services.UploadRequest{
			Reader:       part,
			Filename:     part.FileName(),
			ContentType:  part.Header.Get(constants.HeaderContentType),
			DeclaredSize: declaredPartSize(part, r),
		})
		part.Close()
		if err != nil {
			fail(err)
			return
		}
		results = append(results, toUploadResponse(result))
	}

	if len(results) == 0 {
		s.handleServiceError(w, services.ErrInvalidRequest)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"files":   results,
	})
}

func toUploadResponse(result *services.UploadResult) uploadResponse {
	return uploadResponse{
		Success:      true,
		FileName:     result.StorageKey,
		OriginalName: result.OriginalName,
		URL:          result.PublicURL,
		Size:         result.Size,
		Mimetype:     result.ContentType,
		Checksum:     result.Checksum,
	}
}

// declaredPartSize returns the best available declared size for a part:
// the part's own Content-Length when the client sent one, otherwise the
// request Content-Length minus a framing allowance. Either way this is
// only the early-reject hint; the stream cap is authoritative.
func declaredPartSize(part *multipart.Part, r *http.Request) int64 {
	if cl := part.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n >= 0 {
			return n
		}
	}
	if r.ContentLength <= constants.MultipartOverheadBytes {
		return 0
	}
	return r.ContentLength - constants.MultipartOverheadBytes
}

// handleFileStats returns per-bucket storage statistics.
// GET /api/files/stats (admin)
func (s *Server) handleFileStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed", constants.ErrCodeInvalidRequest)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	stats, err := s.app.FileService.Stats(r.Context())
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"success": true, "stats": stats})
}

// handleFileCleanup runs the orphan sweep: objects not referenced by any
// resource are deleted, referenced objects are untouched.
// POST /api/files/cleanup (admin)
func (s *Server) handleFileCleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed", constants.ErrCodeInvalidRequest)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	result, err := s.app.FileService.Sweep(r.Context())
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"success": true, "result": result})
}

// handleFileRoutes dispatches /api/files/{bucket}/{name}.
// DELETE /api/files/{bucket}/{name} (admin)
func (s *Server) handleFileRoutes(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/files/")
	if key == "" {
		s.handleServiceError(w, services.ErrInvalidRequest)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		if !s.requireAdmin(w, r) {
			return
		}
		if err := s.app.FileService.Delete(r.Context(), key); err != nil {
			s.handleServiceError(w, err)
			return
		}
		if err := s.app.Refs.RemoveReference(key); err != nil {
			s.logger.Warn("Files: failed to drop reference for %s: %v", key, err)
		}
		WriteSuccess(w, map[string]interface{}{"success": true})
	default:
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed", constants.ErrCodeInvalidRequest)
	}
}

// requireAdmin enforces the admin guard and writes the error response on
// failure. Returns true when the request may proceed.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	err := s.app.Guard.RequireAdmin(auth.GetPrincipal(r))
	switch err {
	case nil:
		return true
	case auth.ErrUnauthenticated:
		s.handleServiceError(w, services.ErrAuthRequired)
	default:
		s.handleServiceError(w, services.ErrAuthForbidden)
	}
	return false
}
