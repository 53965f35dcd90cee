package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/dmitrijs2005/filekeeper/internal/common"
)

// writeJSON serializes v with the given status. Encoding failures at this
// point can only be logged: the status line is already gone.
func (s *HTTPServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(r.Context(), "response encode failed", "error", err.Error())
	}
}

// writeError translates a service error into the stable {code, message}
// failure payload. Client-caused conditions map to 4xx so callers can
// retry appropriately; anything outside the taxonomy is an IO failure
// and maps to 500.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, common.ErrorNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrorInvalidUser):
		status, code = http.StatusNotFound, "invalid_user"
	case errors.Is(err, common.ErrorAlreadyExists):
		status, code = http.StatusConflict, "already_exists"
	case errors.Is(err, common.ErrorPathEscape):
		status, code = http.StatusBadRequest, "path_escape"
	case errors.Is(err, common.ErrorInvalidName):
		status, code = http.StatusBadRequest, "invalid_name"
	case errors.Is(err, common.ErrorUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	default:
		status, code = http.StatusInternalServerError, "io_failure"
		s.logger.Error(r.Context(), "internal error", "error", err.Error())
		err = common.ErrorInternal // do not leak internals to the client
	}

	s.writeJSON(w, r, status, errorResponse{Code: code, Message: err.Error()})
}

func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid JSON body"})
		return false
	}
	return true
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, []byte(req.Password))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "registered", "username", user.UserName)
	s.writeJSON(w, r, http.StatusCreated, messageResponse{Message: "user " + user.UserName + " registered"})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	ok, err := s.users.Verify(r.Context(), req.Username, []byte(req.Password))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Code: "unauthorized", Message: "wrong password"})
		return
	}

	s.writeJSON(w, r, http.StatusOK, messageResponse{Message: "login successful"})
}

func (s *HTTPServer) handleList(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	relPath := r.URL.Query().Get("path")

	l, err := s.files.List(r.Context(), username, relPath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, listResponse{Folders: l.Folders, Files: l.Files})
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeJSON(w, r, http.StatusRequestEntityTooLarge,
				errorResponse{Code: "too_large", Message: "file exceeds the upload limit"})
			return
		}
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Code: "no_file", Message: "no file in request"})
		return
	}
	defer file.Close()

	username := r.FormValue("username")
	relPath := r.FormValue("path")
	name := path.Base(header.Filename)

	n, err := s.files.SaveUpload(r.Context(), username, relPath, name, file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "uploaded", "username", username, "name", name, "bytes", n)
	s.writeJSON(w, r, http.StatusCreated, uploadResponse{
		Message: "file uploaded",
		Name:    name,
		Size:    n,
		Path:    relPath,
	})
}

func (s *HTTPServer) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.files.CreateFolder(r.Context(), req.Username, req.Path, req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusCreated, messageResponse{Message: "folder " + req.Name + " created"})
}

func (s *HTTPServer) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.files.DeleteFile(r.Context(), req.Username, req.Path, req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, messageResponse{Message: "file " + req.Name + " deleted"})
}

func (s *HTTPServer) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.files.DeleteFolder(r.Context(), req.Username, req.Path, req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, messageResponse{Message: "folder " + req.Name + " deleted"})
}

func (s *HTTPServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	username := q.Get("username")
	relPath := q.Get("path")
	name := q.Get("name")

	f, size, err := s.files.OpenDownload(r.Context(), username, relPath, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// closed on every exit path, including a client abort mid-copy
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))

	if _, err := io.Copy(w, f); err != nil {
		// headers are already written; nothing to send, just record it
		s.logger.Warn(r.Context(), "download aborted", "username", username, "name", name, "error", err.Error())
	}
}

// withLogging logs one line per request with the resulting status.
func (s *HTTPServer) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
