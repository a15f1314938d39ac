package staging

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"slicerlink/internal/api"
	"slicerlink/internal/constants"
	"slicerlink/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// routes builds the chi router for the local provider. The upload, delete,
// and download routes mirror the remote file server's paths so clients built
// against that contract work unchanged against the local server.
func (l *LocalStager) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(l.requestIDMiddleware)
	r.Use(l.requestLoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", l.handleHealth)
	r.Post(constants.SlicerTempPath, l.handleUpload)
	r.Delete(constants.SlicerTempPath+"/{fileID}", l.handleDelete)
	r.Get(constants.FileContentPath+"/{fileID}", l.handleDownload)

	return r
}

// generateRequestID generates a random request ID using crypto/rand.
func generateRequestID() string {
	b := make([]byte, constants.RequestIDByteSize)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}

// requestIDMiddleware takes the request ID from the incoming header when
// present, generates one otherwise, and echoes it on the response.
func (l *LocalStager) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		requestID := strings.TrimSpace(req.Header.Get(constants.RequestIDHeader))
		if requestID == "" {
			requestID = generateRequestID()
		}

		w.Header().Set(constants.RequestIDHeader, requestID)
		ctx := logger.WithRequestID(req.Context(), requestID)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLoggingMiddleware logs incoming requests and their responses.
func (l *LocalStager) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		reqLogger := logger.DeriveRequestLogger(req.Context(), l.logger)
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		reqLogger.Info("processing incoming client request", "request", map[string]string{
			"method":     req.Method,
			"path":       req.URL.Path,
			"remoteAddr": req.RemoteAddr,
		})

		next.ServeHTTP(wrapped, req)
		duration := time.Since(start)

		reqLogger.Info("response sent to client", "response", map[string]any{
			"status":   wrapped.statusCode,
			"duration": duration.String(),
		})
	})
}

// writeJSONResponse writes a JSON response with the given status code.
func writeJSONResponse(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set(constants.ContentTypeHeader, "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorResponse writes a standardized JSON error response.
func writeErrorResponse(w http.ResponseWriter, statusCode int, message, details string) {
	writeJSONResponse(w, statusCode, api.ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// handleHealth returns a simple health check response.
func (l *LocalStager) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusOK, api.HealthResponse{
		Status:  "ok",
		Version: *constants.GetVersion(),
	})
}

// handleUpload stages the raw request body and responds with the share in
// the remote server's response shape.
func (l *LocalStager) handleUpload(w http.ResponseWriter, req *http.Request) {
	reqLogger := logger.DeriveRequestLogger(req.Context(), l.logger)
	defer func() {
		_ = req.Body.Close()
	}()

	filename := strings.TrimSpace(req.URL.Query().Get("filename"))
	if filename == "" {
		writeErrorResponse(w, http.StatusBadRequest, "invalid filename", "filename query parameter is required")
		return
	}

	data, err := io.ReadAll(req.Body)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "failed to read request body", err.Error())
		return
	}
	if len(data) == 0 {
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body", "request body is empty")
		return
	}

	e := l.newEntry(filename, req.Header.Get(constants.ContentTypeHeader), data)
	l.store.put(e)
	share := l.shareFor(e)

	reqLogger.Info("staged artifact via HTTP", "artifact", map[string]any{
		"fileID":   e.fileID,
		"filename": e.filename,
		"bodySize": len(e.data),
	})

	writeJSONResponse(w, http.StatusOK, api.StageResponse{
		Success:     true,
		DownloadURL: share.DownloadURL,
		ShareToken:  share.ShareToken,
		FileID:      share.FileID,
		ExpiresAt:   share.ExpiresAt.Format(time.RFC3339),
	})
}

// handleDelete removes a staged artifact by file ID.
func (l *LocalStager) handleDelete(w http.ResponseWriter, req *http.Request) {
	fileID := strings.TrimSpace(chi.URLParam(req, "fileID"))
	if fileID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "invalid fileID", "fileID is required")
		return
	}

	if !l.store.remove(fileID) {
		writeErrorResponse(w, http.StatusNotFound, "file not found",
			fmt.Sprintf("no staged file with ID %s", fileID))
		return
	}

	writeJSONResponse(w, http.StatusOK, api.DeleteResponse{
		Success: true,
		FileID:  fileID,
	})
}

// handleDownload serves the staged bytes when the share token matches.
// Expired entries are dropped on access, ahead of the periodic sweep.
func (l *LocalStager) handleDownload(w http.ResponseWriter, req *http.Request) {
	fileID := strings.TrimSpace(chi.URLParam(req, "fileID"))

	e, ok := l.store.get(fileID)
	if !ok {
		writeErrorResponse(w, http.StatusNotFound, "file not found", "file does not exist or has expired")
		return
	}

	if time.Now().UTC().After(e.expiresAt) {
		l.store.remove(fileID)
		writeErrorResponse(w, http.StatusNotFound, "file not found", "file does not exist or has expired")
		return
	}

	token := req.URL.Query().Get("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(e.token)) != 1 {
		writeErrorResponse(w, http.StatusForbidden, "invalid share token", "the token does not match this file")
		return
	}

	w.Header().Set(constants.ContentTypeHeader, e.contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(e.data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", e.filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(e.data)
}
