package handler

import (
	"log/slog"
	"net/http"

	filesvc "minote/internal/domain/services/file"
	"minote/internal/httputil"
)

// FileHandler handles uploaded-file HTTP requests
type FileHandler struct {
	fileService filesvc.Service
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService filesvc.Service, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// IssueUploadURL hands out a presigned PUT URL for a direct upload
// POST /api/files/upload-url
func (h *FileHandler) IssueUploadURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileName string `json:"file_name"`
		FileType string `json:"file_type"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticket, err := h.fileService.IssueUploadURL(r.Context(), httputil.CallerID(r), req.FileName, req.FileType)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ticket)
}

// SaveFile persists metadata after the client finished uploading
// POST /api/files
func (h *FileHandler) SaveFile(w http.ResponseWriter, r *http.Request) {
	var req filesvc.SaveFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.CallerID(r)

	file, err := h.fileService.SaveFile(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// ListFiles returns the caller's files with fresh signed URLs
// GET /api/files
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.fileService.ListFiles(r.Context(), httputil.CallerID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// ResolveURL returns a signed retrieval URL. This route is public; the
// file ID alone is the capability.
// GET /api/files/{id}/url
func (h *FileHandler) ResolveURL(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	url, err := h.fileService.ResolveURL(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// DeleteFile removes a file's object and metadata
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), id, httputil.CallerID(r)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
