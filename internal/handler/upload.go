package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
)

// HandleUpload stores an uploaded ledger CSV and queues it for import.
func (d *Dependencies) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		slog.Warn("upload attempt with invalid method", "method", r.Method, "path", r.URL.Path)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// 10MB limit
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		slog.Warn("failed to parse multipart form", "error", err, "max_size_mb", 10)
		WriteError(w, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Warn("failed to get file from form", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read uploaded file", "filename", header.Filename, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	cfg := d.config()
	filename := filepath.Base(header.Filename)
	blobName := fmt.Sprintf("%s-%s", d.now().Format("20060102-150405"), filename)

	if err := d.Blob.UploadText(r.Context(), cfg.ImportContainer, blobName, string(data)); err != nil {
		slog.Error("failed to upload blob", "blob_name", blobName, "container", cfg.ImportContainer, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to upload blob: "+err.Error())
		return
	}

	msg := map[string]string{
		"blob_name": blobName,
		"filename":  filename,
	}
	if by := r.FormValue("createdBy"); by != "" {
		msg["created_by"] = by
	}

	if err := d.Queue.EnqueueMessage(r.Context(), cfg.ImportQueue, msg); err != nil {
		slog.Error("failed to enqueue message", "queue", cfg.ImportQueue, "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to enqueue message: "+err.Error())
		return
	}
	slog.Info("queued ledger import", "queue", cfg.ImportQueue, "blob_name", blobName, "size_bytes", len(data))

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"blobName": blobName,
	})
}
