package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rocjay1/bo-ledger/internal/csvparse"
)

// invokeRequest represents the payload from Azure Functions Custom Handler.
type invokeRequest struct {
	Data     map[string]any `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// ProcessQueue imports an uploaded ledger CSV named by a queue message.
func (d *Dependencies) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var invokeReq invokeRequest
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read queue request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if err := json.Unmarshal(bodyBytes, &invokeReq); err != nil {
		slog.Error("failed to unmarshal queue request", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to unmarshal request")
		return
	}

	queueItemVal, ok := invokeReq.Data["queueItem"]
	if !ok {
		queueItemVal, ok = invokeReq.Data["queueitem"]
		if !ok {
			WriteError(w, http.StatusBadRequest, "Missing queueItem in Data")
			return
		}
	}
	queueItemStr, ok := queueItemVal.(string)
	if !ok {
		WriteError(w, http.StatusBadRequest, "queueItem is not a string")
		return
	}

	var queueData map[string]string
	if err := json.Unmarshal([]byte(queueItemStr), &queueData); err != nil {
		slog.Error("failed to unmarshal queueItem", "error", err)
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid queueItem JSON: %v", err))
		return
	}

	blobName := queueData["blob_name"]
	if blobName == "" {
		slog.Warn("queue message missing blob_name", "queue_data", queueData)
		WriteError(w, http.StatusBadRequest, "Missing blob_name")
		return
	}

	container := d.config().ImportContainer
	slog.Info("processing ledger import", "blob_name", blobName, "container", container)

	content, err := d.Blob.DownloadText(ctx, container, blobName)
	if err != nil {
		slog.Error("failed to download CSV from blob", "blob_name", blobName, "container", container, "error", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to download CSV: %v", err))
		return
	}

	rows, problems := csvparse.ParseCSV(content)
	slog.Info("parsed CSV content", "blob_name", blobName, "rows", len(rows), "errors_count", len(problems))

	if len(rows) == 0 {
		// Consume the message so it doesn't retry forever.
		d.reportImportErrors(ctx, blobName, problems)
		w.WriteHeader(http.StatusOK)
		return
	}

	snap, err := d.readSnapshot(ctx)
	if err != nil {
		writeFailure(w, "import entries", err)
		return
	}

	createdAt := d.now().UTC().Format(time.RFC3339)
	entries, unresolved := csvparse.ToEntries(rows, snap.Categories, snap.Accounts, uuid.NewString, createdAt)
	problems = append(problems, unresolved...)
	for i := range entries {
		if entries[i].CreatedBy == "" {
			entries[i].CreatedBy = queueData["created_by"]
		}
	}

	if len(entries) > 0 {
		if err := d.Database.CreateEntries(ctx, entries); err != nil {
			slog.Error("failed to save imported entries", "count", len(entries), "error", err)
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save entries: %v", err))
			return
		}
	}
	d.reportImportErrors(ctx, blobName, problems)

	slog.Info("ledger import complete", "blob_name", blobName, "imported", len(entries), "errors_count", len(problems))
	w.WriteHeader(http.StatusOK)
}

func (d *Dependencies) reportImportErrors(ctx context.Context, blobName string, problems []string) {
	if len(problems) == 0 {
		return
	}
	to := d.config().UserEmail
	if d.Email == nil || to == "" {
		slog.Warn("import errors not emailed", "blob_name", blobName, "errors_count", len(problems))
		return
	}
	if err := d.Email.SendErrorEmail(ctx, []string{to}, problems); err != nil {
		slog.Error("failed to send import error email", "blob_name", blobName, "error", err)
	}
}
