package handler

import (
	"log/slog"
	"net/http"

	"github.com/rocjay1/bo-ledger/internal/reconcile"
)

// reconciliationResponse is a bill view plus the edits that were dropped.
type reconciliationResponse struct {
	*reconcile.View
	Warnings []string `json:"warnings,omitempty"`
}

// HandleReconciliation returns a bill's reconciliation view on GET. On POST
// it previews a reconcile command with ?preview=true, or saves it.
func (d *Dependencies) HandleReconciliation(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		id := r.URL.Query().Get("id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "Missing bill ID")
			return
		}
		snap, err := d.loadSnapshot(r.Context())
		if err != nil {
			writeFailure(w, "reconcile bill", err)
			return
		}
		bill, err := reconcile.FindBill(snap.Entries, id)
		if err != nil {
			writeFailure(w, "reconcile bill", err)
			return
		}
		view, err := reconcile.Reconcile(bill, snap.Entries)
		if err != nil {
			writeFailure(w, "reconcile bill", err)
			return
		}
		WriteJSON(w, http.StatusOK, reconciliationResponse{View: view})

	case http.MethodPost:
		var draft reconcile.Draft
		if !decodeBody(w, r, &draft) {
			return
		}
		if draft.BillID == "" {
			draft.BillID = r.URL.Query().Get("id")
		}
		preview := r.URL.Query().Get("preview") == "true"
		cmd, err := draft.Resolve(!preview)
		if err != nil {
			writeFailure(w, "reconcile bill", err)
			return
		}
		if preview {
			d.previewReconciliation(w, r, cmd)
			return
		}
		d.saveReconciliation(w, r, cmd)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (d *Dependencies) previewReconciliation(w http.ResponseWriter, r *http.Request, cmd reconcile.Command) {
	snap, err := d.loadSnapshot(r.Context())
	if err != nil {
		writeFailure(w, "preview reconciliation", err)
		return
	}
	bill, err := reconcile.FindBill(snap.Entries, cmd.BillID)
	if err != nil {
		writeFailure(w, "preview reconciliation", err)
		return
	}
	view, errs, err := reconcile.Preview(bill, snap.Entries, cmd)
	if err != nil {
		writeFailure(w, "preview reconciliation", err)
		return
	}
	WriteJSON(w, http.StatusOK, reconciliationResponse{View: view, Warnings: messages(errs)})
}

func (d *Dependencies) saveReconciliation(w http.ResponseWriter, r *http.Request, cmd reconcile.Command) {
	ctx := r.Context()
	snap, err := d.loadSnapshot(ctx)
	if err != nil {
		writeFailure(w, "save reconciliation", err)
		return
	}
	bill, err := reconcile.FindBill(snap.Entries, cmd.BillID)
	if err != nil {
		writeFailure(w, "save reconciliation", err)
		return
	}
	patches, errs := cmd.Patches(bill, snap.Entries)
	if patches == nil {
		writeFailure(w, "save reconciliation", errs[0])
		return
	}
	for _, e := range errs {
		slog.Warn("reconcile edit dropped", "bill_id", bill.ID, "error", e)
	}

	if err := d.Database.ApplyPatches(ctx, patches); err != nil {
		writeFailure(w, "save reconciliation", err)
		return
	}
	slog.Info("saved reconciliation", "bill_id", bill.ID, "manual_items", len(cmd.ManualItems), "edits", len(patches)-1)

	after, err := d.readSnapshot(ctx)
	if err != nil {
		writeFailure(w, "save reconciliation", err)
		return
	}
	saved, err := reconcile.FindBill(after.Entries, bill.ID)
	if err != nil {
		writeFailure(w, "save reconciliation", err)
		return
	}
	view, err := reconcile.Reconcile(saved, after.Entries)
	if err != nil {
		writeFailure(w, "save reconciliation", err)
		return
	}
	WriteJSON(w, http.StatusOK, reconciliationResponse{View: view, Warnings: messages(errs)})
}

func messages(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
