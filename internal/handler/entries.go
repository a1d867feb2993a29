package handler

import (
	"log/slog"
	"net/http"

	"github.com/rocjay1/bo-ledger/internal/cardtag"
	"github.com/rocjay1/bo-ledger/internal/installment"
)

// HandleEntries handles GET, POST and DELETE requests for ledger entries.
func (d *Dependencies) HandleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap, err := d.loadSnapshot(r.Context())
		if err != nil {
			writeFailure(w, "get entries", err)
			return
		}
		for i := range snap.Entries {
			snap.Entries[i].Description = cardtag.Strip(snap.Entries[i].Description)
		}
		WriteJSON(w, http.StatusOK, snap.Entries)

	case http.MethodPost:
		var intent installment.PurchaseIntent
		if !decodeBody(w, r, &intent) {
			return
		}
		snap, err := d.readSnapshot(r.Context())
		if err != nil {
			writeFailure(w, "create entries", err)
			return
		}

		x := installment.NewExpander(snap.Roles, d.config().TagCardIDs)
		x.Now = d.now
		entries, err := x.Expand(intent, snap.Accounts)
		if err != nil {
			writeFailure(w, "create entries", err)
			return
		}
		if err := d.Database.CreateEntries(r.Context(), entries); err != nil {
			writeFailure(w, "create entries", err)
			return
		}
		slog.Info("created entries", "count", len(entries), "account_id", intent.AccountID, "installments", intent.TotalInstallments)
		WriteJSON(w, http.StatusCreated, entries)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "Missing entry ID")
			return
		}
		if err := d.Database.DeleteEntry(r.Context(), id); err != nil {
			writeFailure(w, "delete entry", err)
			return
		}
		slog.Info("deleted entry", "id", id)
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandlePostpone moves an entry, and the installments after it, one month later.
func (d *Dependencies) HandlePostpone(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Missing entry ID")
		return
	}

	snap, err := d.loadSnapshot(r.Context())
	if err != nil {
		writeFailure(w, "postpone entry", err)
		return
	}
	patches, err := installment.Postpone(snap.Entries, id)
	if err != nil {
		writeFailure(w, "postpone entry", err)
		return
	}
	if err := d.Database.ApplyPatches(r.Context(), patches); err != nil {
		writeFailure(w, "postpone entry", err)
		return
	}
	slog.Info("postponed entry", "id", id, "moved", len(patches))
	WriteJSON(w, http.StatusOK, patches)
}
