package handler

import (
	"net/http"

	"github.com/rocjay1/bo-ledger/internal/stats"
)

// HandleStats returns the aggregated totals for ?period=.
func (d *Dependencies) HandleStats(w http.ResponseWriter, r *http.Request) {
	period, err := stats.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeFailure(w, "get stats", err)
		return
	}
	snap, err := d.loadSnapshot(r.Context())
	if err != nil {
		writeFailure(w, "get stats", err)
		return
	}
	summary := stats.Aggregate(snap.Entries, snap.Categories, snap.Accounts, snap.Roles, period, d.now())
	WriteJSON(w, http.StatusOK, summary)
}

// HandleDrilldown lists what makes up one category's total for ?period=.
func (d *Dependencies) HandleDrilldown(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	if category == "" {
		WriteError(w, http.StatusBadRequest, "Missing category")
		return
	}
	period, err := stats.ParsePeriod(q.Get("period"))
	if err != nil {
		writeFailure(w, "get drilldown", err)
		return
	}
	snap, err := d.loadSnapshot(r.Context())
	if err != nil {
		writeFailure(w, "get drilldown", err)
		return
	}
	items := stats.Drilldown(snap.Entries, snap.Categories, snap.Accounts, snap.Roles, period, category, d.now())
	WriteJSON(w, http.StatusOK, items)
}

// HandleBalances returns the running balance of every active non-card account.
func (d *Dependencies) HandleBalances(w http.ResponseWriter, r *http.Request) {
	snap, err := d.loadSnapshot(r.Context())
	if err != nil {
		writeFailure(w, "get balances", err)
		return
	}
	WriteJSON(w, http.StatusOK, stats.Balances(snap.Accounts, snap.Entries))
}
