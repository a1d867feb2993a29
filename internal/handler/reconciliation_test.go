package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/rocjay1/bo-ledger/internal/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type viewResponse struct {
	reconcile.View
	Warnings []string `json:"warnings"`
}

func billLedger() (*MockDatabaseClient, *ledgerStore) {
	return newLedger(
		models.Entry{ID: "bill", Date: "2025-06-10", Amount: dec("350"), AccountID: "acc-1", CardID: "card-1", CategoryID: "exp-card", Description: "Fatura Visa",
			BillItems: []models.BillItem{
				{ID: "i1", Description: "Anuidade", Amount: dec("60"), CategoryID: "exp-9"},
				{ID: "i2", Description: "Estorno", Amount: dec("-10"), CategoryID: "exp-9"},
			}},
		models.Entry{ID: "p1", Date: "2025-06-01", Amount: dec("200"), AccountID: "card-1", CategoryID: "exp-3", Description: "Mercado"},
		models.Entry{ID: "p2", Date: "2025-06-01", Amount: dec("100"), AccountID: "card-1", CategoryID: "exp-3", Description: "Feira"},
		models.Entry{ID: "other", Date: "2025-06-01", Amount: dec("40"), AccountID: "card-2", CategoryID: "exp-3"},
	)
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) viewResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp viewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleReconciliation_Get(t *testing.T) {
	db, _ := billLedger()
	deps := testDeps(db)

	w := httptest.NewRecorder()
	deps.HandleReconciliation(w, httptest.NewRequest(http.MethodGet, "/api/bills/reconciliation?id=bill", nil))

	resp := decodeView(t, w)
	assert.Equal(t, "card-1", resp.CardID)
	assert.Len(t, resp.Detected, 2)
	assert.True(t, resp.ComposedTotal.Equal(dec("350")))
	assert.True(t, resp.Complete)
}

func TestHandleReconciliation_GetErrors(t *testing.T) {
	db, _ := billLedger()
	deps := testDeps(db)

	w := httptest.NewRecorder()
	deps.HandleReconciliation(w, httptest.NewRequest(http.MethodGet, "/api/bills/reconciliation", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	deps.HandleReconciliation(w, httptest.NewRequest(http.MethodGet, "/api/bills/reconciliation?id=missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A purchase is not a bill payment.
	w = httptest.NewRecorder()
	deps.HandleReconciliation(w, httptest.NewRequest(http.MethodGet, "/api/bills/reconciliation?id=p1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleReconciliation_PreviewDoesNotWrite(t *testing.T) {
	db, store := billLedger()
	deps := testDeps(db)

	body := `{"billId":"bill","manualItems":[{"description":"Anuidade","amount":"50","categoryId":"exp-9"}],
		"purchaseEdits":[{"entryId":"p1","description":"Mercado","amount":"210"}]}`
	w := httptest.NewRecorder()
	deps.HandleReconciliation(w, httptest.NewRequest(http.MethodPost, "/api/bills/reconciliation?preview=true", bytes.NewBufferString(body)))

	resp := decodeView(t, w)
	assert.True(t, resp.ComposedTotal.Equal(dec("360")))
	assert.True(t, resp.Difference.Equal(dec("-10")))
	assert.False(t, resp.Complete)
	assert.Empty(t, store.applied)
	assert.Len(t, store.entries[0].BillItems, 2)
}

func TestHandleReconciliation_Save(t *testing.T) {
	db, store := billLedger()
	deps := testDeps(db)

	body := `{"billId":"bill","manualItems":[{"description":"Anuidade","amount":"60","categoryId":"exp-9"},{"description":"Juros","amount":"-10","categoryId":"exp-9"}],
		"purchaseEdits":[{"entryId":"p2","description":"Feira livre","amount":"100"},{"entryId":"other","description":"x","amount":"1"}]}`
	w := httptest.NewRecorder()
	deps.HandleReconciliation(w, httptest.NewRequest(http.MethodPost, "/api/bills/reconciliation", bytes.NewBufferString(body)))

	resp := decodeView(t, w)
	assert.True(t, resp.Complete)
	assert.Len(t, resp.Warnings, 1)

	require.Len(t, store.applied, 1)
	assert.Len(t, store.applied[0], 2)
	assert.Equal(t, "Feira livre", store.entries[2].Description)
	assert.Equal(t, "2025-06-10", store.entries[2].Date)
	require.Len(t, store.entries[0].BillItems, 2)
	assert.NotEmpty(t, store.entries[0].BillItems[1].ID)
	assert.Equal(t, "2025-06-01", store.entries[3].Date)
}

func TestHandleReconciliation_PendingSign(t *testing.T) {
	db, store := billLedger()
	deps := testDeps(db)

	body := `{"billId":"bill","manualItems":[{"description":"Anuidade","amount":"50","categoryId":"exp-9"},{"description":"Estorno","categoryId":"exp-9"}],
		"itemInputs":["","-"]}`
	w := httptest.NewRecorder()
	deps.HandleReconciliation(w, httptest.NewRequest(http.MethodPost, "/api/bills/reconciliation?preview=true", bytes.NewBufferString(body)))
	resp := decodeView(t, w)
	assert.True(t, resp.ManualTotal.Equal(dec("50")))
	assert.Equal(t, []string{"50,00", ""}, resp.ItemInputs)

	w = httptest.NewRecorder()
	deps.HandleReconciliation(w, httptest.NewRequest(http.MethodPost, "/api/bills/reconciliation", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "manualItems[1].amount")
	assert.Empty(t, store.applied)

	body = `{"billId":"bill","manualItems":[{"description":"Anuidade","amount":"60","categoryId":"exp-9"},{"description":"Estorno","categoryId":"exp-9"}],
		"itemInputs":["","-1000"]}`
	w = httptest.NewRecorder()
	deps.HandleReconciliation(w, httptest.NewRequest(http.MethodPost, "/api/bills/reconciliation", bytes.NewBufferString(body)))
	resp = decodeView(t, w)
	assert.True(t, resp.Complete)
	require.Len(t, store.applied, 1)
	assert.True(t, store.entries[0].BillItems[1].Amount.Equal(dec("-10")))
}

func TestHandleReconciliation_EditOutsideBillMonth(t *testing.T) {
	db, store := billLedger()
	store.entries = append(store.entries, models.Entry{ID: "july", Date: "2025-07-01", Amount: dec("999"), AccountID: "card-1", CategoryID: "exp-3", Description: "Julho"})
	deps := testDeps(db)

	body := `{"billId":"bill","manualItems":[{"id":"i1","description":"Anuidade","amount":"60"},{"id":"i2","description":"Estorno","amount":"-10"}],
		"purchaseEdits":[{"entryId":"july","description":"moved","amount":"1"}]}`
	w := httptest.NewRecorder()
	deps.HandleReconciliation(w, httptest.NewRequest(http.MethodPost, "/api/bills/reconciliation", bytes.NewBufferString(body)))

	resp := decodeView(t, w)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "july")
	require.Len(t, store.applied, 1)
	assert.Len(t, store.applied[0], 1)
	assert.Equal(t, "2025-07-01", store.entries[4].Date)
	assert.Equal(t, "Julho", store.entries[4].Description)
}
