package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/rocjay1/bo-ledger/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nightlyLedger() (*MockDatabaseClient, *ledgerStore) {
	return newLedger(
		models.Entry{ID: "m1", Date: "2025-06-01", Amount: dec("120"), AccountID: "card-2", CategoryID: "exp-3", Kind: models.KindExpense},
		models.Entry{ID: "m2", Date: "2025-06-01", Amount: dec("30.50"), AccountID: "card-2", CategoryID: "exp-3", Kind: models.KindExpense},
		models.Entry{ID: "m3", Date: "2025-07-01", Amount: dec("999"), AccountID: "card-2", CategoryID: "exp-3", Kind: models.KindExpense},
		models.Entry{ID: "v1", Date: "2025-06-01", Amount: dec("80"), AccountID: "card-1", CategoryID: "exp-3", Kind: models.KindExpense},
		models.Entry{ID: "orphan", CreatedAt: "2025-06-11T08:00:00Z", Amount: dec("5"), AccountID: "card-1", CategoryID: "exp-3"},
	)
}

func TestHandleNightlyTrigger_Success(t *testing.T) {
	db, store := nightlyLedger()
	mockBlob := &MockBlobClient{}
	mockEmail := &MockEmailClient{}
	deps := testDeps(db)
	deps.Blob = mockBlob
	deps.Email = mockEmail

	var backedUp string
	mockBlob.UploadJSONFunc = func(ctx context.Context, containerName, blobName string, v any) error {
		assert.Equal(t, "backups", containerName)
		backedUp = blobName
		return nil
	}
	pruned := false
	mockBlob.PruneBlobsFunc = func(ctx context.Context, containerName, prefix string, keep int) (int, error) {
		pruned = true
		assert.Equal(t, "snapshots/", prefix)
		assert.Equal(t, 30, keep)
		return 1, nil
	}

	var subjects []string
	mockEmail.SendEmailFunc = func(ctx context.Context, to []string, subject, body string) error {
		assert.Equal(t, []string{"familia@example.com"}, to)
		assert.Contains(t, body, "150,50")
		subjects = append(subjects, subject)
		return nil
	}
	mockEmail.SendDigestEmailFunc = func(ctx context.Context, recipients []string, summary *stats.PeriodStats) error {
		t.Fatal("digest is only sent on the first of the month")
		return nil
	}

	w := httptest.NewRecorder()
	deps.HandleNightlyTrigger(w, httptest.NewRequest(http.MethodPost, "/NightlyTrigger", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "snapshots/2025-06-20.json", backedUp)
	assert.True(t, pruned)
	assert.Equal(t, []string{"BO Ledger - Fatura Master fecha em 3 dias"}, subjects)

	// The orphan was healed before anything else ran.
	require.Len(t, store.updated, 1)
	assert.Equal(t, "2025-06-11", *store.updated[0].Date)
}

func TestHandleNightlyTrigger_MonthlyDigest(t *testing.T) {
	db, _ := nightlyLedger()
	deps := testDeps(db)
	deps.Blob = &MockBlobClient{}
	deps.Now = func() time.Time { return time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC) }

	var digest *stats.PeriodStats
	deps.Email = &MockEmailClient{
		SendEmailFunc: func(ctx context.Context, to []string, subject, body string) error {
			t.Fatalf("unexpected reminder %q", subject)
			return nil
		},
		SendDigestEmailFunc: func(ctx context.Context, recipients []string, summary *stats.PeriodStats) error {
			digest = summary
			return nil
		},
	}

	w := httptest.NewRecorder()
	deps.HandleNightlyTrigger(w, httptest.NewRequest(http.MethodPost, "/NightlyTrigger", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, digest)
	assert.Equal(t, "2025-06", digest.Period)
	assert.True(t, digest.TotalExpense.Equal(dec("235.50")), digest.TotalExpense.String())
}

func TestHandleNightlyTrigger_NoEmailConfigured(t *testing.T) {
	db, _ := nightlyLedger()
	backedUp := false
	deps := testDeps(db)
	deps.Config.UserEmail = ""
	deps.Blob = &MockBlobClient{
		UploadJSONFunc: func(ctx context.Context, containerName, blobName string, v any) error {
			backedUp = true
			return nil
		},
	}
	deps.Email = &MockEmailClient{
		SendEmailFunc: func(ctx context.Context, to []string, subject, body string) error {
			t.Fatal("no email should be sent")
			return nil
		},
	}

	w := httptest.NewRecorder()
	deps.HandleNightlyTrigger(w, httptest.NewRequest(http.MethodPost, "/NightlyTrigger", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, backedUp)
}

func TestHandleNightlyTrigger_BackupFailureContinues(t *testing.T) {
	db, _ := nightlyLedger()
	sent := 0
	deps := testDeps(db)
	deps.Blob = &MockBlobClient{
		UploadJSONFunc: func(ctx context.Context, containerName, blobName string, v any) error {
			return errors.New("storage down")
		},
	}
	deps.Email = &MockEmailClient{
		SendEmailFunc: func(ctx context.Context, to []string, subject, body string) error {
			sent++
			return nil
		},
	}

	w := httptest.NewRecorder()
	deps.HandleNightlyTrigger(w, httptest.NewRequest(http.MethodPost, "/NightlyTrigger", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, sent)
}

func TestHandleNightlyTrigger_LoadError(t *testing.T) {
	deps := testDeps(&MockDatabaseClient{
		ListEntriesFunc: func(ctx context.Context) ([]models.Entry, error) {
			return nil, errors.New("table unavailable")
		},
	})

	w := httptest.NewRecorder()
	deps.HandleNightlyTrigger(w, httptest.NewRequest(http.MethodPost, "/NightlyTrigger", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestClosingDayIn(t *testing.T) {
	card := &models.Account{IsCreditCard: true, ClosingDay: 30}
	assert.Equal(t, 28, closingDayIn(card, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30, closingDayIn(card, time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)))
}
