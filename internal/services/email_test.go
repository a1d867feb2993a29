package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/rocjay1/bo-ledger/internal/stats"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCredential implements azcore.TokenCredential for testing.
type MockCredential struct{}

func (m *MockCredential) GetToken(ctx context.Context, options policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{
		Token:     "mock-token",
		ExpiresOn: time.Now().Add(1 * time.Hour),
	}, nil
}

func TestEmailService_SendEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails:send", r.URL.Path)
		assert.Equal(t, "Bearer mock-token", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var req emailRequest
		require.NoError(t, json.Unmarshal(body, &req))

		assert.Equal(t, "sender@test.com", req.SenderAddress)
		require.Len(t, req.Recipients.To, 1)
		assert.Equal(t, "recipient@test.com", req.Recipients.To[0].Address)
		assert.Equal(t, "Test Subject", req.Content.Subject)

		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	service, err := NewEmailService(server.URL, "sender@test.com", &MockCredential{})
	require.NoError(t, err)

	err = service.SendEmail(context.Background(), []string{"recipient@test.com"}, "Test Subject", "Test Body")
	assert.NoError(t, err)
}

func TestEmailService_SendEmail_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Error"))
	}))
	defer server.Close()

	service, err := NewEmailService(server.URL, "sender@test.com", &MockCredential{})
	require.NoError(t, err)

	err = service.SendEmail(context.Background(), []string{"recipient@test.com"}, "Sub", "Body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestNewEmailService_RequiresSettings(t *testing.T) {
	_, err := NewEmailService("", "sender@test.com", &MockCredential{})
	assert.Error(t, err)

	_, err = NewEmailService("https://acs.example.com", "", &MockCredential{})
	assert.Error(t, err)
}

func TestEmailService_SendDigestEmail(t *testing.T) {
	var subject string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req emailRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		subject = req.Content.Subject
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	service, err := NewEmailService(server.URL, "sender@test.com", &MockCredential{})
	require.NoError(t, err)

	err = service.SendDigestEmail(context.Background(), []string{"family@test.com"}, &stats.PeriodStats{Period: "2025-06", Pace: stats.PaceStable})
	require.NoError(t, err)
	assert.Equal(t, "BO Ledger - Resumo 2025-06", subject)
}

func TestRenderErrorBody(t *testing.T) {
	body := RenderErrorBody([]string{"Row 3: unknown category \"<Lazer>\""})
	assert.Contains(t, body, "Row 3")
	assert.Contains(t, body, "&lt;Lazer&gt;")
	assert.Equal(t, "", RenderErrorSection(nil))
}

func TestRenderDigestBody(t *testing.T) {
	s := &stats.PeriodStats{
		Period:       "2025-06",
		Start:        "2025-06-01",
		End:          "2025-06-30",
		TotalIncome:  decimal.RequireFromString("5000"),
		TotalExpense: decimal.RequireFromString("1234.5"),
		Balance:      decimal.RequireFromString("3765.5"),
		Pace:         stats.PaceAbove,
		ExpenseByCategory: []stats.CategoryTotal{
			{Name: "Mercado", Amount: decimal.RequireFromString("1000"), CumulativeShare: decimal.RequireFromString("81.01")},
			{Name: "Farmácia", Amount: decimal.RequireFromString("234.5"), CumulativeShare: decimal.NewFromInt(100)},
		},
	}

	body := RenderDigestBody(s)
	assert.Contains(t, body, "R$ 1.234,50")
	assert.Contains(t, body, "Acima da média")
	assert.Contains(t, body, "Mercado")
	assert.Less(t, strings.Index(body, "Mercado"), strings.Index(body, "Farmácia"))
}
