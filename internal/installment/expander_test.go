package installment

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rocjay1/bo-ledger/internal/cardtag"
	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testRoles    = models.Roles{CardPaymentID: "exp-card", TransferID: "exp-10"}
	testAccounts = []models.Account{
		{ID: "acc-1", Name: "Banco do Brasil", IsActive: true},
		{ID: "acc-2", Name: "Bradesco", IsActive: true},
		{ID: "card-1", Name: "Visa Infinite", IsActive: true, IsCreditCard: true, ClosingDay: 5},
	}
)

func newTestExpander(tag bool) *Expander {
	n := 0
	x := NewExpander(testRoles, tag)
	x.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	x.Now = func() time.Time { return time.Date(2025, 5, 20, 15, 4, 5, 0, time.UTC) }
	return x
}

func TestExpand_Single(t *testing.T) {
	x := newTestExpander(false)
	entries, err := x.Expand(PurchaseIntent{
		Date:              "2025-05-05",
		Amount:            decimal.RequireFromString("89.90"),
		Description:       "Mercado",
		CategoryID:        "exp-3",
		AccountID:         "card-1",
		TotalInstallments: 1,
		CreatedBy:         "Tico",
	}, testAccounts)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "2025-06-01", e.Date)
	assert.Equal(t, "2025-05-20T15:04:05Z", e.CreatedAt)
	assert.Equal(t, "Mercado", e.Description)
	assert.Equal(t, "", e.InstallmentGroupID)
	assert.Equal(t, 1, e.InstallmentNumber)
	assert.Equal(t, 1, e.TotalInstallments)
	assert.Equal(t, models.KindExpense, e.Kind)
	assert.Equal(t, "Tico", e.CreatedBy)
}

func TestExpand_Installments(t *testing.T) {
	x := newTestExpander(false)
	entries, err := x.Expand(PurchaseIntent{
		Date:              "2025-01-04",
		Amount:            decimal.NewFromInt(300),
		Description:       "Geladeira",
		CategoryID:        "exp-4",
		AccountID:         "card-1",
		Kind:              models.KindExpense,
		TotalInstallments: 3,
	}, testAccounts)

	require.NoError(t, err)
	require.Len(t, entries, 3)

	wantDates := []string{"2025-01-01", "2025-02-01", "2025-03-01"}
	groupID := entries[0].InstallmentGroupID
	assert.NotEmpty(t, groupID)
	for i, e := range entries {
		assert.Equal(t, wantDates[i], e.Date)
		assert.Equal(t, groupID, e.InstallmentGroupID)
		assert.Equal(t, i+1, e.InstallmentNumber)
		assert.Equal(t, 3, e.TotalInstallments)
		assert.True(t, e.Amount.Equal(decimal.NewFromInt(300)), "amount is repeated, not divided")
		assert.True(t, strings.HasSuffix(e.Description, fmt.Sprintf("(%d/3)", i+1)), e.Description)
		assert.Equal(t, "card-1", e.AccountID)
		assert.Equal(t, "exp-4", e.CategoryID)
	}
}

func TestExpand_ConsecutiveMonthsForAnyCount(t *testing.T) {
	x := newTestExpander(false)
	for n := 2; n <= 24; n++ {
		entries, err := x.Expand(PurchaseIntent{
			Date: "2025-11-10", Amount: decimal.NewFromInt(10), CategoryID: "exp-1",
			AccountID: "card-1", TotalInstallments: n,
		}, testAccounts)
		require.NoError(t, err)
		require.Len(t, entries, n)

		first, _ := time.Parse("2006-01-02", entries[0].Date)
		assert.Equal(t, "2025-12-01", entries[0].Date)
		for i, e := range entries {
			want := first.AddDate(0, i, 0).Format("2006-01-02")
			assert.Equal(t, want, e.Date)
			assert.Equal(t, fmt.Sprintf("(%d/%d)", i+1, n), e.Description)
		}
	}
}

func TestExpand_CardPaymentTagging(t *testing.T) {
	intent := PurchaseIntent{
		Date: "2025-05-10", Amount: decimal.NewFromInt(1200), Description: "Fatura",
		CategoryID: "exp-card", AccountID: "acc-1", CardID: "card-1", TotalInstallments: 1,
	}

	entries, err := newTestExpander(false).Expand(intent, testAccounts)
	require.NoError(t, err)
	assert.Equal(t, "Fatura", entries[0].Description)
	assert.Equal(t, "card-1", entries[0].CardID)
	assert.Equal(t, "2025-05-10", entries[0].Date, "bank account dates are not moved")

	entries, err = newTestExpander(true).Expand(intent, testAccounts)
	require.NoError(t, err)
	id, ok := cardtag.Extract(entries[0].Description)
	assert.True(t, ok)
	assert.Equal(t, "card-1", id)
	assert.Equal(t, "Fatura", cardtag.Strip(entries[0].Description))
}

func TestExpand_Transfer(t *testing.T) {
	entries, err := newTestExpander(false).Expand(PurchaseIntent{
		Date: "2025-05-10", Amount: decimal.NewFromInt(500), Description: "Reserva",
		CategoryID: "exp-10", AccountID: "acc-1", DestinationAccountID: "acc-2", TotalInstallments: 1,
	}, testAccounts)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.KindExpense, entries[0].Kind)
	assert.Equal(t, "acc-1", entries[0].AccountID)
	assert.Equal(t, models.KindIncome, entries[1].Kind)
	assert.Equal(t, "acc-2", entries[1].AccountID)
	assert.Equal(t, "exp-10", entries[1].CategoryID)
	assert.Equal(t, "[TRANSFERÊNCIA] Reserva", entries[1].Description)
	assert.Equal(t, "2025-05-10", entries[1].Date)
}

func TestExpand_BillItemsGetIDs(t *testing.T) {
	entries, err := newTestExpander(false).Expand(PurchaseIntent{
		Date: "2025-05-10", Amount: decimal.NewFromInt(100), CategoryID: "exp-card",
		AccountID: "acc-1", CardID: "card-1", TotalInstallments: 1,
		BillItems: []models.BillItem{{Description: "Anuidade", Amount: decimal.NewFromInt(20), CategoryID: "exp-9"}},
	}, testAccounts)

	require.NoError(t, err)
	require.Len(t, entries[0].BillItems, 1)
	assert.NotEmpty(t, entries[0].BillItems[0].ID)
}

func TestExpand_ValidationErrors(t *testing.T) {
	valid := PurchaseIntent{
		Date: "2025-05-10", Amount: decimal.NewFromInt(10), CategoryID: "exp-1",
		AccountID: "acc-1", TotalInstallments: 1,
	}

	tests := []struct {
		name   string
		mutate func(*PurchaseIntent)
		field  string
	}{
		{"zero amount", func(p *PurchaseIntent) { p.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(p *PurchaseIntent) { p.Amount = decimal.NewFromInt(-3) }, "amount"},
		{"missing category", func(p *PurchaseIntent) { p.CategoryID = "" }, "categoryId"},
		{"missing account", func(p *PurchaseIntent) { p.AccountID = " " }, "accountId"},
		{"zero installments", func(p *PurchaseIntent) { p.TotalInstallments = 0 }, "totalInstallments"},
		{"bad date", func(p *PurchaseIntent) { p.Date = "10/05/2025" }, "date"},
		{"card payment without card", func(p *PurchaseIntent) { p.CategoryID = "exp-card" }, "cardId"},
		{"transfer without destination", func(p *PurchaseIntent) { p.CategoryID = "exp-10" }, "destinationAccountId"},
		{"transfer to itself", func(p *PurchaseIntent) {
			p.CategoryID = "exp-10"
			p.DestinationAccountID = "acc-1"
		}, "destinationAccountId"},
		{"split transfer", func(p *PurchaseIntent) {
			p.CategoryID = "exp-10"
			p.DestinationAccountID = "acc-2"
			p.TotalInstallments = 2
		}, "totalInstallments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := valid
			tt.mutate(&intent)

			entries, err := newTestExpander(false).Expand(intent, testAccounts)
			assert.Nil(t, entries)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrValidation))

			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestExpand_UnknownAccount(t *testing.T) {
	_, err := newTestExpander(false).Expand(PurchaseIntent{
		Date: "2025-05-10", Amount: decimal.NewFromInt(10), CategoryID: "exp-1",
		AccountID: "acc-404", TotalInstallments: 1,
	}, testAccounts)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = newTestExpander(false).Expand(PurchaseIntent{
		Date: "2025-05-10", Amount: decimal.NewFromInt(10), CategoryID: "exp-card",
		AccountID: "acc-1", CardID: "acc-2", TotalInstallments: 1,
	}, testAccounts)
	assert.True(t, errors.Is(err, models.ErrNotFound), "paid card must be a card account")
}
