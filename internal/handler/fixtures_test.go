package handler

import (
	"context"
	"time"

	"github.com/rocjay1/bo-ledger/internal/config"
	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCategories() []models.Category {
	return []models.Category{
		{ID: "inc-1", Name: "Salário", Kind: models.KindIncome, IsActive: true},
		{ID: "exp-3", Name: "Mercado", Kind: models.KindExpense, IsActive: true},
		{ID: "exp-9", Name: "Tarifas", Kind: models.KindExpense, IsActive: true},
		{ID: "exp-card", Name: "Pagamento Cartão de Crédito", Kind: models.KindExpense, IsActive: true},
		{ID: "exp-10", Name: "Transferências entre Contas", Kind: models.KindExpense, IsActive: true},
	}
}

func testAccounts() []models.Account {
	return []models.Account{
		{ID: "acc-1", Name: "Banco do Brasil", IsActive: true, InitialBalance: dec("1000"), InitialBalanceDate: "2025-01-01"},
		{ID: "card-1", Name: "Visa", IsActive: true, IsCreditCard: true, ClosingDay: 5},
		{ID: "card-2", Name: "Master", IsActive: true, IsCreditCard: true, ClosingDay: 23},
	}
}

// ledgerStore is an in-memory table behind a MockDatabaseClient.
type ledgerStore struct {
	entries    []models.Entry
	accounts   []models.Account
	categories []models.Category

	created []models.Entry
	updated []models.EntryPatch
	applied [][]models.EntryPatch
	deleted []string
}

func newLedger(entries ...models.Entry) (*MockDatabaseClient, *ledgerStore) {
	s := &ledgerStore{entries: entries, accounts: testAccounts(), categories: testCategories()}
	db := &MockDatabaseClient{
		ListEntriesFunc: func(ctx context.Context) ([]models.Entry, error) {
			return append([]models.Entry(nil), s.entries...), nil
		},
		ListAccountsFunc: func(ctx context.Context) ([]models.Account, error) {
			return append([]models.Account(nil), s.accounts...), nil
		},
		ListCategoriesFunc: func(ctx context.Context) ([]models.Category, error) {
			return append([]models.Category(nil), s.categories...), nil
		},
		CreateEntriesFunc: func(ctx context.Context, entries []models.Entry) error {
			s.created = append(s.created, entries...)
			s.entries = append(s.entries, entries...)
			return nil
		},
		UpdateEntryFunc: func(ctx context.Context, patch models.EntryPatch) error {
			s.updated = append(s.updated, patch)
			s.entries = models.ApplyPatches(s.entries, []models.EntryPatch{patch})
			return nil
		},
		ApplyPatchesFunc: func(ctx context.Context, patches []models.EntryPatch) error {
			s.applied = append(s.applied, patches)
			s.entries = models.ApplyPatches(s.entries, patches)
			return nil
		},
		DeleteEntryFunc: func(ctx context.Context, id string) error {
			s.deleted = append(s.deleted, id)
			return nil
		},
	}
	return db, s
}

func testConfig() *config.Config {
	return &config.Config{
		ImportContainer: "imports",
		ImportQueue:     "ledger-imports",
		BackupContainer: "backups",
		UserEmail:       "familia@example.com",
		Roles:           models.DefaultRoleMatchers(),
	}
}

func testDeps(db DatabaseClient) *Dependencies {
	return &Dependencies{
		Database: db,
		Config:   testConfig(),
		Now:      func() time.Time { return testNow },
	}
}
