package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Partition keys. Each table holds a single partition so a batch of up to
// batchSize actions commits atomically.
const (
	entriesPartition    = "ENTRIES"
	accountsPartition   = "ACCOUNTS"
	categoriesPartition = "CATEGORIES"

	batchSize = 100
)

// DatabaseService handles interactions with Azure Table Storage.
type DatabaseService struct {
	serviceClient   *aztables.ServiceClient
	entriesTable    string
	accountsTable   string
	categoriesTable string
}

// NewDatabaseService creates a new DatabaseService instance.
func NewDatabaseService(ctx context.Context, tableURL, entriesTable, accountsTable, categoriesTable string) (*DatabaseService, error) {
	if tableURL == "" {
		return nil, fmt.Errorf("TABLE_SERVICE_URL environment variable is required")
	}

	var client *aztables.ServiceClient

	// Check if running locally with Azurite (http endpoint)
	if isLocal(tableURL) {
		slog.Info("using Azurite credentials for database service")
		name, key := getAzuriteCredentials()
		cred, err := aztables.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = aztables.NewServiceClient(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	svc := &DatabaseService{
		serviceClient:   client,
		entriesTable:    entriesTable,
		accountsTable:   accountsTable,
		categoriesTable: categoriesTable,
	}

	if err := svc.CreateTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("database service initialized successfully",
		"table_url", tableURL,
		"entries_table", entriesTable,
		"accounts_table", accountsTable,
		"categories_table", categoriesTable,
	)
	return svc, nil
}

// CreateTables ensures all required tables exist in Azure Table Storage.
func (s *DatabaseService) CreateTables(ctx context.Context) error {
	for _, tableName := range []string{s.entriesTable, s.accountsTable, s.categoriesTable} {
		_, err := s.serviceClient.CreateTable(ctx, tableName, nil)
		if err != nil {
			var azErr *azcore.ResponseError
			if errors.As(err, &azErr) && azErr.ErrorCode == "TableAlreadyExists" {
				continue
			}
			return fmt.Errorf("failed to create table %s: %w", tableName, err)
		}
	}
	return nil
}

func (s *DatabaseService) getClient(tableName string) *aztables.Client {
	return s.serviceClient.NewClient(tableName)
}

// listPartition decodes every entity of one partition.
func (s *DatabaseService) listPartition(ctx context.Context, table, partition string) ([]map[string]any, error) {
	client := s.getClient(table)
	filter := fmt.Sprintf("PartitionKey eq '%s'", partition)
	pager := client.NewListEntitiesPager(&aztables.ListEntitiesOptions{
		Filter: &filter,
	})

	var out []map[string]any
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", table, err)
		}
		for _, entity := range resp.Entities {
			var parsed map[string]any
			if err := json.Unmarshal(entity, &parsed); err != nil {
				slog.Warn("skipping undecodable entity", "table", table, "error", err)
				continue
			}
			out = append(out, parsed)
		}
	}
	return out, nil
}

// submit commits actions in chunks of batchSize.
func (s *DatabaseService) submit(ctx context.Context, table string, batch []aztables.TransactionAction) error {
	client := s.getClient(table)
	for i := 0; i < len(batch); i += batchSize {
		end := min(i+batchSize, len(batch))
		if _, err := client.SubmitTransaction(ctx, batch[i:end], nil); err != nil {
			return fmt.Errorf("failed to submit transaction batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// ListEntries returns every stored entry.
func (s *DatabaseService) ListEntries(ctx context.Context) ([]models.Entry, error) {
	rows, err := s.listPartition(ctx, s.entriesTable, entriesPartition)
	if err != nil {
		return nil, err
	}
	entries := make([]models.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromEntity(row))
	}
	return entries, nil
}

// CreateEntries inserts a batch produced by one operation.
func (s *DatabaseService) CreateEntries(ctx context.Context, entries []models.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := make([]aztables.TransactionAction, 0, len(entries))
	for _, e := range entries {
		entity, err := json.Marshal(entryEntity(e))
		if err != nil {
			return fmt.Errorf("failed to marshal entry %s: %w", e.ID, err)
		}
		batch = append(batch, aztables.TransactionAction{
			ActionType: aztables.TransactionTypeAdd,
			Entity:     entity,
		})
	}
	if err := s.submit(ctx, s.entriesTable, batch); err != nil {
		return err
	}
	slog.Info("saved entries", "count", len(entries))
	return nil
}

// UpdateEntry merges one patch into the stored entry.
func (s *DatabaseService) UpdateEntry(ctx context.Context, patch models.EntryPatch) error {
	entity, err := json.Marshal(patchEntity(patch))
	if err != nil {
		return fmt.Errorf("failed to marshal patch for %s: %w", patch.ID, err)
	}
	_, err = s.getClient(s.entriesTable).UpdateEntity(ctx, entity, &aztables.UpdateEntityOptions{
		UpdateMode: aztables.UpdateModeMerge,
	})
	if isNotFound(err) {
		return &models.NotFoundError{Kind: "entry", ID: patch.ID}
	}
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", patch.ID, err)
	}
	return nil
}

// ApplyPatches merges a patch list in one transaction batch.
func (s *DatabaseService) ApplyPatches(ctx context.Context, patches []models.EntryPatch) error {
	var batch []aztables.TransactionAction
	for _, p := range patches {
		if p.Empty() {
			continue
		}
		entity, err := json.Marshal(patchEntity(p))
		if err != nil {
			return fmt.Errorf("failed to marshal patch for %s: %w", p.ID, err)
		}
		batch = append(batch, aztables.TransactionAction{
			ActionType: aztables.TransactionTypeUpdateMerge,
			Entity:     entity,
		})
	}
	if len(batch) == 0 {
		return nil
	}
	if err := s.submit(ctx, s.entriesTable, batch); err != nil {
		return err
	}
	slog.Info("applied entry patches", "count", len(batch))
	return nil
}

// DeleteEntry removes one entry.
func (s *DatabaseService) DeleteEntry(ctx context.Context, id string) error {
	_, err := s.getClient(s.entriesTable).DeleteEntity(ctx, entriesPartition, id, nil)
	if isNotFound(err) {
		return &models.NotFoundError{Kind: "entry", ID: id}
	}
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	return nil
}

// ListAccounts returns every account.
func (s *DatabaseService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.listPartition(ctx, s.accountsTable, accountsPartition)
	if err != nil {
		return nil, err
	}
	accounts := make([]models.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, models.Account{
			ID:                 getString(row, "RowKey"),
			Name:               getString(row, "Name"),
			IsActive:           getBool(row, "IsActive"),
			IsCreditCard:       getBool(row, "IsCreditCard"),
			InitialBalance:     getDecimal(row, "InitialBalance"),
			InitialBalanceDate: getString(row, "InitialBalanceDate"),
			ClosingDay:         getInt(row, "ClosingDay"),
		})
	}
	return accounts, nil
}

// SaveAccount upserts an account.
func (s *DatabaseService) SaveAccount(ctx context.Context, a models.Account) error {
	entity := map[string]any{
		"PartitionKey":       accountsPartition,
		"RowKey":             a.ID,
		"Name":               a.Name,
		"IsActive":           a.IsActive,
		"IsCreditCard":       a.IsCreditCard,
		"InitialBalance":     a.InitialBalance.String(),
		"InitialBalanceDate": a.InitialBalanceDate,
		"ClosingDay":         a.ClosingDay,
	}
	entityJson, _ := json.Marshal(entity)
	if _, err := s.getClient(s.accountsTable).UpsertEntity(ctx, entityJson, nil); err != nil {
		return fmt.Errorf("failed to save account %s: %w", a.ID, err)
	}
	return nil
}

// ListCategories returns every category.
func (s *DatabaseService) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.listPartition(ctx, s.categoriesTable, categoriesPartition)
	if err != nil {
		return nil, err
	}
	categories := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, models.Category{
			ID:       getString(row, "RowKey"),
			Name:     getString(row, "Name"),
			Kind:     models.ParseKind(getString(row, "Kind")),
			IsActive: getBool(row, "IsActive"),
		})
	}
	return categories, nil
}

// SaveCategory upserts a category.
func (s *DatabaseService) SaveCategory(ctx context.Context, c models.Category) error {
	entity := map[string]any{
		"PartitionKey": categoriesPartition,
		"RowKey":       c.ID,
		"Name":         c.Name,
		"Kind":         string(c.Kind),
		"IsActive":     c.IsActive,
	}
	entityJson, _ := json.Marshal(entity)
	if _, err := s.getClient(s.categoriesTable).UpsertEntity(ctx, entityJson, nil); err != nil {
		return fmt.Errorf("failed to save category %s: %w", c.ID, err)
	}
	return nil
}

// Amounts are stored as strings so no value ever passes through a float.
func entryEntity(e models.Entry) map[string]any {
	entity := map[string]any{
		"PartitionKey":       entriesPartition,
		"RowKey":             e.ID,
		"Date":               e.Date,
		"CreatedAt":          e.CreatedAt,
		"CreatedBy":          e.CreatedBy,
		"Amount":             e.Amount.String(),
		"Description":        e.Description,
		"CategoryID":         e.CategoryID,
		"AccountID":          e.AccountID,
		"CardID":             e.CardID,
		"Kind":               string(e.Kind),
		"InstallmentNumber":  e.InstallmentNumber,
		"TotalInstallments":  e.TotalInstallments,
		"InstallmentGroupID": e.InstallmentGroupID,
	}
	if len(e.BillItems) > 0 {
		entity["BillItems"] = encodeBillItems(e.BillItems)
	}
	return entity
}

func patchEntity(p models.EntryPatch) map[string]any {
	entity := map[string]any{
		"PartitionKey": entriesPartition,
		"RowKey":       p.ID,
	}
	if p.Date != nil {
		entity["Date"] = *p.Date
	}
	if p.Description != nil {
		entity["Description"] = *p.Description
	}
	if p.Amount != nil {
		entity["Amount"] = p.Amount.String()
	}
	if p.CardID != nil {
		entity["CardID"] = *p.CardID
	}
	if p.BillItems != nil {
		entity["BillItems"] = encodeBillItems(*p.BillItems)
	}
	return entity
}

func entryFromEntity(row map[string]any) models.Entry {
	e := models.Entry{
		ID:                 getString(row, "RowKey"),
		Date:               getString(row, "Date"),
		CreatedAt:          getString(row, "CreatedAt"),
		CreatedBy:          getString(row, "CreatedBy"),
		Amount:             getDecimal(row, "Amount"),
		Description:        getString(row, "Description"),
		CategoryID:         getString(row, "CategoryID"),
		AccountID:          getString(row, "AccountID"),
		CardID:             getString(row, "CardID"),
		Kind:               models.ParseKind(getString(row, "Kind")),
		InstallmentNumber:  getInt(row, "InstallmentNumber"),
		TotalInstallments:  getInt(row, "TotalInstallments"),
		InstallmentGroupID: getString(row, "InstallmentGroupID"),
	}
	if raw := getString(row, "BillItems"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &e.BillItems); err != nil {
			slog.Warn("dropping undecodable bill items", "id", e.ID, "error", err)
			e.BillItems = nil
		}
	}
	e.Normalize()
	return e
}

func encodeBillItems(items []models.BillItem) string {
	if items == nil {
		items = []models.BillItem{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

func isNotFound(err error) bool {
	var azErr *azcore.ResponseError
	return errors.As(err, &azErr) && azErr.StatusCode == http.StatusNotFound
}

func getString(row map[string]any, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}

// getDecimal also reads legacy float properties.
func getDecimal(row map[string]any, key string) decimal.Decimal {
	switch v := row[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v).Round(2)
	}
	return decimal.Zero
}

func getInt(row map[string]any, key string) int {
	switch v := row[key].(type) {
	case float64:
		return int(v)
	case string:
		i, _ := strconv.Atoi(v)
		return i
	}
	return 0
}

func getBool(row map[string]any, key string) bool {
	switch v := row[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}
