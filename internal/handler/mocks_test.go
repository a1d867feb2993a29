package handler

import (
	"context"

	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/rocjay1/bo-ledger/internal/stats"
)

// MockDatabaseClient is a mock implementation of DatabaseClient
type MockDatabaseClient struct {
	ListEntriesFunc    func(ctx context.Context) ([]models.Entry, error)
	CreateEntriesFunc  func(ctx context.Context, entries []models.Entry) error
	UpdateEntryFunc    func(ctx context.Context, patch models.EntryPatch) error
	ApplyPatchesFunc   func(ctx context.Context, patches []models.EntryPatch) error
	DeleteEntryFunc    func(ctx context.Context, id string) error
	ListAccountsFunc   func(ctx context.Context) ([]models.Account, error)
	SaveAccountFunc    func(ctx context.Context, account models.Account) error
	ListCategoriesFunc func(ctx context.Context) ([]models.Category, error)
	SaveCategoryFunc   func(ctx context.Context, category models.Category) error
}

func (m *MockDatabaseClient) ListEntries(ctx context.Context) ([]models.Entry, error) {
	if m.ListEntriesFunc != nil {
		return m.ListEntriesFunc(ctx)
	}
	return nil, nil
}

func (m *MockDatabaseClient) CreateEntries(ctx context.Context, entries []models.Entry) error {
	if m.CreateEntriesFunc != nil {
		return m.CreateEntriesFunc(ctx, entries)
	}
	return nil
}

func (m *MockDatabaseClient) UpdateEntry(ctx context.Context, patch models.EntryPatch) error {
	if m.UpdateEntryFunc != nil {
		return m.UpdateEntryFunc(ctx, patch)
	}
	return nil
}

func (m *MockDatabaseClient) ApplyPatches(ctx context.Context, patches []models.EntryPatch) error {
	if m.ApplyPatchesFunc != nil {
		return m.ApplyPatchesFunc(ctx, patches)
	}
	return nil
}

func (m *MockDatabaseClient) DeleteEntry(ctx context.Context, id string) error {
	if m.DeleteEntryFunc != nil {
		return m.DeleteEntryFunc(ctx, id)
	}
	return nil
}

func (m *MockDatabaseClient) ListAccounts(ctx context.Context) ([]models.Account, error) {
	if m.ListAccountsFunc != nil {
		return m.ListAccountsFunc(ctx)
	}
	return nil, nil
}

func (m *MockDatabaseClient) SaveAccount(ctx context.Context, account models.Account) error {
	if m.SaveAccountFunc != nil {
		return m.SaveAccountFunc(ctx, account)
	}
	return nil
}

func (m *MockDatabaseClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return nil, nil
}

func (m *MockDatabaseClient) SaveCategory(ctx context.Context, category models.Category) error {
	if m.SaveCategoryFunc != nil {
		return m.SaveCategoryFunc(ctx, category)
	}
	return nil
}

// MockBlobClient is a mock implementation of BlobClient
type MockBlobClient struct {
	UploadTextFunc   func(ctx context.Context, containerName, blobName, content string) error
	UploadJSONFunc   func(ctx context.Context, containerName, blobName string, v any) error
	DownloadTextFunc func(ctx context.Context, containerName, blobName string) (string, error)
	PruneBlobsFunc   func(ctx context.Context, containerName, prefix string, keep int) (int, error)
}

func (m *MockBlobClient) UploadText(ctx context.Context, containerName, blobName, content string) error {
	if m.UploadTextFunc != nil {
		return m.UploadTextFunc(ctx, containerName, blobName, content)
	}
	return nil
}

func (m *MockBlobClient) UploadJSON(ctx context.Context, containerName, blobName string, v any) error {
	if m.UploadJSONFunc != nil {
		return m.UploadJSONFunc(ctx, containerName, blobName, v)
	}
	return nil
}

func (m *MockBlobClient) DownloadText(ctx context.Context, containerName, blobName string) (string, error) {
	if m.DownloadTextFunc != nil {
		return m.DownloadTextFunc(ctx, containerName, blobName)
	}
	return "", nil
}

func (m *MockBlobClient) PruneBlobs(ctx context.Context, containerName, prefix string, keep int) (int, error) {
	if m.PruneBlobsFunc != nil {
		return m.PruneBlobsFunc(ctx, containerName, prefix, keep)
	}
	return 0, nil
}

// MockQueueClient is a mock implementation of QueueClient
type MockQueueClient struct {
	EnqueueMessageFunc func(ctx context.Context, queueName string, message any) error
}

func (m *MockQueueClient) EnqueueMessage(ctx context.Context, queueName string, message any) error {
	if m.EnqueueMessageFunc != nil {
		return m.EnqueueMessageFunc(ctx, queueName, message)
	}
	return nil
}

// MockEmailClient is a mock implementation of EmailClient
type MockEmailClient struct {
	SendEmailFunc       func(ctx context.Context, to []string, subject, body string) error
	SendErrorEmailFunc  func(ctx context.Context, recipients []string, errors []string) error
	SendDigestEmailFunc func(ctx context.Context, recipients []string, summary *stats.PeriodStats) error
}

func (m *MockEmailClient) SendEmail(ctx context.Context, to []string, subject, body string) error {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, to, subject, body)
	}
	return nil
}

func (m *MockEmailClient) SendErrorEmail(ctx context.Context, recipients []string, errors []string) error {
	if m.SendErrorEmailFunc != nil {
		return m.SendErrorEmailFunc(ctx, recipients, errors)
	}
	return nil
}

func (m *MockEmailClient) SendDigestEmail(ctx context.Context, recipients []string, summary *stats.PeriodStats) error {
	if m.SendDigestEmailFunc != nil {
		return m.SendDigestEmailFunc(ctx, recipients, summary)
	}
	return nil
}
