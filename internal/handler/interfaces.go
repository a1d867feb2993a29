package handler

import (
	"context"

	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/rocjay1/bo-ledger/internal/stats"
)

// DatabaseClient defines the interface for database operations used by handlers.
type DatabaseClient interface {
	ListEntries(ctx context.Context) ([]models.Entry, error)
	CreateEntries(ctx context.Context, entries []models.Entry) error
	UpdateEntry(ctx context.Context, patch models.EntryPatch) error
	ApplyPatches(ctx context.Context, patches []models.EntryPatch) error
	DeleteEntry(ctx context.Context, id string) error
	ListAccounts(ctx context.Context) ([]models.Account, error)
	SaveAccount(ctx context.Context, account models.Account) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	SaveCategory(ctx context.Context, category models.Category) error
}

// BlobClient defines the interface for blob storage operations used by handlers.
type BlobClient interface {
	UploadText(ctx context.Context, containerName, blobName, content string) error
	UploadJSON(ctx context.Context, containerName, blobName string, v any) error
	DownloadText(ctx context.Context, containerName, blobName string) (string, error)
	PruneBlobs(ctx context.Context, containerName, prefix string, keep int) (int, error)
}

// QueueClient defines the interface for queue operations used by handlers.
type QueueClient interface {
	EnqueueMessage(ctx context.Context, queueName string, message any) error
}

// EmailClient defines the interface for email operations used by handlers.
type EmailClient interface {
	SendEmail(ctx context.Context, to []string, subject, body string) error
	SendErrorEmail(ctx context.Context, recipients []string, errors []string) error
	SendDigestEmail(ctx context.Context, recipients []string, summary *stats.PeriodStats) error
}
