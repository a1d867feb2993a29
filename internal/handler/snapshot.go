package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/rocjay1/bo-ledger/internal/repair"
)

// snapshot is one consistent read of the ledger.
type snapshot struct {
	Entries    []models.Entry    `json:"entries"`
	Accounts   []models.Account  `json:"accounts"`
	Categories []models.Category `json:"categories"`
	Roles      models.Roles      `json:"-"`
}

func (d *Dependencies) readSnapshot(ctx context.Context) (*snapshot, error) {
	entries, err := d.Database.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	accounts, err := d.Database.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	categories, err := d.Database.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	for i := range entries {
		entries[i].Normalize()
	}
	return &snapshot{
		Entries:    entries,
		Accounts:   accounts,
		Categories: categories,
		Roles:      models.ResolveRoles(categories, d.config().Roles),
	}, nil
}

// loadSnapshot reads the ledger and heals it before anything aggregates it.
// Repairs are written one entry at a time; a failed write is logged and the
// rest still go through. When anything was written the entries are read
// again so callers see stored state.
func (d *Dependencies) loadSnapshot(ctx context.Context) (*snapshot, error) {
	snap, err := d.readSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	patches, problems := repair.Run(snap.Entries, snap.Roles, snap.Accounts, d.config().TagCardIDs)
	for _, p := range problems {
		slog.Warn("entry left unrepaired", "error", p)
	}
	if len(patches) == 0 {
		return snap, nil
	}

	applied := 0
	for _, p := range patches {
		if err := d.Database.UpdateEntry(ctx, p); err != nil {
			slog.Error("failed to repair entry", "id", p.ID, "error", err)
			continue
		}
		applied++
	}
	slog.Info("repaired entries", "count", applied, "planned", len(patches))
	if applied == 0 {
		return snap, nil
	}

	entries, err := d.Database.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	for i := range entries {
		entries[i].Normalize()
	}
	snap.Entries = entries
	return snap, nil
}
