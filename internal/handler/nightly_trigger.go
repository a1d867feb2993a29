package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/rocjay1/bo-ledger/internal/money"
	"github.com/rocjay1/bo-ledger/internal/stats"
	"github.com/shopspring/decimal"
)

const (
	reminderLeadDays = 3
	snapshotPrefix   = "snapshots/"
	snapshotsKept    = 30
)

// HandleNightlyTrigger heals the ledger, backs it up, warns about card
// statements closing soon and, on the first of the month, mails last month's
// summary.
func (d *Dependencies) HandleNightlyTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := d.now()
	slog.Info("Starting nightly trigger processing", "date", calendar.FormatDay(now))

	snap, err := d.loadSnapshot(ctx)
	if err != nil {
		slog.Error("Failed to load ledger snapshot", "error", err)
		http.Error(w, "Failed to load ledger", http.StatusInternalServerError)
		return
	}

	d.backupSnapshot(ctx, snap)

	to := d.config().UserEmail
	if d.Email == nil || to == "" {
		slog.Warn("USER_EMAIL or email service not configured; skipping email notifications")
		w.WriteHeader(http.StatusOK)
		return
	}

	d.sendClosingReminders(ctx, snap, to)

	if now.Day() == 1 {
		previous := stats.Period{Month: calendar.AddMonths(calendar.FirstOfMonth(now), -1)}
		summary := stats.Aggregate(snap.Entries, snap.Categories, snap.Accounts, snap.Roles, previous, now)
		if err := d.Email.SendDigestEmail(ctx, []string{to}, summary); err != nil {
			slog.Error("Failed to send monthly digest", "period", previous.String(), "error", err)
		} else {
			slog.Info("Monthly digest sent", "period", previous.String(), "email", to)
		}
	}

	slog.Info("Nightly trigger processing complete")
	w.WriteHeader(http.StatusOK)
}

func (d *Dependencies) backupSnapshot(ctx context.Context, snap *snapshot) {
	container := d.config().BackupContainer
	blobName := snapshotPrefix + calendar.FormatDay(d.now()) + ".json"
	if err := d.Blob.UploadJSON(ctx, container, blobName, snap); err != nil {
		slog.Error("Failed to back up ledger", "container", container, "blob_name", blobName, "error", err)
		return
	}
	pruned, err := d.Blob.PruneBlobs(ctx, container, snapshotPrefix, snapshotsKept)
	if err != nil {
		slog.Error("Failed to prune ledger backups", "container", container, "error", err)
	}
	slog.Info("Ledger backed up", "blob_name", blobName, "entries", len(snap.Entries), "pruned", pruned)
}

func (d *Dependencies) sendClosingReminders(ctx context.Context, snap *snapshot, to string) {
	target := calendar.Day(d.now()).AddDate(0, 0, reminderLeadDays)
	slog.Info("Checking cards for upcoming closing day", "target_date", calendar.FormatDay(target))

	for i := range snap.Accounts {
		card := &snap.Accounts[i]
		if !card.IsActive || !card.HasBillingCycle() || closingDayIn(card, target) != target.Day() {
			continue
		}

		total := statementTotal(snap.Entries, card.ID, target)
		if !total.IsPositive() {
			slog.Info("Card closing soon with empty statement", "card", card.Name)
			continue
		}

		subject := fmt.Sprintf("BO Ledger - Fatura %s fecha em %d dias", card.Name, reminderLeadDays)
		body := fmt.Sprintf(`
			<h3>Fechamento de fatura</h3>
			<p>A fatura do cartão <b>%s</b> fecha em %d dias (dia %d).</p>
			<p>Total lançado até agora:</p>
			<h2>R$ %s</h2>
		`, card.Name, reminderLeadDays, card.ClosingDay, money.FormatBR(total))

		if err := d.Email.SendEmail(ctx, []string{to}, subject, body); err != nil {
			slog.Error("Failed to send closing reminder email", "card", card.Name, "email", to, "error", err)
			continue
		}
		slog.Info("Closing reminder email sent", "card", card.Name, "email", to, "amount", money.Format(total))
	}
}

// closingDayIn clamps the card's closing day to the length of day's month.
func closingDayIn(card *models.Account, day time.Time) int {
	if n := calendar.DaysInMonth(day); card.ClosingDay > n {
		return n
	}
	return card.ClosingDay
}

// statementTotal sums the card's expenses billed in the month of day.
func statementTotal(entries []models.Entry, cardID string, day time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.AccountID != cardID || models.ParseKind(string(e.Kind)) != models.KindExpense {
			continue
		}
		billed, err := calendar.ParseDay(e.Date)
		if err != nil || !calendar.SameMonth(billed, day) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total
}
