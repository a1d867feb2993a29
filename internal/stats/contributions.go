package stats

import (
	"log/slog"
	"time"

	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/cardtag"
	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Source says where an amount in a category total came from.
type Source string

const (
	SourceDirect   Source = "DIRECT"    // paid from a bank account or wallet
	SourceCard     Source = "CARD"      // purchase on a credit card
	SourceBillItem Source = "BILL_ITEM" // manual item of a bill payment
	SourceOffset   Source = "OFFSET"    // removed from the card-payment category
)

// contribution is one signed amount added to one category on one day.
type contribution struct {
	id          string
	day         time.Time
	description string
	accountID   string
	categoryID  string
	kind        models.Kind
	source      Source
	amount      decimal.Decimal
}

// contributions expands entries into category amounts. Spending on a card is
// counted in its own category and taken back out of the card-payment
// category, which the bill payment for the same spending fills. Bill items
// are treated the same way. Transfers contribute nothing. Entries whose date
// cannot be read count as zero.
func contributions(entries []models.Entry, idx models.AccountIndex, roles models.Roles) []contribution {
	var out []contribution
	for i := range entries {
		e := &entries[i]
		if roles.IsTransfer(e.CategoryID) {
			continue
		}
		day, err := calendar.ParseDay(e.Date)
		if err != nil {
			slog.Debug("skipping entry without a usable date", "id", e.ID, "date", e.Date)
			continue
		}

		base := contribution{
			id:          e.ID,
			day:         day,
			description: cardtag.Strip(e.Description),
			accountID:   e.AccountID,
			categoryID:  e.CategoryID,
			kind:        models.ParseKind(string(e.Kind)),
			amount:      e.Amount,
		}

		if base.kind == models.KindIncome {
			base.source = SourceDirect
			out = append(out, base)
			continue
		}

		switch {
		case roles.IsCardPayment(e.CategoryID):
			base.source = SourceDirect
			out = append(out, base)
			for _, item := range e.BillItems {
				out = append(out,
					contribution{
						id:          e.ID + ":" + item.ID,
						day:         day,
						description: cardtag.Strip(item.Description),
						accountID:   e.AccountID,
						categoryID:  item.CategoryID,
						kind:        models.KindExpense,
						source:      SourceBillItem,
						amount:      item.Amount,
					},
					offset(base, roles.CardPaymentID, item.Amount),
				)
			}
		case idx.IsCard(e.AccountID):
			base.source = SourceCard
			out = append(out, base)
			if roles.CardPaymentID != "" {
				out = append(out, offset(base, roles.CardPaymentID, e.Amount))
			}
		default:
			base.source = SourceDirect
			out = append(out, base)
		}
	}
	return out
}

func offset(from contribution, categoryID string, amount decimal.Decimal) contribution {
	return contribution{
		id:          from.id,
		day:         from.day,
		description: from.description,
		accountID:   from.accountID,
		categoryID:  categoryID,
		kind:        models.KindExpense,
		source:      SourceOffset,
		amount:      amount.Neg(),
	}
}
