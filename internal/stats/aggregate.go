package stats

import (
	"sort"
	"time"

	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/rocjay1/bo-ledger/internal/money"
	"github.com/shopspring/decimal"
)

// Pace classifies current spending against the historical monthly average.
type Pace string

const (
	PaceAbove  Pace = "ABOVE_AVERAGE"
	PaceBelow  Pace = "BELOW_AVERAGE"
	PaceStable Pace = "STABLE"
)

// HistoryMonths caps the monthly history series.
const HistoryMonths = 12

var (
	hundred   = decimal.NewFromInt(100)
	paceAbove = decimal.RequireFromString("1.10")
	paceBelow = decimal.RequireFromString("0.90")
)

// CategoryTotal is one ranked row. Shares are percentages of the kind total.
type CategoryTotal struct {
	CategoryID      string          `json:"categoryId"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"value"`
	Share           decimal.Decimal `json:"share"`
	CumulativeShare decimal.Decimal `json:"cumulativeShare"`
}

type DayTotal struct {
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type MonthTotal struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// PeriodStats is the derived view of one period. It is never persisted.
type PeriodStats struct {
	Period string `json:"period"`
	Start  string `json:"start"`
	End    string `json:"end"`

	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`

	IncomeByCategory  []CategoryTotal `json:"incomeByCategory"`
	ExpenseByCategory []CategoryTotal `json:"expenseByCategory"` // Pareto order

	DailyAverage decimal.Decimal `json:"dailyAverage"`
	DailyTrend   []DayTotal      `json:"dailyTrend"`

	PreviousPeriodIncome  decimal.Decimal `json:"previousPeriodIncome"`
	PreviousPeriodExpense decimal.Decimal `json:"previousPeriodExpense"`

	MonthlyHistory    []MonthTotal    `json:"monthlyHistory"`
	HistoricalAverage decimal.Decimal `json:"historicalAverage"`
	Pace              Pace            `json:"pace"`
}

// Aggregate computes the stats of period as of now.
func Aggregate(entries []models.Entry, categories []models.Category, accounts []models.Account, roles models.Roles, period Period, now time.Time) *PeriodStats {
	idx := models.IndexAccounts(accounts)
	names := models.CategoryNames(categories)
	contribs := contributions(entries, idx, roles)
	window := period.Window(now)

	income, expense := rank(contribs, window, names, roles)
	prevIncome, prevExpense := rank(contribs, period.Previous(now), names, roles)

	s := &PeriodStats{
		Period:                period.String(),
		Start:                 calendar.FormatDay(window.Start),
		End:                   calendar.FormatDay(window.End),
		IncomeByCategory:      income,
		ExpenseByCategory:     expense,
		TotalIncome:           total(income),
		TotalExpense:          total(expense),
		PreviousPeriodIncome:  total(prevIncome),
		PreviousPeriodExpense: total(prevExpense),
		DailyTrend:            dailyTrend(contribs, window, roles),
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)

	if days := period.ElapsedDays(now); days > 0 {
		s.DailyAverage = s.TotalExpense.Div(decimal.NewFromInt(int64(days))).Round(2)
	}

	months := monthlyCashFlow(entries, idx, roles)
	s.MonthlyHistory = history(months, window.End)
	s.HistoricalAverage = historicalAverage(months, now)
	s.Pace = classify(s.TotalExpense, s.HistoricalAverage)
	return s
}

// rank totals the window per category name. Rows at or below one cent are
// dropped and the rest are sorted descending with cumulative shares.
func rank(contribs []contribution, w Window, names map[string]string, roles models.Roles) (income, expense []CategoryTotal) {
	type row struct {
		id     string
		amount decimal.Decimal
	}
	sums := map[models.Kind]map[string]*row{
		models.KindIncome:  {},
		models.KindExpense: {},
	}
	for _, c := range contribs {
		if !w.Contains(c.day) {
			continue
		}
		name := categoryName(names, c.categoryID)
		r, ok := sums[c.kind][name]
		if !ok {
			r = &row{id: c.categoryID, amount: decimal.Zero}
			sums[c.kind][name] = r
		}
		r.amount = r.amount.Add(c.amount)
	}

	build := func(kind models.Kind) []CategoryTotal {
		rows := []CategoryTotal{}
		for name, r := range sums[kind] {
			amount := r.amount
			if roles.IsCardPayment(r.id) && money.WithinTolerance(amount) {
				amount = decimal.Zero
			}
			if money.Negligible(amount) {
				continue
			}
			rows = append(rows, CategoryTotal{CategoryID: r.id, Name: name, Amount: amount})
		}
		sort.Slice(rows, func(i, j int) bool {
			if !rows[i].Amount.Equal(rows[j].Amount) {
				return rows[i].Amount.GreaterThan(rows[j].Amount)
			}
			return rows[i].Name < rows[j].Name
		})
		shares(rows)
		return rows
	}
	return build(models.KindIncome), build(models.KindExpense)
}

func shares(rows []CategoryTotal) {
	sum := total(rows)
	if !sum.IsPositive() {
		return
	}
	running := decimal.Zero
	for i := range rows {
		running = running.Add(rows[i].Amount)
		rows[i].Share = rows[i].Amount.Mul(hundred).Div(sum).Round(2)
		rows[i].CumulativeShare = running.Mul(hundred).Div(sum).Round(2)
	}
}

func total(rows []CategoryTotal) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Amount)
	}
	return sum
}

func categoryName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return models.UncategorizedName
}

// dailyTrend sums spending per day of the window. Card-payment amounts and
// their offsets are left out so each purchase is counted once, on its day.
func dailyTrend(contribs []contribution, w Window, roles models.Roles) []DayTotal {
	byDay := make(map[string]*DayTotal)
	var days []DayTotal
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, DayTotal{Date: calendar.FormatDay(d), Income: decimal.Zero, Expense: decimal.Zero})
	}
	for i := range days {
		byDay[days[i].Date] = &days[i]
	}

	for _, c := range contribs {
		dt, ok := byDay[calendar.FormatDay(c.day)]
		if !ok {
			continue
		}
		if c.kind == models.KindIncome {
			dt.Income = dt.Income.Add(c.amount)
			continue
		}
		if c.source == SourceOffset || roles.IsCardPayment(c.categoryID) {
			continue
		}
		dt.Expense = dt.Expense.Add(c.amount)
	}
	return days
}

// monthlyCashFlow totals money in and out per month. Card purchases are left
// out because the bill payment that settles them already carries the amount.
func monthlyCashFlow(entries []models.Entry, idx models.AccountIndex, roles models.Roles) map[string]*MonthTotal {
	months := make(map[string]*MonthTotal)
	for _, e := range entries {
		if roles.IsTransfer(e.CategoryID) {
			continue
		}
		day, err := calendar.ParseDay(e.Date)
		if err != nil {
			continue
		}
		key := calendar.MonthKey(day)
		m, ok := months[key]
		if !ok {
			m = &MonthTotal{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
			months[key] = m
		}
		switch {
		case models.ParseKind(string(e.Kind)) == models.KindIncome:
			m.Income = m.Income.Add(e.Amount)
		case !idx.IsCard(e.AccountID):
			m.Expense = m.Expense.Add(e.Amount)
		}
	}
	return months
}

// history returns up to HistoryMonths months ending with the month of end.
func history(months map[string]*MonthTotal, end time.Time) []MonthTotal {
	last := calendar.MonthKey(end)
	out := []MonthTotal{}
	for key, m := range months {
		if key <= last {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if len(out) > HistoryMonths {
		out = out[len(out)-HistoryMonths:]
	}
	return out
}

// historicalAverage averages expense over the months before now's month that
// have any expense.
func historicalAverage(months map[string]*MonthTotal, now time.Time) decimal.Decimal {
	current := calendar.MonthKey(now)
	sum := decimal.Zero
	n := 0
	for key, m := range months {
		if key >= current || !m.Expense.IsPositive() {
			continue
		}
		sum = sum.Add(m.Expense)
		n++
	}
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(2)
}

func classify(current, average decimal.Decimal) Pace {
	if !average.IsPositive() {
		return PaceStable
	}
	switch {
	case current.GreaterThan(average.Mul(paceAbove)):
		return PaceAbove
	case current.LessThan(average.Mul(paceBelow)):
		return PaceBelow
	default:
		return PaceStable
	}
}
