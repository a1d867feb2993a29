package csvparse

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/rocjay1/bo-ledger/internal/money"
	"github.com/shopspring/decimal"
)

// Column names of the ledger export.
const (
	ColDate        = "Data"
	ColAmount      = "Valor"
	ColDescription = "Descricao"
	ColKind        = "Tipo"
	ColCategory    = "Grupo"
	ColAccount     = "Conta_Cartao"
	ColCreatedBy   = "Criado_Por"
	ColInstallment = "Parcela"
)

var requiredColumns = []string{ColDate, ColAmount, ColCategory, ColAccount}

// ImportRow is one parsed export line, still referring to categories and
// accounts by name.
type ImportRow struct {
	Row               int
	Date              string
	Amount            decimal.Decimal
	Description       string
	Kind              models.Kind
	CategoryName      string
	AccountName       string
	CreatedBy         string
	InstallmentNumber int
	TotalInstallments int
}

// ParseCSV parses rows from a ledger export.
// It returns the parsed rows and a list of error messages for invalid rows.
func ParseCSV(content string) ([]ImportRow, []string) {
	content = strings.TrimPrefix(content, "\ufeff")
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("Failed to read CSV: %v", err)}
	}

	if len(records) < 2 {
		return []ImportRow{}, nil // Empty or header-only
	}

	headers := parseHeaders(records[0])
	if missing := missingColumns(headers); len(missing) > 0 {
		return nil, []string{fmt.Sprintf("Missing columns: %s", strings.Join(missing, ", "))}
	}

	var rows []ImportRow
	var errors []string

	for i, record := range records[1:] {
		rowNum := i + 2
		if len(record) < len(headers) {
			errors = append(errors, fmt.Sprintf("Row %d: Not enough fields", rowNum))
			continue
		}

		rowMap := make(map[string]string)
		for j, header := range headers {
			rowMap[header] = strings.TrimSpace(record[j])
		}

		r, err := mapToRow(rowMap)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		r.Row = rowNum
		rows = append(rows, *r)
	}

	return rows, errors
}

func parseHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

func missingColumns(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, c := range requiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

func mapToRow(row map[string]string) (*ImportRow, error) {
	dateStr := row[ColDate]
	if dateStr == "" {
		return nil, fmt.Errorf("missing %s", ColDate)
	}
	day, err := calendar.ParseDay(dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format: %s", ColDate, dateStr)
	}

	amountStr := row[ColAmount]
	if amountStr == "" {
		return nil, fmt.Errorf("missing %s", ColAmount)
	}
	amount, err := money.ParseAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %s", ColAmount, amountStr)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("invalid %s: must be greater than zero", ColAmount)
	}

	category := row[ColCategory]
	if category == "" || category == "N/A" {
		return nil, fmt.Errorf("missing %s", ColCategory)
	}
	account := row[ColAccount]
	if account == "" || account == "N/A" {
		return nil, fmt.Errorf("missing %s", ColAccount)
	}

	number, total, err := parseInstallment(row[ColInstallment])
	if err != nil {
		return nil, err
	}

	return &ImportRow{
		Date:              calendar.FormatDay(day),
		Amount:            amount,
		Description:       row[ColDescription],
		Kind:              models.ParseKind(row[ColKind]),
		CategoryName:      category,
		AccountName:       account,
		CreatedBy:         row[ColCreatedBy],
		InstallmentNumber: number,
		TotalInstallments: total,
	}, nil
}

// parseInstallment reads "i/N". An empty cell is a single payment.
func parseInstallment(s string) (int, int, error) {
	if s == "" {
		return 1, 1, nil
	}
	a, b, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, fmt.Errorf("invalid %s: %s", ColInstallment, s)
	}
	number, err1 := strconv.Atoi(strings.TrimSpace(a))
	total, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil || number < 1 || total < 1 || number > total {
		return 0, 0, fmt.Errorf("invalid %s: %s", ColInstallment, s)
	}
	return number, total, nil
}
