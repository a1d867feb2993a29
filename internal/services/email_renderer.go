package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/rocjay1/bo-ledger/internal/money"
	"github.com/rocjay1/bo-ledger/internal/stats"
)

// digestRows is how many categories the digest lists.
const digestRows = 5

var paceLabels = map[stats.Pace]string{
	stats.PaceAbove:  "Acima da média",
	stats.PaceBelow:  "Abaixo da média",
	stats.PaceStable: "Estável",
}

// RenderErrorSection renders the error section HTML.
func RenderErrorSection(errors []string) string {
	if len(errors) == 0 {
		return ""
	}

	var errorItems strings.Builder
	for _, e := range errors {
		errorItems.WriteString(fmt.Sprintf("<li>%s</li>", html.EscapeString(e)))
	}

	return fmt.Sprintf(`
		<div style="background-color: #fff4f4; border-left: 5px solid #d13438; padding: 15px; margin-bottom: 20px;">
			<h3 style="color: #d13438; margin-top: 0; font-size: 18px;">Algumas linhas foram ignoradas</h3>
			<ul style="margin-bottom: 0; padding-left: 20px;">
				%s
			</ul>
		</div>
	`, errorItems.String())
}

// RenderErrorBody renders the full HTML body for an import error email.
func RenderErrorBody(errors []string) string {
	return renderLayout("#d13438", "Importação com erros",
		"<p>O arquivo CSV enviado não pôde ser importado por completo:</p>"+RenderErrorSection(errors))
}

// RenderDigestBody renders the period summary: totals, pace and the largest
// expense categories.
func RenderDigestBody(s *stats.PeriodStats) string {
	var rows strings.Builder
	for i, r := range s.ExpenseByCategory {
		if i == digestRows {
			break
		}
		rows.WriteString(fmt.Sprintf(
			`<tr><td style="padding: 4px 0;">%s</td><td style="text-align: right;">R$ %s</td><td style="text-align: right; color: #666;">%s%%</td></tr>`,
			html.EscapeString(r.Name), money.FormatBR(r.Amount), r.CumulativeShare.StringFixed(0),
		))
	}

	content := fmt.Sprintf(`
		<p>Período %s a %s</p>
		<table style="width: 100%%; border-collapse: collapse; margin-bottom: 20px;">
			<tr><td>Receitas</td><td style="text-align: right;">R$ %s</td></tr>
			<tr><td>Despesas</td><td style="text-align: right;">R$ %s</td></tr>
			<tr><td>Saldo</td><td style="text-align: right;"><strong>R$ %s</strong></td></tr>
			<tr><td>Média diária</td><td style="text-align: right;">R$ %s</td></tr>
			<tr><td>Ritmo</td><td style="text-align: right;">%s (média mensal R$ %s)</td></tr>
		</table>
		<h3 style="margin-bottom: 8px;">Maiores grupos</h3>
		<table style="width: 100%%; border-collapse: collapse;">%s</table>
	`,
		s.Start, s.End,
		money.FormatBR(s.TotalIncome),
		money.FormatBR(s.TotalExpense),
		money.FormatBR(s.Balance),
		money.FormatBR(s.DailyAverage),
		paceLabels[s.Pace], money.FormatBR(s.HistoricalAverage),
		rows.String(),
	)
	return renderLayout("#2563eb", "Resumo "+html.EscapeString(s.Period), content)
}

func renderLayout(color, title, content string) string {
	return fmt.Sprintf(`
		<html>
		<body style="font-family: 'Segoe UI', sans-serif; color: #333; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 20px;">
			<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
				<div style="background-color: %s; padding: 20px; text-align: center; color: white;">
					<h2 style="margin: 0;">%s</h2>
				</div>
				<div style="padding: 20px;">
					%s
				</div>
			</div>
		</body>
		</html>
	`, color, title, content)
}
