// Package export renders transactions as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	// ContentType is the MIME type of an xlsx workbook
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName   = "Transactions"

	// excelize built-in format "#,##0.00"
	moneyNumFmt = 4
)

var headers = []interface{}{"Date", "Type", "Category", "Description", "Amount"}

// Filename names the workbook after the exported range
func Filename(start, end time.Time) string {
	return fmt.Sprintf("transactions_%s_%s.xlsx", start.Format(util.DateLayout), end.Format(util.DateLayout))
}

// WriteTransactions writes one row per transaction below a styled header,
// followed by income, expense and balance totals
func WriteTransactions(w io.Writer, transactions []*domain.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: moneyNumFmt, Border: border})
	if err != nil {
		return fmt.Errorf("create money style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		NumFmt: moneyNumFmt,
		Border: border,
	})
	if err != nil {
		return fmt.Errorf("create total style: %w", err)
	}

	for col, width := range map[string]float64{"A": 12, "B": 10, "C": 20, "D": 40, "E": 14} {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	income, expenses := decimal.Zero, decimal.Zero
	row := 2
	for _, t := range transactions {
		description := ""
		if t.Description != nil {
			description = *t.Description
		}
		values := []interface{}{
			t.TransactionDate.Format(util.DateLayout),
			string(t.Type),
			t.Category.Name,
			description,
			t.Amount.InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetName, cell("A", row), &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		if err := f.SetCellStyle(SheetName, cell("E", row), cell("E", row), moneyStyle); err != nil {
			return fmt.Errorf("style row %d: %w", row, err)
		}

		if t.Type == domain.TransactionTypeIncome {
			income = income.Add(t.Amount)
		} else {
			expenses = expenses.Add(t.Amount)
		}
		row++
	}

	totals := []struct {
		label string
		value decimal.Decimal
	}{
		{"Total income", income},
		{"Total expenses", expenses},
		{"Balance", income.Sub(expenses)},
	}
	for _, total := range totals {
		values := []interface{}{total.label, "", "", "", total.value.InexactFloat64()}
		if err := f.SetSheetRow(SheetName, cell("A", row), &values); err != nil {
			return fmt.Errorf("write totals: %w", err)
		}
		if err := f.SetCellStyle(SheetName, cell("A", row), cell("E", row), totalStyle); err != nil {
			return fmt.Errorf("style totals: %w", err)
		}
		row++
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
