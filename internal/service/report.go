package service

import (
	"context"
	"fmt"

	"restock-service/internal/util"

	"github.com/xuri/excelize/v2"
)

// SpendingReport builds an XLSX workbook with the monthly spend totals, the
// purchase-frequency ranking and the raw purchase log
func (s *StatsService) SpendingReport(ctx context.Context) ([]byte, error) {
	ctx, span := util.StartSpan(ctx, "StatsService.SpendingReport")
	defer span.End()

	monthly, top, history, names, err := s.loadReportData(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, "Monthly Spend"); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	sheet = "Monthly Spend"

	header := []interface{}{"month", "total"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, m := range monthly {
		row := []interface{}{m.Label, m.Total}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write monthly row: %w", err)
		}
	}

	topSheet := "Top Products"
	if _, err := f.NewSheet(topSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	header = []interface{}{"rank", "product", "purchases"}
	if err := f.SetSheetRow(topSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, entry := range top {
		row := []interface{}{i + 1, entry.Name, entry.Count}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(topSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write top-product row: %w", err)
		}
	}

	logSheet := "Purchases"
	if _, err := f.NewSheet(logSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	header = []interface{}{"date", "product", "quantity", "unit", "price"}
	if err := f.SetSheetRow(logSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, p := range history {
		name, ok := names[p.ProductID]
		if !ok {
			name = "Unknown"
		}
		row := []interface{}{p.Date.Format("2006-01-02"), name, p.Quantity, p.Unit}
		if p.Price != nil {
			row = append(row, *p.Price)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(logSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write purchase row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}
	return buf.Bytes(), nil
}
