// Package export renders a user's appointment history as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"groombot/internal/booking"
	"groombot/internal/model"
)

var columns = []string{"ID", "Servizio", "Cane", "Data", "Ora", "Stato", "Prezzo"}

// WriteWorkbook writes the partitioned appointments to w as an .xlsx file
// with one sheet per bucket.
func WriteWorkbook(w io.Writer, buckets booking.Buckets) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, "Prossimi", buckets.Upcoming, true); err != nil {
		return err
	}
	if err := writeSheet(f, "Passati e annullati", buckets.PastOrCancelled, false); err != nil {
		return err
	}
	return f.Write(w)
}

// Filename generates a workbook name like "appuntamenti_2024-06.xlsx".
func Filename(now time.Time) string {
	return fmt.Sprintf("appuntamenti_%s.xlsx", now.Format("2006-01"))
}

func writeSheet(f *excelize.File, name string, appts []model.Appointment, first bool) error {
	// Sheet names are capped at 31 chars by Excel.
	if len(name) > 31 {
		name = name[:31]
	}
	if first {
		f.SetSheetName("Sheet1", name)
	} else {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeRow(f, name, 1, headerValues()); err != nil {
		return err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		start, _ := excelize.CoordinatesToCellName(1, 1)
		end, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = f.SetCellStyle(name, start, end, style)
	}

	for i, a := range appts {
		if err := writeRow(f, name, i+2, rowValues(a)); err != nil {
			return err
		}
	}
	return nil
}

func headerValues() []interface{} {
	vals := make([]interface{}, len(columns))
	for i, c := range columns {
		vals[i] = c
	}
	return vals
}

func rowValues(a model.Appointment) []interface{} {
	price := ""
	if p, ok := a.ServicePrice(); ok {
		price = fmt.Sprintf("%.2f", p)
	}
	return []interface{}{
		a.ID,
		a.ServiceName(),
		a.DogName(),
		a.Date,
		a.Time,
		a.Status,
		price,
	}
}

func writeRow(f *excelize.File, sheet string, row int, vals []interface{}) error {
	for i, v := range vals {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
