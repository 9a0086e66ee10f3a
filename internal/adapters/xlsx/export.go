// Package xlsx renders reservation exports as Excel workbooks.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

const sheetName = "Reservations"

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var columns = []string{
	"ID", "Reference", "Room", "Guest", "Check-in", "Check-out", "Status",
	"Nights", "Price/night", "Subtotal", "Taxes", "Discount", "Total", "Currency",
}

// WriteReservations writes one header row plus one row per line. Money
// columns are written as fixed two-decimal strings so no float rounding
// leaks into the sheet.
func WriteReservations(w io.Writer, lines []app.ExportLine) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		end, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = f.SetCellStyle(sheetName, "A1", end, style)
	}

	for i, ln := range lines {
		r, s := ln.Reservation, ln.Summary
		row := []any{
			r.ID, r.Reference, r.RoomID, r.GuestName,
			r.CheckIn.Format(domain.DateLayout), r.CheckOut.Format(domain.DateLayout), string(r.Status),
			s.Nights,
			s.PricePerNight.StringFixed(2), s.Subtotal.StringFixed(2), s.Taxes.StringFixed(2),
			s.Discount.StringFixed(2), s.Total.StringFixed(2), s.Currency,
		}
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, start, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}
