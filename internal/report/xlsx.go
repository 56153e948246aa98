// Package report renders administrative exports of reservation data.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/DTMaciejM/pracosfera-main/internal/application"
)

const reservationSheet = "Rezerwacje"

var reservationHeader = []string{
	"Numer", "Data", "Od", "Do", "Godziny", "Status", "Franczyzobiorca", "Pracownik",
}

// WriteReservationsXLSX renders the reservations as a spreadsheet and writes
// it to w.
func WriteReservationsXLSX(w io.Writer, reservations []application.Reservation) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reservationSheet)
	if err != nil {
		return fmt.Errorf("report: create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("report: delete default sheet: %w", err)
	}

	for col, title := range reservationHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("report: header cell: %w", err)
		}
		if err := f.SetCellValue(reservationSheet, cell, title); err != nil {
			return fmt.Errorf("report: write header: %w", err)
		}
	}

	for row, r := range reservations {
		values := []any{
			r.Number, r.Date, r.StartTime, r.EndTime, r.Hours,
			string(r.Status), r.FranchiseeID, r.WorkerID,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return fmt.Errorf("report: data cell: %w", err)
			}
			if err := f.SetCellValue(reservationSheet, cell, value); err != nil {
				return fmt.Errorf("report: write row: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report: write workbook: %w", err)
	}
	return nil
}
