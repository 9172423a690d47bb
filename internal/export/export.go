// Package export renders bookings as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"carrental/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var headers = []string{
	"ID", "Customer", "Car", "Pickup", "Dropoff", "Days",
	"Pickup location", "Dropoff location", "Extras",
	"Base", "Extras total", "Tax", "Total", "Status", "Created",
}

// Bookings builds a workbook with one row per booking. The caller must close it.
func Bookings(bookings []*models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2})
	for i, b := range bookings {
		row := i + 2
		extras := make([]string, 0, len(b.AdditionalServices))
		for _, id := range b.AdditionalServices {
			extras = append(extras, models.ServiceName(id))
		}

		values := []interface{}{
			b.ID,
			b.CustomerName,
			b.CarName,
			b.StartDate.Format("2006-01-02"),
			b.EndDate.Format("2006-01-02"),
			b.TotalDays,
			b.PickupLocation,
			b.DropoffLocation,
			strings.Join(extras, ", "),
			b.BasePrice,
			b.ServicesPrice,
			b.Tax,
			b.TotalPrice,
			b.Status,
			b.CreatedAt.Format(time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("error writing row %d: %w", row, err)
		}

		from, _ := excelize.CoordinatesToCellName(10, row)
		to, _ := excelize.CoordinatesToCellName(13, row)
		_ = f.SetCellStyle(sheetName, from, to, moneyStyle)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "C", 22)
	_ = f.SetColWidth(sheetName, "D", "H", 16)
	_ = f.SetColWidth(sheetName, "I", "I", 36)
	_ = f.SetColWidth(sheetName, "J", "O", 14)
	_ = f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	return f, nil
}

// WriteBookings streams the workbook to w.
func WriteBookings(w io.Writer, bookings []*models.Booking) error {
	f, err := Bookings(bookings)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// SaveBookings writes the workbook under dir and returns its path.
func SaveBookings(dir string, bookings []*models.Booking, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := Bookings(bookings)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, FileName(now))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return path, nil
}

func FileName(now time.Time) string {
	return fmt.Sprintf("bookings_%s.xlsx", now.Format("2006-01-02_150405"))
}
