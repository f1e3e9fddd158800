package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/EgehanKilicarslan/library-api/internal/database/models"
)

// ContentType is the MIME type of generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	defaultSheet = "Sheet1"
	dateLayout   = time.RFC3339
)

// Header is the first row of every borrowing sheet
var Header = []string{"Borrowed Date", "Due Date", "Returned At", "Book Title", "User Name"}

// WriteBorrowings renders borrowings as a single-sheet workbook into w
func WriteBorrowings(w io.Writer, sheet string, borrowings []models.Borrowing) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Header))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 24); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	for i, b := range borrowings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		row := borrowingRow(b)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func borrowingRow(b models.Borrowing) []interface{} {
	returned := ""
	if b.ReturnedAt != nil {
		returned = b.ReturnedAt.UTC().Format(dateLayout)
	}

	title, name := "", ""
	if b.Book != nil {
		title = b.Book.Title
	}
	if b.User != nil {
		name = b.User.Name
	}

	return []interface{}{
		b.BorrowedAt.UTC().Format(dateLayout),
		b.DueAt.UTC().Format(dateLayout),
		returned,
		title,
		name,
	}
}
