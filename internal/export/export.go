// Package export renders task collections as spreadsheets.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Tasks"

// Header is the first row of the Tasks sheet.
var Header = []string{"Title", "Status", "Assigned To", "Categories", "Created By", "Created At"}

// TaskRow is one exported task, already resolved to display values.
type TaskRow struct {
	Title      string
	Status     string
	AssignedTo string
	Categories []string
	CreatedBy  string
	CreatedAt  time.Time
}

// TasksWorkbook renders rows into an xlsx workbook.
func TasksWorkbook(rows []TaskRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return nil, fmt.Errorf("export: stream writer: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("export: header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			r.Title,
			r.Status,
			r.AssignedTo,
			strings.Join(r.Categories, ", "),
			r.CreatedBy,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := sw.SetRow(cell, values); err != nil {
			return nil, fmt.Errorf("export: row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("export: flush: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write: %w", err)
	}
	return buf.Bytes(), nil
}
