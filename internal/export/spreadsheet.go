package export

import (
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/extra-life-tools/donation-queue/internal/core"
)

// SheetName is the fixed worksheet that export rows land on.
const SheetName = "Donations"

// appendWorkbookRow appends one record to the workbook at path, creating the
// workbook with a header row if it does not exist yet. The entire file is
// read and rewritten on every call; cost grows with the file, which is the
// accepted tradeoff of the spreadsheet format.
func appendWorkbookRow(path string, rec core.DonationRecord) error {
	wb, err := openOrCreateWorkbook(path)
	if err != nil {
		return err
	}
	defer wb.Close()

	rows, err := wb.GetRows(SheetName)
	if err != nil {
		return fmt.Errorf("read sheet: %w", err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("locate row: %w", err)
	}

	values := row(rec)
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := wb.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("write row: %w", err)
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// openOrCreateWorkbook opens the workbook at path, or builds a fresh one
// whose only sheet is SheetName with the header row in place.
func openOrCreateWorkbook(path string) (*excelize.File, error) {
	wb, err := excelize.OpenFile(path)
	if err == nil {
		// Older exports may predate the named sheet.
		if idx, err := wb.GetSheetIndex(SheetName); err == nil && idx < 0 {
			if _, err := wb.NewSheet(SheetName); err != nil {
				wb.Close()
				return nil, fmt.Errorf("add sheet: %w", err)
			}
			if err := writeHeader(wb); err != nil {
				wb.Close()
				return nil, err
			}
		}
		return wb, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	wb = excelize.NewFile()
	if err := wb.SetSheetName(wb.GetSheetName(0), SheetName); err != nil {
		wb.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	if err := writeHeader(wb); err != nil {
		wb.Close()
		return nil, err
	}
	return wb, nil
}

func writeHeader(wb *excelize.File) error {
	cells := make([]any, len(Header))
	for i, h := range Header {
		cells[i] = h
	}
	if err := wb.SetSheetRow(SheetName, "A1", &cells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}
