// Package export writes a table out in downloadable formats.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"phddash/domain/dataset"
	"phddash/internal/errors"
)

const sheetName = "Sheet1"

// WriteXLSX writes the table to a single-sheet workbook. Year and
// Doctorate recipients are stored as numbers; other cells as published.
func WriteXLSX(w io.Writer, t *dataset.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write header row")
	}

	for i, r := range t.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "failed to address row")
		}
		row := xlsxRow(t.Columns, r)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i+2)
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

func xlsxRow(columns []string, r dataset.Record) []interface{} {
	row := make([]interface{}, len(columns))
	for j, column := range columns {
		switch column {
		case dataset.ColumnYear:
			row[j] = r.Year
		case dataset.ColumnRecipients:
			row[j] = r.Recipients
		case dataset.ColumnPctChange:
			if r.HasPctChange {
				row[j] = r.PctChange
			} else {
				row[j] = nil
			}
		default:
			if j < len(r.Cells) {
				row[j] = r.Cells[j]
			}
		}
	}
	return row
}

// WriteTSV writes the table back out in its tab-separated form, raw cells
// unchanged.
func WriteTSV(w io.Writer, t *dataset.Table) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	if err := writer.Write(t.Columns); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for _, r := range t.Records {
		if err := writer.Write(r.Cells); err != nil {
			return errors.Wrap(err, "failed to write row "+strconv.Itoa(r.Year))
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "failed to flush TSV")
	}
	return nil
}
