// Package tsv parses the tab-separated doctorate dataset into a
// dataset.Table.
package tsv

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"phddash/domain/dataset"
	"phddash/internal/errors"
)

// Parse reads a header row followed by data rows. Year and Doctorate
// recipients are required columns; % change and decade are optional, and a
// missing decade is derived from Year.
func Parse(r io.Reader) (*dataset.Table, error) {
	hash := sha256.New()
	reader := csv.NewReader(io.TeeReader(r, hash))
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ParseError(0, err.Error()), "failed to read TSV")
	}
	if len(rows) == 0 {
		return nil, errors.ParseError(0, "dataset is empty")
	}
	if len(rows) < 2 {
		return nil, errors.ParseError(1, "dataset has a header but no data rows")
	}

	table, err := processRows(rows)
	if err != nil {
		return nil, err
	}
	table.Digest = hex.EncodeToString(hash.Sum(nil))
	return table, nil
}

type columnIndex struct {
	year, recipients, pctChange, decade int
}

func indexColumns(headers []string) (columnIndex, error) {
	idx := columnIndex{year: -1, recipients: -1, pctChange: -1, decade: -1}
	for i, h := range headers {
		switch h {
		case dataset.ColumnYear:
			idx.year = i
		case dataset.ColumnRecipients:
			idx.recipients = i
		case dataset.ColumnPctChange:
			idx.pctChange = i
		case dataset.ColumnDecade:
			idx.decade = i
		}
	}
	if idx.year < 0 {
		return idx, errors.ParseError(1, fmt.Sprintf("missing required column %q", dataset.ColumnYear))
	}
	if idx.recipients < 0 {
		return idx, errors.ParseError(1, fmt.Sprintf("missing required column %q", dataset.ColumnRecipients))
	}
	return idx, nil
}

func processRows(rows [][]string) (*dataset.Table, error) {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	idx, err := indexColumns(headers)
	if err != nil {
		return nil, err
	}

	table := &dataset.Table{
		Columns: headers,
		Records: make([]dataset.Record, 0, len(rows)-1),
	}
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		record, err := parseRecord(row, len(headers), idx, line)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, record)
	}
	if len(table.Records) == 0 {
		return nil, errors.ParseError(0, "dataset has no data rows")
	}
	return table, nil
}

func parseRecord(row []string, width int, idx columnIndex, line int) (dataset.Record, error) {
	cells := make([]string, width)
	for j := 0; j < width && j < len(row); j++ {
		cells[j] = strings.TrimSpace(row[j])
	}

	year, err := strconv.Atoi(cells[idx.year])
	if err != nil {
		return dataset.Record{}, errors.ParseError(line, fmt.Sprintf("invalid Year %q", cells[idx.year]))
	}
	recipients, ok := parseNumber(cells[idx.recipients])
	if !ok {
		return dataset.Record{}, errors.ParseError(line, fmt.Sprintf("invalid %s %q", dataset.ColumnRecipients, cells[idx.recipients]))
	}

	record := dataset.Record{
		Year:       year,
		Recipients: recipients,
		Cells:      cells,
	}
	if idx.pctChange >= 0 {
		record.PctChange, record.HasPctChange = parseNumber(cells[idx.pctChange])
	}
	if idx.decade >= 0 {
		record.Decade = cells[idx.decade]
	}
	if record.Decade == "" {
		record.Decade = DecadeOf(year)
	}
	return record, nil
}

// DecadeOf buckets a year into its ten-year span, for example 1987 -> "1980s"
func DecadeOf(year int) string {
	start := year / 10 * 10
	if year < 0 && year%10 != 0 {
		start -= 10
	}
	return fmt.Sprintf("%ds", start)
}

// parseNumber accepts thousands separators and a trailing percent sign.
// Empty, non-numeric and non-finite cells report ok=false.
func parseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
