package excel

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// readWorkbook opens the workbook, resolves the target sheet, and reads
// either the requested range or the whole used range.
func readWorkbook(request *Request, logger *logrus.Logger) (*Response, error) {
	f, err := excelize.OpenFile(request.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("Failed to close workbook")
		}
	}()

	sheet := request.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	} else {
		idx, err := f.GetSheetIndex(sheet)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("sheet not found: %s", sheet)
		}
	}

	var rows [][]string
	if request.Range != "" {
		rows, err = readRange(f, sheet, request.Range)
	} else {
		rows, err = f.GetRows(sheet)
	}
	if err != nil {
		return nil, err
	}

	headers, data := shapeRows(rows, request.HasHeader)

	columns := len(headers)
	if columns == 0 && len(rows) > 0 {
		columns = len(rows[0])
	}

	return &Response{
		File:    request.FilePath,
		Sheet:   sheet,
		Rows:    len(data),
		Columns: columns,
		Headers: headers,
		Data:    data,
	}, nil
}

// readRange reads every cell of an A1-notation range, preserving the full
// rectangular width (unlike GetRows, which trims trailing empty cells).
func readRange(f *excelize.File, sheet, cellRange string) ([][]string, error) {
	startCol, startRow, endCol, endRow, err := parseRange(cellRange)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, endRow-startRow+1)
	for r := startRow; r <= endRow; r++ {
		row := make([]string, 0, endCol-startCol+1)
		for c := startCol; c <= endCol; c++ {
			cell, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return nil, fmt.Errorf("invalid cell coordinates (%d,%d): %w", c, r, err)
			}
			value, err := f.GetCellValue(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("failed to read cell %s: %w", cell, err)
			}
			row = append(row, value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseRange parses "A1:D10" (or a single cell "B2") into 1-based
// coordinates, normalising a reversed corner order.
func parseRange(cellRange string) (startCol, startRow, endCol, endRow int, err error) {
	start, end, found := strings.Cut(cellRange, ":")
	if !found {
		end = start
	}

	startCol, startRow, err = excelize.CellNameToCoordinates(strings.TrimSpace(start))
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid cell range %q: %w", cellRange, err)
	}
	endCol, endRow, err = excelize.CellNameToCoordinates(strings.TrimSpace(end))
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid cell range %q: %w", cellRange, err)
	}

	if endCol < startCol {
		startCol, endCol = endCol, startCol
	}
	if endRow < startRow {
		startRow, endRow = endRow, startRow
	}
	return startCol, startRow, endCol, endRow, nil
}

// shapeRows turns raw rows into the response shape. With a header row, each
// data row zips against the headers up to the shorter of the two.
func shapeRows(rows [][]string, hasHeader bool) ([]string, []any) {
	if !hasHeader {
		data := make([]any, 0, len(rows))
		for _, row := range rows {
			data = append(data, row)
		}
		return nil, data
	}

	if len(rows) == 0 {
		return nil, []any{}
	}

	headers := rows[0]
	data := make([]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		for i := 0; i < len(headers) && i < len(row); i++ {
			record[headers[i]] = row[i]
		}
		data = append(data, record)
	}
	return headers, data
}

// renderCSV writes headers (when present) then one line per row. Records
// are emitted in header-column order.
func renderCSV(response *Response) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if len(response.Headers) > 0 {
		_ = w.Write(response.Headers)
	}

	for _, entry := range response.Data {
		switch row := entry.(type) {
		case []string:
			_ = w.Write(row)
		case map[string]string:
			fields := make([]string, len(response.Headers))
			for i, h := range response.Headers {
				fields[i] = row[h]
			}
			_ = w.Write(fields)
		}
	}

	w.Flush()
	return sb.String()
}
