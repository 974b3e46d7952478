package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	readers "github.com/zdziszkee/swiftcodes-api/internal/readers"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// CSVSwiftBanksReader reads the SWIFT codes spreadsheet exported as CSV.
// Columns are located by header name; extra columns are ignored.
type CSVSwiftBanksReader struct{}

var _ readers.SwiftBanksReader = (*CSVSwiftBanksReader)(nil)

// LoadSwiftBanks reads every data row. Rows too short to hold all required
// columns are skipped. Field values are returned exactly as written.
func (c *CSVSwiftBanksReader) LoadSwiftBanks(reader io.Reader) ([]readers.SwiftBankRecord, error) {
	csvReader := csv.NewReader(reader)
	csvReader.ReuseRecord = true
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err != nil {
		if err == io.EOF {
			return []readers.SwiftBankRecord{}, io.EOF
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	headerMap := make(map[string]int, len(header))
	for i, col := range header {
		headerMap[normalizeColumn(col)] = i
	}

	positions := make(map[string]int, len(readers.RequiredColumns))
	width := 0
	for _, col := range readers.RequiredColumns {
		idx, ok := headerMap[col]
		if !ok {
			return nil, fmt.Errorf("invalid header: %w %q", ErrMissingColumn, col)
		}
		positions[col] = idx
		width = max(width, idx+1)
	}

	records := []readers.SwiftBankRecord{}
	for rowNum := 1; ; rowNum++ {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		if len(row) < width {
			slog.Debug("skipping short csv row", "row", rowNum, "fields", len(row))
			continue
		}

		// Values are kept verbatim; only header names are normalized.
		getVal := func(col string) string {
			return row[positions[col]]
		}

		records = append(records, readers.SwiftBankRecord{
			Index:       rowNum,
			SwiftCode:   getVal(readers.ColumnSwiftCode),
			BankName:    getVal(readers.ColumnBankName),
			CountryISO2: getVal(readers.ColumnCountryISO2),
			Address:     getVal(readers.ColumnAddress),
			CountryName: getVal(readers.ColumnCountryName),
		})
	}

	return records, nil
}

func normalizeColumn(col string) string {
	col = strings.TrimPrefix(col, "\ufeff")
	return strings.Join(strings.Fields(strings.ToUpper(col)), " ")
}
