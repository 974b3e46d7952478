package reader

import (
	"io"
)

// Column names of the SWIFT codes spreadsheet export.
const (
	ColumnSwiftCode   = "SWIFT CODE"
	ColumnAddress     = "ADDRESS"
	ColumnBankName    = "NAME"
	ColumnCountryISO2 = "COUNTRY ISO2 CODE"
	ColumnCountryName = "COUNTRY NAME"
)

// RequiredColumns lists the columns a source must provide, in any order.
var RequiredColumns = []string{
	ColumnCountryISO2,
	ColumnSwiftCode,
	ColumnBankName,
	ColumnAddress,
	ColumnCountryName,
}

// SwiftBankRecord is one raw row of the source file, before validation.
type SwiftBankRecord struct {
	Index       int    // 1-based data row number
	CountryISO2 string // COUNTRY ISO2 CODE
	SwiftCode   string // SWIFT CODE
	BankName    string // NAME
	Address     string // ADDRESS
	CountryName string // COUNTRY NAME
}

// SwiftBanksReader reads raw bank records from a tabular source
type SwiftBanksReader interface {
	LoadSwiftBanks(reader io.Reader) ([]SwiftBankRecord, error)
}
