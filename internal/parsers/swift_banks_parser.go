package parser

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/zdziszkee/swiftcodes-api/internal/models"
	readers "github.com/zdziszkee/swiftcodes-api/internal/readers"
)

// ParseResult holds the storable banks of one input together with the
// number of rows dropped on the way.
type ParseResult struct {
	Banks     []models.SwiftBank
	Malformed int // rows whose code is not 11 characters long
	Repeated  int // rows whose code already appeared earlier in the input
}

// SwiftBanksParser turns raw records into storable banks
type SwiftBanksParser interface {
	ParseSwiftBanks(swiftBankRecords []readers.SwiftBankRecord) (ParseResult, error)
}

// DefaultSwiftBanksParser keeps rows whose code is exactly 11 characters,
// drops repeated codes after their first occurrence and derives the
// headquarters flag from the "XXX" suffix.
type DefaultSwiftBanksParser struct{}

var _ SwiftBanksParser = DefaultSwiftBanksParser{}

func (p DefaultSwiftBanksParser) ParseSwiftBanks(swiftBankRecords []readers.SwiftBankRecord) (ParseResult, error) {
	result := ParseResult{Banks: make([]models.SwiftBank, 0, len(swiftBankRecords))}
	seen := make(map[string]struct{}, len(swiftBankRecords))

	for _, record := range swiftBankRecords {
		if utf8.RuneCountInString(record.SwiftCode) != models.SwiftCodeLength {
			slog.Debug("skipping record with malformed swift code", "row", record.Index, "swift_code", record.SwiftCode)
			result.Malformed++
			continue
		}
		if _, dup := seen[record.SwiftCode]; dup {
			slog.Debug("skipping repeated swift code", "row", record.Index, "swift_code", record.SwiftCode)
			result.Repeated++
			continue
		}
		seen[record.SwiftCode] = struct{}{}

		result.Banks = append(result.Banks, models.SwiftBank{
			SwiftCode:     record.SwiftCode,
			Address:       record.Address,
			BankName:      record.BankName,
			CountryISO2:   strings.ToUpper(record.CountryISO2),
			CountryName:   strings.ToUpper(record.CountryName),
			IsHeadquarter: models.IsHeadquarterCode(record.SwiftCode),
		})
	}

	return result, nil
}
