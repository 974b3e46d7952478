package models

import "strings"

const (
	// SwiftCodeLength is the length of a full branch-level SWIFT code.
	SwiftCodeLength = 11
	// InstitutionPrefixLength covers bank, country and location codes.
	InstitutionPrefixLength = 8
	// HeadquarterSuffix marks the primary office of an institution.
	HeadquarterSuffix = "XXX"
)

// SwiftBank represents a row in the swift_banks table
type SwiftBank struct {
	SwiftCode     string `db:"swift_code" json:"swiftCode"`
	Address       string `db:"address" json:"address"`
	BankName      string `db:"bank_name" json:"bankName"`
	CountryISO2   string `db:"country_iso2" json:"countryISO2"`
	CountryName   string `db:"country_name" json:"countryName"`
	IsHeadquarter bool   `db:"is_headquarter" json:"isHeadquarter"`
}

// SwiftBankDetail is a bank together with its branches. Branches is nil
// unless the bank is flagged as a headquarters.
type SwiftBankDetail struct {
	Bank     SwiftBank
	Branches []SwiftBank
}

// CountrySwiftCodes holds all SWIFT codes registered for one country
type CountrySwiftCodes struct {
	CountryISO2 string
	CountryName string
	SwiftCodes  []SwiftBank
}

// InstitutionPrefix returns the first 8 characters of code, or the whole
// code when it is shorter.
func InstitutionPrefix(code string) string {
	runes := []rune(code)
	if len(runes) < InstitutionPrefixLength {
		return code
	}
	return string(runes[:InstitutionPrefixLength])
}

// IsHeadquarterCode reports whether code ends with the "XXX" branch code.
func IsHeadquarterCode(code string) bool {
	return strings.HasSuffix(code, HeadquarterSuffix)
}

// IsBranchOf reports whether b shares the institution prefix of code
// without being the record for code itself.
func (b SwiftBank) IsBranchOf(code string) bool {
	return b.SwiftCode != code && strings.HasPrefix(b.SwiftCode, InstitutionPrefix(code))
}

// BranchesOf filters candidates down to the branches of code.
func BranchesOf(code string, candidates []SwiftBank) []SwiftBank {
	branches := make([]SwiftBank, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.IsBranchOf(code) {
			branches = append(branches, candidate)
		}
	}
	return branches
}
