package reader_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	readers "github.com/zdziszkee/swiftcodes-api/internal/readers"
	"github.com/zdziszkee/swiftcodes-api/internal/readers/csv"
)

func TestCSV(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CSV Reader Suite")
}

type errorReader struct{}

func (e *errorReader) Read(p []byte) (n int, err error) {
	return 0, io.ErrUnexpectedEOF
}

const fullHeader = "COUNTRY ISO2 CODE,SWIFT CODE,CODE TYPE,NAME,ADDRESS,TOWN NAME,COUNTRY NAME,TIME ZONE"

var _ = Describe("CSVSwiftBanksReader", func() {
	var csvReader *csv.CSVSwiftBanksReader

	BeforeEach(func() {
		csvReader = &csv.CSVSwiftBanksReader{}
	})

	Context("LoadSwiftBanks", func() {
		It("should handle empty input", func() {
			records, err := csvReader.LoadSwiftBanks(strings.NewReader(""))
			Expect(err).To(Equal(io.EOF))
			Expect(records).To(BeEmpty())
		})

		It("should handle only header, no data", func() {
			records, err := csvReader.LoadSwiftBanks(strings.NewReader(fullHeader))
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})

		It("should read the spreadsheet export layout", func() {
			input := fullHeader + "\n" +
				"AL,AAISALTRXXX,BIC11,UNITED BANK OF ALBANIA SH.A,\"HYRJA 3 RR. DRITAN HOXHA ND. 11 TIRANA, TIRANA, 1023\",TIRANA,ALBANIA,Europe/Tirane\n" +
				"BG,ABIEBGS1XXX,BIC11,ABV INVESTMENTS LTD,\"TSAR ASEN 20  VARNA, VARNA, 9002\",VARNA,BULGARIA,Europe/Sofia"

			records, err := csvReader.LoadSwiftBanks(strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))

			Expect(records[0]).To(Equal(readers.SwiftBankRecord{
				Index:       1,
				CountryISO2: "AL",
				SwiftCode:   "AAISALTRXXX",
				BankName:    "UNITED BANK OF ALBANIA SH.A",
				Address:     "HYRJA 3 RR. DRITAN HOXHA ND. 11 TIRANA, TIRANA, 1023",
				CountryName: "ALBANIA",
			}))
			Expect(records[1].Index).To(Equal(2))
			Expect(records[1].SwiftCode).To(Equal("ABIEBGS1XXX"))
		})

		It("should locate columns by name regardless of order, case and spacing", func() {
			input := " swift code ,Address,  Name ,country name,COUNTRY ISO2 CODE\n" +
				"CHASUS33XXX, 123 Main St ,Chase Bank,United States,us"

			records, err := csvReader.LoadSwiftBanks(strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))

			record := records[0]
			Expect(record.SwiftCode).To(Equal("CHASUS33XXX"))
			Expect(record.CountryISO2).To(Equal("us"))
			Expect(record.BankName).To(Equal("Chase Bank"))
			Expect(record.Address).To(Equal(" 123 Main St "))
			Expect(record.CountryName).To(Equal("United States"))
		})

		It("should keep surrounding whitespace in field values", func() {
			input := "SWIFT CODE,NAME,ADDRESS,COUNTRY ISO2 CODE,COUNTRY NAME\n" +
				" CHASUS33XXX,  Chase Bank,123 Main St  , us,United States \n"

			records, err := csvReader.LoadSwiftBanks(strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(ConsistOf(readers.SwiftBankRecord{
				Index:       1,
				SwiftCode:   " CHASUS33XXX",
				BankName:    "  Chase Bank",
				Address:     "123 Main St  ",
				CountryISO2: " us",
				CountryName: "United States ",
			}))
		})

		It("should tolerate a byte order mark before the header", func() {
			input := "\ufeff" + fullHeader + "\n" +
				"PL,BPKOPLPWXXX,BIC11,PKO BANK POLSKI,WARSAW,WARSAW,POLAND,Europe/Warsaw"

			records, err := csvReader.LoadSwiftBanks(strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].CountryISO2).To(Equal("PL"))
		})

		It("should reject a header missing a required column", func() {
			input := "COUNTRY ISO2 CODE,SWIFT CODE,CODE TYPE,ADDRESS,TOWN NAME,COUNTRY NAME"
			_, err := csvReader.LoadSwiftBanks(strings.NewReader(input))
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, csv.ErrMissingColumn)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring(`"NAME"`))
		})

		It("should skip rows that are too short", func() {
			input := fullHeader + "\n" +
				"PL,BPKOPLPWXXX\n" +
				"PL,BPKOPLPW001,BIC11,PKO BANK POLSKI,WARSAW,WARSAW,POLAND,Europe/Warsaw"

			records, err := csvReader.LoadSwiftBanks(strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].SwiftCode).To(Equal("BPKOPLPW001"))
			Expect(records[0].Index).To(Equal(2))
		})

		It("should report malformed rows with their row number", func() {
			input := fullHeader + "\n" +
				"PL,\"BPKOPLPWXXX,BIC11,PKO,WARSAW,WARSAW,POLAND,Europe/Warsaw"

			_, err := csvReader.LoadSwiftBanks(strings.NewReader(input))
			Expect(err).To(MatchError(ContainSubstring("row 1")))
		})

		It("should surface read errors from the source", func() {
			_, err := csvReader.LoadSwiftBanks(&errorReader{})
			Expect(err).To(MatchError(io.ErrUnexpectedEOF))
		})
	})
})
