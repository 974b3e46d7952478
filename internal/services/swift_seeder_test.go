package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/zdziszkee/swiftcodes-api/internal/database"
	"github.com/zdziszkee/swiftcodes-api/internal/metrics"
	"github.com/zdziszkee/swiftcodes-api/internal/mocks"
	"github.com/zdziszkee/swiftcodes-api/internal/models"
	parser "github.com/zdziszkee/swiftcodes-api/internal/parsers"
	"github.com/zdziszkee/swiftcodes-api/internal/readers/csv"
	repository "github.com/zdziszkee/swiftcodes-api/internal/repositories"
	service "github.com/zdziszkee/swiftcodes-api/internal/services"
)

const seedCSV = `COUNTRY ISO2 CODE,SWIFT CODE,CODE TYPE,NAME,ADDRESS,TOWN NAME,COUNTRY NAME,TIME ZONE
de,HQBNDEFFXXX,BIC11,HQ BANK,100 HQ ST,FRANKFURT,germany,Europe/Berlin
DE,HQBNDEFF001,BIC11,HQ BANK,101 BRANCH AVE,FRANKFURT,GERMANY,Europe/Berlin
DE,HQBNDEFF001,BIC11,HQ BANK DUPLICATE,102 BRANCH AVE,FRANKFURT,GERMANY,Europe/Berlin
PL,SHORT,BIC11,BROKEN BANK,NOWHERE,WARSAW,POLAND,Europe/Warsaw
PL,BPKOPLPWXXX,BIC11,PKO BANK POLSKI,WARSAW,WARSAW,POLAND,Europe/Warsaw
`

var _ = Describe("SwiftSeeder", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("with a mocked repository", func() {
		It("should batch valid rows, count malformed ones as invalid and repeated ones as skipped", func() {
			var batchSizes []int
			var codes []string
			repo := &mocks.MockSwiftBanksRepository{
				CreateBatchFunc: func(ctx context.Context, banks []*models.SwiftBank) (int, error) {
					batchSizes = append(batchSizes, len(banks))
					for _, b := range banks {
						codes = append(codes, b.SwiftCode)
					}
					return len(banks), nil
				},
			}
			m := metrics.New(prometheus.NewRegistry())
			seeder := service.NewSwiftSeeder(&csv.CSVSwiftBanksReader{}, parser.DefaultSwiftBanksParser{}, repo, m, 2)

			result, err := seeder.Seed(ctx, strings.NewReader(seedCSV))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Read).To(Equal(5))
			Expect(result.Invalid).To(Equal(1))
			Expect(result.Inserted).To(Equal(3))
			Expect(result.Skipped).To(Equal(1))
			Expect(batchSizes).To(Equal([]int{2, 1}))
			Expect(codes).To(Equal([]string{"HQBNDEFFXXX", "HQBNDEFF001", "BPKOPLPWXXX"}))

			Expect(testutil.ToFloat64(m.SeedRows.WithLabelValues(metrics.SeedInserted))).To(Equal(3.0))
			Expect(testutil.ToFloat64(m.SeedRows.WithLabelValues(metrics.SeedInvalid))).To(Equal(1.0))
			Expect(testutil.ToFloat64(m.SeedRows.WithLabelValues(metrics.SeedSkipped))).To(Equal(1.0))
		})

		It("should treat an empty source as nothing to seed", func() {
			repo := &mocks.MockSwiftBanksRepository{}
			seeder := service.NewSwiftSeeder(&csv.CSVSwiftBanksReader{}, parser.DefaultSwiftBanksParser{}, repo, nil, 0)

			result, err := seeder.Seed(ctx, strings.NewReader(""))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Read).To(BeZero())
			Expect(result.Inserted).To(BeZero())
		})

		It("should stop on a failing batch", func() {
			repo := &mocks.MockSwiftBanksRepository{
				CreateBatchFunc: func(ctx context.Context, banks []*models.SwiftBank) (int, error) {
					return 0, errors.New("disk full")
				},
			}
			seeder := service.NewSwiftSeeder(&csv.CSVSwiftBanksReader{}, parser.DefaultSwiftBanksParser{}, repo, nil, 10)

			_, err := seeder.Seed(ctx, strings.NewReader(seedCSV))
			Expect(err).To(MatchError(ContainSubstring("disk full")))
		})

		It("should fail on a header without required columns", func() {
			repo := &mocks.MockSwiftBanksRepository{}
			seeder := service.NewSwiftSeeder(&csv.CSVSwiftBanksReader{}, parser.DefaultSwiftBanksParser{}, repo, nil, 10)

			_, err := seeder.Seed(ctx, strings.NewReader("SWIFT CODE,NAME\nAAAAAAAAXXX,A"))
			Expect(err).To(MatchError(csv.ErrMissingColumn))
		})

		It("should report a missing file", func() {
			seeder := service.NewSwiftSeeder(&csv.CSVSwiftBanksReader{}, parser.DefaultSwiftBanksParser{}, &mocks.MockSwiftBanksRepository{}, nil, 10)

			_, err := seeder.SeedFile(ctx, filepath.Join(GinkgoT().TempDir(), "missing.csv"))
			Expect(err).To(MatchError(ContainSubstring("failed to open file")))
		})
	})

	Context("with sqlite", func() {
		var repo *repository.SQLSwiftBanksRepository

		BeforeEach(func() {
			db, err := database.New(ctx, database.Config{
				Type: "sqlite",
				DSN:  filepath.Join(GinkgoT().TempDir(), "seed.db"),
			})
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(db.Close)
			repo = repository.NewSQLSwiftBanksRepository(db)
		})

		It("should be idempotent across runs", func() {
			seeder := service.NewSwiftSeeder(&csv.CSVSwiftBanksReader{}, parser.DefaultSwiftBanksParser{}, repo, nil, 100)

			first, err := seeder.Seed(ctx, strings.NewReader(seedCSV))
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Inserted).To(Equal(3))
			Expect(first.Skipped).To(Equal(1))

			second, err := seeder.Seed(ctx, strings.NewReader(seedCSV))
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Inserted).To(BeZero())
			Expect(second.Skipped).To(Equal(4))
			Expect(second.Invalid).To(Equal(1))

			hq, err := repo.FindByCode(ctx, "HQBNDEFFXXX")
			Expect(err).NotTo(HaveOccurred())
			Expect(hq.IsHeadquarter).To(BeTrue())
			Expect(hq.CountryISO2).To(Equal("DE"))
			Expect(hq.CountryName).To(Equal("GERMANY"))

			branch, err := repo.FindByCode(ctx, "HQBNDEFF001")
			Expect(err).NotTo(HaveOccurred())
			Expect(branch.IsHeadquarter).To(BeFalse())
			Expect(branch.Address).To(Equal("101 BRANCH AVE"))
		})
	})
})
