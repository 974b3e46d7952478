package repository_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zdziszkee/swiftcodes-api/internal/database"
	"github.com/zdziszkee/swiftcodes-api/internal/models"
	repo "github.com/zdziszkee/swiftcodes-api/internal/repositories"
)

var _ = Describe("SQLSwiftBanksRepository on sqlite", func() {
	var (
		db         *database.Database
		repository *repo.SQLSwiftBanksRepository
		ctx        context.Context
	)

	hq := models.SwiftBank{
		SwiftCode:     "HQBNDEFFXXX",
		Address:       "100 HQ St",
		BankName:      "HQ Bank",
		CountryISO2:   "DE",
		CountryName:   "GERMANY",
		IsHeadquarter: true,
	}
	branch := models.SwiftBank{
		SwiftCode:   "HQBNDEFF001",
		Address:     "101 Branch Ave",
		BankName:    "HQ Bank",
		CountryISO2: "DE",
		CountryName: "GERMANY",
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = database.New(ctx, database.Config{
			Type: "sqlite",
			DSN:  filepath.Join(GinkgoT().TempDir(), "swift.db"),
		})
		Expect(err).NotTo(HaveOccurred())
		repository = repo.NewSQLSwiftBanksRepository(db)
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	It("should return the same field values after an insert", func() {
		bank := hq
		Expect(repository.Create(ctx, &bank)).To(Succeed())

		found, err := repository.FindByCode(ctx, hq.SwiftCode)
		Expect(err).NotTo(HaveOccurred())
		Expect(*found).To(Equal(hq))
	})

	It("should keep exact-match semantics for lookups", func() {
		bank := hq
		Expect(repository.Create(ctx, &bank)).To(Succeed())

		_, err := repository.FindByCode(ctx, "hqbndeffxxx")
		Expect(err).To(MatchError(repo.ErrNotFound))
	})

	It("should reject a duplicate and leave the original row untouched", func() {
		bank := hq
		Expect(repository.Create(ctx, &bank)).To(Succeed())

		duplicate := hq
		duplicate.BankName = "Impostor Bank"
		Expect(repository.Create(ctx, &duplicate)).To(MatchError(repo.ErrDuplicate))

		found, err := repository.FindByCode(ctx, hq.SwiftCode)
		Expect(err).NotTo(HaveOccurred())
		Expect(found.BankName).To(Equal("HQ Bank"))

		var count int
		Expect(db.QueryRow("SELECT COUNT(*) FROM swift_banks").Scan(&count)).To(Succeed())
		Expect(count).To(Equal(1))
	})

	It("should make a deleted code unreachable", func() {
		bank := hq
		Expect(repository.Create(ctx, &bank)).To(Succeed())
		Expect(repository.Delete(ctx, hq.SwiftCode)).To(Succeed())

		_, err := repository.FindByCode(ctx, hq.SwiftCode)
		Expect(err).To(MatchError(repo.ErrNotFound))
		Expect(repository.Delete(ctx, hq.SwiftCode)).To(MatchError(repo.ErrNotFound))
	})

	It("should find records by case-sensitive prefix", func() {
		other := models.SwiftBank{SwiftCode: "hqbndeff002", Address: "x", BankName: "x", CountryISO2: "DE", CountryName: "GERMANY"}
		_, err := repository.CreateBatch(ctx, []*models.SwiftBank{&hq, &branch, &other})
		Expect(err).NotTo(HaveOccurred())

		banks, err := repository.FindByPrefix(ctx, "HQBNDEFF")
		Expect(err).NotTo(HaveOccurred())
		Expect(banks).To(ConsistOf(hq, branch))
	})

	It("should find records by a prefix containing multi-byte characters", func() {
		umlautHQ := models.SwiftBank{SwiftCode: "ÄBCDEFGHXXX", Address: "1 Platz", BankName: "Umlaut Bank", CountryISO2: "DE", CountryName: "GERMANY", IsHeadquarter: true}
		umlautBranch := models.SwiftBank{SwiftCode: "ÄBCDEFGH001", Address: "2 Platz", BankName: "Umlaut Bank", CountryISO2: "DE", CountryName: "GERMANY"}
		_, err := repository.CreateBatch(ctx, []*models.SwiftBank{&umlautHQ, &umlautBranch, &hq})
		Expect(err).NotTo(HaveOccurred())

		banks, err := repository.FindByPrefix(ctx, models.InstitutionPrefix(umlautHQ.SwiftCode))
		Expect(err).NotTo(HaveOccurred())
		Expect(banks).To(ConsistOf(umlautHQ, umlautBranch))
	})

	It("should find records by country in insertion order", func() {
		polish := models.SwiftBank{SwiftCode: "BPKOPLPWXXX", Address: "Warsaw", BankName: "PKO", CountryISO2: "PL", CountryName: "POLAND", IsHeadquarter: true}
		_, err := repository.CreateBatch(ctx, []*models.SwiftBank{&hq, &polish, &branch})
		Expect(err).NotTo(HaveOccurred())

		banks, err := repository.FindByCountry(ctx, "DE")
		Expect(err).NotTo(HaveOccurred())
		Expect(banks).To(Equal([]models.SwiftBank{hq, branch}))
	})

	It("should skip already stored codes when seeding twice", func() {
		inserted, err := repository.CreateBatch(ctx, []*models.SwiftBank{&hq, &branch})
		Expect(err).NotTo(HaveOccurred())
		Expect(inserted).To(Equal(2))

		inserted, err = repository.CreateBatch(ctx, []*models.SwiftBank{&hq, &branch})
		Expect(err).NotTo(HaveOccurred())
		Expect(inserted).To(BeZero())
	})

	It("should accept exactly one of many concurrent inserts of the same code", func() {
		const writers = 16

		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			successes  int
			duplicates int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()

				bank := hq
				bank.BankName = fmt.Sprintf("writer %d", i)
				err := repository.Create(ctx, &bank)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, repo.ErrDuplicate):
					duplicates++
				default:
					Fail(err.Error())
				}
			}(i)
		}
		wg.Wait()

		Expect(successes).To(Equal(1))
		Expect(duplicates).To(Equal(writers - 1))
	})

	It("should answer pings", func() {
		Expect(repository.Ping(ctx)).To(Succeed())
	})
})
