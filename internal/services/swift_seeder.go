package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/zdziszkee/swiftcodes-api/internal/metrics"
	"github.com/zdziszkee/swiftcodes-api/internal/models"
	parser "github.com/zdziszkee/swiftcodes-api/internal/parsers"
	readers "github.com/zdziszkee/swiftcodes-api/internal/readers"
	repository "github.com/zdziszkee/swiftcodes-api/internal/repositories"
)

const defaultSeedBatchSize = 1000

// SeedResult summarizes one seeding run.
type SeedResult struct {
	Read     int // data rows read from the source
	Invalid  int // rows whose code is malformed
	Inserted int // rows written to the store
	Skipped  int // rows whose code was already stored or repeated earlier in the input
	Duration time.Duration
}

// SwiftSeeder populates the store from a CSV export before the server starts.
// Running it again is harmless: codes already stored are skipped.
type SwiftSeeder struct {
	reader    readers.SwiftBanksReader
	parser    parser.SwiftBanksParser
	repo      repository.SwiftBanksRepository
	metrics   *metrics.Metrics
	batchSize int
}

// NewSwiftSeeder wires a seeder. A non-positive batchSize selects the default.
func NewSwiftSeeder(
	r readers.SwiftBanksReader,
	p parser.SwiftBanksParser,
	repo repository.SwiftBanksRepository,
	m *metrics.Metrics,
	batchSize int,
) *SwiftSeeder {
	if batchSize <= 0 {
		batchSize = defaultSeedBatchSize
	}
	return &SwiftSeeder{
		reader:    r,
		parser:    p,
		repo:      repo,
		metrics:   m,
		batchSize: batchSize,
	}
}

// SeedFile opens filePath and seeds the store from it.
func (s *SwiftSeeder) SeedFile(ctx context.Context, filePath string) (SeedResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return SeedResult{}, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	return s.Seed(ctx, file)
}

// Seed reads, validates and bulk-inserts every row of input. An empty input
// seeds nothing and is not an error.
func (s *SwiftSeeder) Seed(ctx context.Context, input io.Reader) (SeedResult, error) {
	start := time.Now()
	var result SeedResult

	records, err := s.reader.LoadSwiftBanks(input)
	if err != nil && !errors.Is(err, io.EOF) {
		return result, fmt.Errorf("failed to read SWIFT data: %w", err)
	}
	result.Read = len(records)

	parsed, err := s.parser.ParseSwiftBanks(records)
	if err != nil {
		return result, fmt.Errorf("failed to parse SWIFT data: %w", err)
	}
	banks := parsed.Banks
	result.Invalid = parsed.Malformed
	result.Skipped = parsed.Repeated
	s.metrics.AddSeedRows(metrics.SeedInvalid, parsed.Malformed)
	s.metrics.AddSeedRows(metrics.SeedSkipped, parsed.Repeated)

	batch := make([]*models.SwiftBank, 0, s.batchSize)
	for i := range banks {
		batch = append(batch, &banks[i])

		if len(batch) == s.batchSize || i == len(banks)-1 {
			inserted, err := s.repo.CreateBatch(ctx, batch)
			result.Inserted += inserted
			result.Skipped += len(batch) - inserted
			s.metrics.AddSeedRows(metrics.SeedInserted, inserted)
			s.metrics.AddSeedRows(metrics.SeedSkipped, len(batch)-inserted)
			if err != nil {
				return result, fmt.Errorf("failed to insert batch of %d SWIFT codes: %w", len(batch), err)
			}
			batch = batch[:0]
		}
	}

	result.Duration = time.Since(start)
	slog.InfoContext(ctx, "seeded SWIFT codes",
		"read", result.Read,
		"invalid", result.Invalid,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"duration", result.Duration,
	)
	return result, nil
}
