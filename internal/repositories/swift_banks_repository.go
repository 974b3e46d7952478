package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/zdziszkee/swiftcodes-api/internal/database"
	"github.com/zdziszkee/swiftcodes-api/internal/models"
)

var (
	ErrNotFound  = errors.New("swift code not found")
	ErrDuplicate = errors.New("swift code already exists")
)

const (
	columns     = "swift_code, address, bank_name, country_iso2, country_name, is_headquarter"
	placeholder = "(?, ?, ?, ?, ?, ?)"
	batchSize   = 100
)

// SwiftBanksRepository defines the persistence operations on SWIFT codes
type SwiftBanksRepository interface {
	FindByCode(ctx context.Context, code string) (*models.SwiftBank, error)
	FindByCountry(ctx context.Context, countryISO2 string) ([]models.SwiftBank, error)
	FindByPrefix(ctx context.Context, prefix string) ([]models.SwiftBank, error)
	Create(ctx context.Context, bank *models.SwiftBank) error
	CreateBatch(ctx context.Context, banks []*models.SwiftBank) (int, error)
	Delete(ctx context.Context, code string) error
	Ping(ctx context.Context) error
}

// SQLSwiftBanksRepository implements SwiftBanksRepository over database/sql.
// Backends without unique constraints get their check-and-write sequences
// serialized by mu.
type SQLSwiftBanksRepository struct {
	db      *sql.DB
	dialect database.Dialect
	table   string
	mu      sync.Mutex
}

var _ SwiftBanksRepository = (*SQLSwiftBanksRepository)(nil)

// NewSQLSwiftBanksRepository creates a repository bound to db's table and dialect
func NewSQLSwiftBanksRepository(db *database.Database) *SQLSwiftBanksRepository {
	return &SQLSwiftBanksRepository{
		db:      db.DB,
		dialect: db.Dialect,
		table:   db.TableName(),
	}
}

// FindByCode returns the record with exactly this code
func (r *SQLSwiftBanksRepository) FindByCode(ctx context.Context, code string) (*models.SwiftBank, error) {
	query := r.query("SELECT " + columns + " FROM " + r.table + " WHERE swift_code = ?")
	bank, err := scanBank(r.db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s query failed: %w", r.dialect, err)
	}
	return bank, nil
}

// FindByCountry returns every record registered under countryISO2. The code
// is compared verbatim; callers normalize it.
func (r *SQLSwiftBanksRepository) FindByCountry(ctx context.Context, countryISO2 string) ([]models.SwiftBank, error) {
	query := r.query("SELECT " + columns + " FROM " + r.table + " WHERE country_iso2 = ?" + r.dialect.OrderByInsertion())
	return r.queryBanks(ctx, query, countryISO2)
}

// FindByPrefix returns every record whose code starts with prefix. The match
// is case-sensitive on all backends, so LIKE is avoided.
func (r *SQLSwiftBanksRepository) FindByPrefix(ctx context.Context, prefix string) ([]models.SwiftBank, error) {
	query := r.query("SELECT " + columns + " FROM " + r.table + " WHERE substr(swift_code, 1, ?) = ?" + r.dialect.OrderByInsertion())
	return r.queryBanks(ctx, query, utf8.RuneCountInString(prefix), prefix)
}

// Create inserts a single record, failing with ErrDuplicate when the code is
// already stored.
func (r *SQLSwiftBanksRepository) Create(ctx context.Context, bank *models.SwiftBank) error {
	if r.dialect.EnforcesUniqueness() {
		query := r.query("INSERT INTO " + r.table + " (" + columns + ") VALUES " + placeholder + " ON CONFLICT (swift_code) DO NOTHING")
		result, err := r.db.ExecContext(ctx, query, bankArgs(bank)...)
		if err != nil {
			return fmt.Errorf("%s insert failed: %w", r.dialect, err)
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s insert failed: %w", r.dialect, err)
		}
		if inserted == 0 {
			return ErrDuplicate
		}
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkDuplicate(ctx, bank.SwiftCode); err != nil {
		return err
	}

	query := r.query("INSERT INTO " + r.table + " (" + columns + ") VALUES " + placeholder)
	if _, err := r.db.ExecContext(ctx, query, bankArgs(bank)...); err != nil {
		return fmt.Errorf("%s insert failed: %w", r.dialect, err)
	}
	return nil
}

// CreateBatch inserts banks in chunks, skipping any code that is already
// stored. It returns the number of rows actually inserted.
func (r *SQLSwiftBanksRepository) CreateBatch(ctx context.Context, banks []*models.SwiftBank) (int, error) {
	if len(banks) == 0 {
		return 0, nil
	}

	if !r.dialect.EnforcesUniqueness() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}

	inserted := 0
	for start := 0; start < len(banks); start += batchSize {
		end := min(start+batchSize, len(banks))

		n, err := r.insertChunk(ctx, banks[start:end])
		if err != nil {
			return inserted, fmt.Errorf("%s batch insert failed for rows %d-%d: %w", r.dialect, start+1, end, err)
		}
		inserted += n
	}

	slog.Debug("batch insert finished", "table", r.table, "rows", len(banks), "inserted", inserted)
	return inserted, nil
}

// Delete removes the record with this code
func (r *SQLSwiftBanksRepository) Delete(ctx context.Context, code string) error {
	query := r.query("DELETE FROM " + r.table + " WHERE swift_code = ?")

	if r.dialect.EnforcesUniqueness() {
		result, err := r.db.ExecContext(ctx, query, code)
		if err != nil {
			return fmt.Errorf("%s delete failed: %w", r.dialect, err)
		}
		deleted, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s delete failed: %w", r.dialect, err)
		}
		if deleted == 0 {
			return ErrNotFound
		}
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkExists(ctx, code); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("%s delete failed: %w", r.dialect, err)
	}
	return nil
}

// Ping verifies the underlying connection
func (r *SQLSwiftBanksRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Helper methods

func (r *SQLSwiftBanksRepository) query(q string) string {
	return r.dialect.Rebind(q)
}

func (r *SQLSwiftBanksRepository) insertChunk(ctx context.Context, chunk []*models.SwiftBank) (int, error) {
	if !r.dialect.EnforcesUniqueness() {
		existing, err := r.existingCodes(ctx, chunk)
		if err != nil {
			return 0, err
		}
		fresh := make([]*models.SwiftBank, 0, len(chunk))
		for _, bank := range chunk {
			if _, ok := existing[bank.SwiftCode]; ok {
				continue
			}
			existing[bank.SwiftCode] = struct{}{}
			fresh = append(fresh, bank)
		}
		if len(fresh) == 0 {
			return 0, nil
		}
		chunk = fresh
	}

	placeholders := make([]string, 0, len(chunk))
	args := make([]any, 0, len(chunk)*6)
	for _, bank := range chunk {
		placeholders = append(placeholders, placeholder)
		args = append(args, bankArgs(bank)...)
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO " + r.table + " (" + columns + ") VALUES ")
	sb.WriteString(strings.Join(placeholders, ", "))
	if r.dialect.EnforcesUniqueness() {
		sb.WriteString(" ON CONFLICT (swift_code) DO NOTHING")
	}

	result, err := r.db.ExecContext(ctx, r.query(sb.String()), args...)
	if err != nil {
		return 0, err
	}
	if !r.dialect.EnforcesUniqueness() {
		return len(chunk), nil
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(inserted), nil
}

func (r *SQLSwiftBanksRepository) existingCodes(ctx context.Context, chunk []*models.SwiftBank) (map[string]struct{}, error) {
	marks := make([]string, len(chunk))
	args := make([]any, len(chunk))
	for i, bank := range chunk {
		marks[i] = "?"
		args[i] = bank.SwiftCode
	}

	query := r.query("SELECT swift_code FROM " + r.table + " WHERE swift_code IN (" + strings.Join(marks, ", ") + ")")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("check existing codes failed: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]struct{}, len(chunk))
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("check existing codes failed: %w", err)
		}
		existing[code] = struct{}{}
	}
	return existing, rows.Err()
}

func (r *SQLSwiftBanksRepository) queryBanks(ctx context.Context, query string, args ...any) ([]models.SwiftBank, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s query failed: %w", r.dialect, err)
	}
	defer rows.Close()

	banks := []models.SwiftBank{}
	for rows.Next() {
		bank, err := scanBank(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan failed: %w", r.dialect, err)
		}
		banks = append(banks, *bank)
	}
	return banks, rows.Err()
}

func (r *SQLSwiftBanksRepository) checkDuplicate(ctx context.Context, code string) error {
	err := r.checkExists(ctx, code)
	if err == nil {
		return ErrDuplicate
	}
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (r *SQLSwiftBanksRepository) checkExists(ctx context.Context, code string) error {
	query := r.query("SELECT 1 FROM " + r.table + " WHERE swift_code = ? LIMIT 1")
	var exists int
	err := r.db.QueryRowContext(ctx, query, code).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s check exists failed: %w", r.dialect, err)
	}
	return nil
}

func bankArgs(bank *models.SwiftBank) []any {
	return []any{
		bank.SwiftCode,
		bank.Address,
		bank.BankName,
		bank.CountryISO2,
		bank.CountryName,
		bank.IsHeadquarter,
	}
}

func scanBank(scanner interface {
	Scan(dest ...any) error
}) (*models.SwiftBank, error) {
	var bank models.SwiftBank

	err := scanner.Scan(
		&bank.SwiftCode,
		&bank.Address,
		&bank.BankName,
		&bank.CountryISO2,
		&bank.CountryName,
		&bank.IsHeadquarter,
	)
	if err != nil {
		return nil, err
	}

	return &bank, nil
}
