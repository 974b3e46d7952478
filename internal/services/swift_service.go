package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/zdziszkee/swiftcodes-api/internal/metrics"
	"github.com/zdziszkee/swiftcodes-api/internal/models"
	repository "github.com/zdziszkee/swiftcodes-api/internal/repositories"
)

var (
	ErrNotFound        = errors.New("swift code not found")
	ErrCountryNotFound = errors.New("no swift codes found for country")
	ErrAlreadyExists   = errors.New("swift code already exists")
	ErrMissingFields   = errors.New("missing required fields")
)

// CreateSwiftCodeInput is the payload accepted when registering a code.
// IsHeadquarter is a pointer so an omitted flag can be told apart from false.
type CreateSwiftCodeInput struct {
	Address       string `json:"address"`
	BankName      string `json:"bankName"`
	CountryISO2   string `json:"countryISO2"`
	CountryName   string `json:"countryName"`
	IsHeadquarter *bool  `json:"isHeadquarter"`
	SwiftCode     string `json:"swiftCode"`
}

// SwiftService handles business logic for SWIFT codes
type SwiftService interface {
	GetSwiftCodeDetails(ctx context.Context, code string) (*models.SwiftBankDetail, error)
	GetSwiftCodesByCountry(ctx context.Context, countryISO2 string) (*models.CountrySwiftCodes, error)
	CreateSwiftCode(ctx context.Context, input CreateSwiftCodeInput) error
	DeleteSwiftCode(ctx context.Context, code string) error
}

type swiftService struct {
	repo    repository.SwiftBanksRepository
	metrics *metrics.Metrics
}

// NewSwiftService creates a new instance of the Swift service. m may be nil.
func NewSwiftService(repo repository.SwiftBanksRepository, m *metrics.Metrics) SwiftService {
	return &swiftService{repo: repo, metrics: m}
}

// GetSwiftCodeDetails retrieves a code and, for headquarters, its branches
func (s *swiftService) GetSwiftCodeDetails(ctx context.Context, code string) (detail *models.SwiftBankDetail, err error) {
	defer s.observe("get_by_code", time.Now(), &err)

	bank, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	detail = &models.SwiftBankDetail{Bank: *bank}
	if !bank.IsHeadquarter {
		return detail, nil
	}

	candidates, err := s.repo.FindByPrefix(ctx, models.InstitutionPrefix(bank.SwiftCode))
	if err != nil {
		return nil, err
	}
	detail.Branches = models.BranchesOf(bank.SwiftCode, candidates)

	slog.DebugContext(ctx, "resolved headquarters", "swift_code", bank.SwiftCode, "branches", len(detail.Branches))
	return detail, nil
}

// GetSwiftCodesByCountry retrieves all SWIFT codes for a country. The country
// name is taken from the first matching record.
func (s *swiftService) GetSwiftCodesByCountry(ctx context.Context, countryISO2 string) (codes *models.CountrySwiftCodes, err error) {
	defer s.observe("get_by_country", time.Now(), &err)

	countryISO2 = strings.ToUpper(countryISO2)
	banks, err := s.repo.FindByCountry(ctx, countryISO2)
	if err != nil {
		return nil, err
	}
	if len(banks) == 0 {
		return nil, ErrCountryNotFound
	}

	return &models.CountrySwiftCodes{
		CountryISO2: countryISO2,
		CountryName: banks[0].CountryName,
		SwiftCodes:  banks,
	}, nil
}

// CreateSwiftCode validates and stores a new SWIFT code. The headquarters
// flag is stored as supplied, whatever the code's suffix.
func (s *swiftService) CreateSwiftCode(ctx context.Context, input CreateSwiftCodeInput) (err error) {
	defer s.observe("create", time.Now(), &err)

	if missing := input.missingFields(); len(missing) > 0 {
		slog.DebugContext(ctx, "rejecting swift code", "swift_code", input.SwiftCode, "missing", missing)
		return ErrMissingFields
	}

	bank := &models.SwiftBank{
		SwiftCode:     input.SwiftCode,
		Address:       input.Address,
		BankName:      input.BankName,
		CountryISO2:   strings.ToUpper(input.CountryISO2),
		CountryName:   strings.ToUpper(input.CountryName),
		IsHeadquarter: *input.IsHeadquarter,
	}

	if err := s.repo.Create(ctx, bank); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// DeleteSwiftCode removes a SWIFT code
func (s *swiftService) DeleteSwiftCode(ctx context.Context, code string) (err error) {
	defer s.observe("delete", time.Now(), &err)

	if err := s.repo.Delete(ctx, code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *swiftService) observe(operation string, start time.Time, errp *error) {
	outcome := metrics.OutcomeSuccess
	switch err := *errp; {
	case err == nil:
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrCountryNotFound):
		outcome = metrics.OutcomeNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrMissingFields):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
	}
	s.metrics.ObserveOperation(operation, outcome, start)
}

func (in CreateSwiftCodeInput) missingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"swiftCode", in.SwiftCode},
		{"address", in.Address},
		{"bankName", in.BankName},
		{"countryISO2", in.CountryISO2},
		{"countryName", in.CountryName},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if in.IsHeadquarter == nil {
		missing = append(missing, "isHeadquarter")
	}
	return missing
}
