package mocks

import (
	"context"
	"errors"

	"github.com/zdziszkee/swiftcodes-api/internal/models"
)

// MockSwiftBanksRepository implements repository.SwiftBanksRepository for testing
type MockSwiftBanksRepository struct {
	FindByCodeFunc    func(ctx context.Context, code string) (*models.SwiftBank, error)
	FindByCountryFunc func(ctx context.Context, countryISO2 string) ([]models.SwiftBank, error)
	FindByPrefixFunc  func(ctx context.Context, prefix string) ([]models.SwiftBank, error)
	CreateFunc        func(ctx context.Context, bank *models.SwiftBank) error
	CreateBatchFunc   func(ctx context.Context, banks []*models.SwiftBank) (int, error)
	DeleteFunc        func(ctx context.Context, code string) error
	PingFunc          func(ctx context.Context) error
}

func (m *MockSwiftBanksRepository) FindByCode(ctx context.Context, code string) (*models.SwiftBank, error) {
	return m.FindByCodeFunc(ctx, code)
}

func (m *MockSwiftBanksRepository) FindByCountry(ctx context.Context, countryISO2 string) ([]models.SwiftBank, error) {
	return m.FindByCountryFunc(ctx, countryISO2)
}

func (m *MockSwiftBanksRepository) FindByPrefix(ctx context.Context, prefix string) ([]models.SwiftBank, error) {
	if m.FindByPrefixFunc != nil {
		return m.FindByPrefixFunc(ctx, prefix)
	}
	return nil, errors.New("FindByPrefix not implemented")
}

func (m *MockSwiftBanksRepository) Create(ctx context.Context, bank *models.SwiftBank) error {
	return m.CreateFunc(ctx, bank)
}

func (m *MockSwiftBanksRepository) CreateBatch(ctx context.Context, banks []*models.SwiftBank) (int, error) {
	return m.CreateBatchFunc(ctx, banks)
}

func (m *MockSwiftBanksRepository) Delete(ctx context.Context, code string) error {
	return m.DeleteFunc(ctx, code)
}

func (m *MockSwiftBanksRepository) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
