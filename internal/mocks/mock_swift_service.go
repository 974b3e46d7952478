package mocks

import (
	"context"

	"github.com/zdziszkee/swiftcodes-api/internal/models"
	service "github.com/zdziszkee/swiftcodes-api/internal/services"
)

// MockSwiftService implements service.SwiftService.
type MockSwiftService struct {
	GetSwiftCodeDetailsFunc    func(ctx context.Context, code string) (*models.SwiftBankDetail, error)
	GetSwiftCodesByCountryFunc func(ctx context.Context, countryISO2 string) (*models.CountrySwiftCodes, error)
	CreateSwiftCodeFunc        func(ctx context.Context, input service.CreateSwiftCodeInput) error
	DeleteSwiftCodeFunc        func(ctx context.Context, code string) error
}

func (m *MockSwiftService) GetSwiftCodeDetails(ctx context.Context, code string) (*models.SwiftBankDetail, error) {
	return m.GetSwiftCodeDetailsFunc(ctx, code)
}

func (m *MockSwiftService) GetSwiftCodesByCountry(ctx context.Context, countryISO2 string) (*models.CountrySwiftCodes, error) {
	return m.GetSwiftCodesByCountryFunc(ctx, countryISO2)
}

func (m *MockSwiftService) CreateSwiftCode(ctx context.Context, input service.CreateSwiftCodeInput) error {
	return m.CreateSwiftCodeFunc(ctx, input)
}

func (m *MockSwiftService) DeleteSwiftCode(ctx context.Context, code string) error {
	return m.DeleteSwiftCodeFunc(ctx, code)
}
