package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/zdziszkee/swiftcodes-api/internal/logging"
	"github.com/zdziszkee/swiftcodes-api/internal/models"
	service "github.com/zdziszkee/swiftcodes-api/internal/services"
)

const (
	MsgCodeNotFound    = "SWIFT code not found"
	MsgCountryNotFound = "No SWIFT codes found for this country"
	MsgMissingFields   = "Missing required fields"
	MsgInvalidBody     = "Invalid request body"
	MsgAlreadyExists   = "SWIFT code already in the database"
	MsgCreated         = "SWIFT code added successfully"
	MsgDeleted         = "SWIFT code deleted successfully"
	MsgInternalError   = "Internal server error"
)

// SwiftCodeResponse is a single code as returned by the lookup endpoint.
// Fields are declared in alphabetical order to keep the JSON key order stable.
type SwiftCodeResponse struct {
	Address       string              `json:"address"`
	BankName      string              `json:"bankName"`
	Branches      *[]SwiftCodeSummary `json:"branches,omitempty"`
	CountryISO2   string              `json:"countryISO2"`
	CountryName   string              `json:"countryName"`
	IsHeadquarter bool                `json:"isHeadquarter"`
	SwiftCode     string              `json:"swiftCode"`
}

// SwiftCodeSummary is a code nested in a branch or country listing.
type SwiftCodeSummary struct {
	Address       string `json:"address"`
	BankName      string `json:"bankName"`
	CountryISO2   string `json:"countryISO2"`
	IsHeadquarter bool   `json:"isHeadquarter"`
	SwiftCode     string `json:"swiftCode"`
}

// CountrySwiftCodesResponse lists every code registered for a country.
type CountrySwiftCodesResponse struct {
	CountryISO2 string             `json:"countryISO2"`
	CountryName string             `json:"countryName"`
	SwiftCodes  []SwiftCodeSummary `json:"swiftCodes"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// SwiftHandler handles API requests for SWIFT codes
type SwiftHandler struct {
	service service.SwiftService
}

// NewSwiftHandler creates a new handler instance
func NewSwiftHandler(service service.SwiftService) *SwiftHandler {
	return &SwiftHandler{service: service}
}

// GetByCode handles requests for a specific SWIFT code. Headquarters carry
// their branches; branches carry no branches key at all.
func (h *SwiftHandler) GetByCode(c fiber.Ctx) error {
	code := c.Params("swiftCode")

	detail, err := h.service.GetSwiftCodeDetails(c.Context(), code)
	if err != nil {
		return handleError(c, err)
	}

	resp := SwiftCodeResponse{
		Address:       detail.Bank.Address,
		BankName:      detail.Bank.BankName,
		CountryISO2:   detail.Bank.CountryISO2,
		CountryName:   detail.Bank.CountryName,
		IsHeadquarter: detail.Bank.IsHeadquarter,
		SwiftCode:     detail.Bank.SwiftCode,
	}
	if detail.Bank.IsHeadquarter {
		branches := summarize(detail.Branches)
		resp.Branches = &branches
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// GetByCountry handles requests for all SWIFT codes by country
func (h *SwiftHandler) GetByCountry(c fiber.Ctx) error {
	codes, err := h.service.GetSwiftCodesByCountry(c.Context(), c.Params("countryISO2code"))
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(CountrySwiftCodesResponse{
		CountryISO2: codes.CountryISO2,
		CountryName: codes.CountryName,
		SwiftCodes:  summarize(codes.SwiftCodes),
	})
}

// Create handles creation of a new SWIFT code
func (h *SwiftHandler) Create(c fiber.Ctx) error {
	var input service.CreateSwiftCodeInput

	if err := c.Bind().Body(&input); err != nil {
		logging.FromContext(c.Context()).Debug("undecodable request body", "error", err)
		return respond(c, fiber.StatusBadRequest, MsgInvalidBody)
	}

	if err := h.service.CreateSwiftCode(c.Context(), input); err != nil {
		return handleError(c, err)
	}

	return respond(c, fiber.StatusCreated, MsgCreated)
}

// Delete handles deletion of a SWIFT code
func (h *SwiftHandler) Delete(c fiber.Ctx) error {
	if err := h.service.DeleteSwiftCode(c.Context(), c.Params("swiftCode")); err != nil {
		return handleError(c, err)
	}

	return respond(c, fiber.StatusOK, MsgDeleted)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness probes by pinging the store.
type HealthHandler struct {
	pinger  Pinger
	timeout time.Duration
}

func NewHealthHandler(pinger Pinger, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthHandler{pinger: pinger, timeout: timeout}
}

func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		logging.FromContext(c.Context()).Warn("health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

func summarize(banks []models.SwiftBank) []SwiftCodeSummary {
	out := make([]SwiftCodeSummary, 0, len(banks))
	for _, b := range banks {
		out = append(out, SwiftCodeSummary{
			Address:       b.Address,
			BankName:      b.BankName,
			CountryISO2:   b.CountryISO2,
			IsHeadquarter: b.IsHeadquarter,
			SwiftCode:     b.SwiftCode,
		})
	}
	return out
}

func respond(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(MessageResponse{Message: message})
}

// handleError maps service errors to responses
func handleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return respond(c, fiber.StatusNotFound, MsgCodeNotFound)
	case errors.Is(err, service.ErrCountryNotFound):
		return respond(c, fiber.StatusNotFound, MsgCountryNotFound)
	case errors.Is(err, service.ErrMissingFields):
		return respond(c, fiber.StatusBadRequest, MsgMissingFields)
	case errors.Is(err, service.ErrAlreadyExists):
		return respond(c, fiber.StatusBadRequest, MsgAlreadyExists)
	default:
		logging.FromContext(c.Context()).Error("request failed", "path", c.Path(), "error", err)
		return respond(c, fiber.StatusInternalServerError, MsgInternalError)
	}
}
