package dto

import (
	"context"
	"strings"

	"github.com/billforge/billforge/internal/domain/moduleprice"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// CreateModulePriceRequest represents the request to add a module to the catalog
type CreateModulePriceRequest struct {
	Name       string          `json:"name" validate:"required"`
	PriceMonth decimal.Decimal `json:"price_month" validate:"required"`
	PriceYear  decimal.Decimal `json:"price_year" validate:"required"`
}

// UpdateModulePriceRequest represents the request to update a catalog entry
type UpdateModulePriceRequest struct {
	Name       *string          `json:"name,omitempty"`
	PriceMonth *decimal.Decimal `json:"price_month,omitempty"`
	PriceYear  *decimal.Decimal `json:"price_year,omitempty"`
}

// Validate validates the CreateModulePriceRequest
func (r *CreateModulePriceRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ierr.NewError("name is required").
			WithHint("Please provide a module name").
			Mark(ierr.ErrValidation)
	}
	if r.PriceMonth.IsNegative() || r.PriceYear.IsNegative() {
		return ierr.NewError("module prices must be non negative").
			WithHint("Please provide non negative prices").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Validate validates the UpdateModulePriceRequest
func (r *UpdateModulePriceRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return ierr.NewError("name must not be empty").
			WithHint("Please provide a module name").
			Mark(ierr.ErrValidation)
	}
	if r.PriceMonth != nil && r.PriceMonth.IsNegative() {
		return ierr.NewError("price_month must be non negative").
			WithHint("Please provide a non negative price").
			Mark(ierr.ErrValidation)
	}
	if r.PriceYear != nil && r.PriceYear.IsNegative() {
		return ierr.NewError("price_year must be non negative").
			WithHint("Please provide a non negative price").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToModulePrice converts the request to a module price domain model
func (r *CreateModulePriceRequest) ToModulePrice(ctx context.Context) *moduleprice.ModulePrice {
	return &moduleprice.ModulePrice{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_MODULE_PRICE),
		Name:       strings.TrimSpace(r.Name),
		PriceMonth: r.PriceMonth,
		PriceYear:  r.PriceYear,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
}

// ModulePriceResponse represents the response for module catalog data
type ModulePriceResponse struct {
	*moduleprice.ModulePrice `json:",inline"`

	// LogoURL is a presigned download URL, set when a logo is stored
	LogoURL *string `json:"logo_url,omitempty"`
}

// ListModulePricesResponse represents the response for listing the catalog
type ListModulePricesResponse = types.ListResponse[*ModulePriceResponse]
