package dto

import "github.com/google/uuid"

type PlanResponse struct {
	Id            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	BillingModel  string    `json:"billing_model"`
	PriceMonthly  float64   `json:"price_monthly"`
	PriceYearly   float64   `json:"price_yearly"`
	PriceLifetime float64   `json:"price_lifetime"`
	Currency      string    `json:"currency"`
	Limits        PlanLimits `json:"limits"`
	IsDefault     bool      `json:"is_default"`
}

type UpsertPlanRequest struct {
	Name          string  `json:"name" validate:"required"`
	Slug          string  `json:"slug" validate:"required"`
	Description   string  `json:"description"`
	BillingModel  string  `json:"billing_model" validate:"required,oneof=recurring lifetime"`
	PriceMonthly  float64 `json:"price_monthly" validate:"gte=0"`
	PriceYearly   float64 `json:"price_yearly" validate:"gte=0"`
	PriceLifetime float64 `json:"price_lifetime" validate:"gte=0"`
	Currency      string  `json:"currency" validate:"required,len=3"`

	MaxForms              int `json:"max_forms" validate:"gte=-1"`
	MaxSubmissionsPerForm int `json:"max_submissions_per_form" validate:"gte=-1"`
	MaxExportsPerForm     int `json:"max_exports_per_form" validate:"gte=-1"`

	IsDefault bool `json:"is_default"`
	IsActive  bool `json:"is_active"`
	SortOrder int  `json:"sort_order"`
}
