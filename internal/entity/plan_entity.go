package entity

import (
	"time"

	"github.com/google/uuid"
)

type BillingModel string
type BillingCycle string

const (
	BillingModelRecurring BillingModel = "recurring"
	BillingModelLifetime  BillingModel = "lifetime"

	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// Plan is a priced account tier. Limits use the convention
// 0 = feature disabled, -1 = unlimited.
type Plan struct {
	Id          uuid.UUID
	Name        string
	Slug        string
	Description string

	BillingModel  BillingModel
	PriceMonthly  float64
	PriceYearly   float64
	PriceLifetime float64
	Currency      string

	MaxForms              int
	MaxSubmissionsPerForm int
	MaxExportsPerForm     int

	IsDefault bool
	IsActive  bool
	SortOrder int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFree reports whether the plan charges nothing on every cycle.
func (p *Plan) IsFree() bool {
	return p.PriceMonthly == 0 && p.PriceYearly == 0 && p.PriceLifetime == 0
}

// PriceFor returns the amount charged for a billing cycle.
// Lifetime plans always charge the one-time lifetime price.
func (p *Plan) PriceFor(cycle BillingCycle) float64 {
	if p.BillingModel == BillingModelLifetime {
		return p.PriceLifetime
	}
	if cycle == BillingCycleYearly {
		return p.PriceYearly
	}
	return p.PriceMonthly
}
