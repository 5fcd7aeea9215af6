package specification

import "gorm.io/gorm"

// Specification is a composable query fragment. Repository finders
// accept a variadic list of them so callers can narrow or order result
// sets without leaking GORM clauses into the service layer.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
