package model

import (
	"time"

	"github.com/google/uuid"
)

type Plan struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Slug        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string    `gorm:"type:text"`

	BillingModel  string  `gorm:"type:varchar(20);not null;default:'recurring'"`
	PriceMonthly  float64 `gorm:"type:decimal(10,2);not null;default:0"`
	PriceYearly   float64 `gorm:"type:decimal(10,2);not null;default:0"`
	PriceLifetime float64 `gorm:"type:decimal(10,2);not null;default:0"`
	Currency      string  `gorm:"type:varchar(3);not null;default:'USD'"`

	// 0 = disabled, -1 = unlimited
	MaxForms              int `gorm:"not null;default:0"`
	MaxSubmissionsPerForm int `gorm:"not null;default:0"`
	MaxExportsPerForm     int `gorm:"not null;default:0"`

	IsDefault bool `gorm:"not null;default:false;index"`
	IsActive  bool `gorm:"not null;default:true"`
	SortOrder int  `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Plan) TableName() string {
	return "plans"
}
