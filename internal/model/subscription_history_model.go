package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubscriptionHistory struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`

	Action         string     `gorm:"type:varchar(50);not null"`
	PreviousStatus string     `gorm:"type:varchar(20)"`
	NewStatus      string     `gorm:"type:varchar(20)"`
	PreviousPlanId *uuid.UUID `gorm:"type:uuid"`
	NewPlanId      *uuid.UUID `gorm:"type:uuid"`

	PreviousAmount *float64 `gorm:"type:decimal(10,2)"`
	NewAmount      *float64 `gorm:"type:decimal(10,2)"`

	Reason    string         `gorm:"type:text"`
	ChangedBy string         `gorm:"type:varchar(20);not null"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SubscriptionHistory) TableName() string {
	return "subscription_history"
}
