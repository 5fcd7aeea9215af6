package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Form struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Slug      string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Form) TableName() string {
	return "forms"
}

type FormSubmission struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FormId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Data      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (FormSubmission) TableName() string {
	return "form_submissions"
}

type FormExport struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FormId    uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Format    string    `gorm:"type:varchar(10);not null;default:'csv'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (FormExport) TableName() string {
	return "form_exports"
}
