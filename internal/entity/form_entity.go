package entity

import (
	"time"

	"github.com/google/uuid"
)

// Form, FormSubmission and FormExport are the user-owned resources the
// usage counters are derived from. Their own feature surface (field
// schemas, rendering) lives outside this service.
type Form struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Name      string
	Slug      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type FormSubmission struct {
	Id        uuid.UUID
	FormId    uuid.UUID
	Data      map[string]interface{}
	CreatedAt time.Time
}

type FormExport struct {
	Id        uuid.UUID
	FormId    uuid.UUID
	UserId    uuid.UUID
	Format    string
	CreatedAt time.Time
}
