package dto

import "github.com/google/uuid"

// Usage actions checked against plan limits.
const (
	ActionCreateForm        = "create_form"
	ActionCreateSubmission  = "create_submission"
	ActionExportSubmissions = "export_submissions"
)

type LimitCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Action  string `json:"action"`
	// Limit of -1 means unlimited; 0 means the feature is disabled.
	Limit     int   `json:"limit"`
	Current   int64 `json:"current"`
	Remaining int64 `json:"remaining"`
}

type CreateFormRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
	Slug string `json:"slug" validate:"required,min=1,max=255"`
}

type FormResponse struct {
	Id       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	IsActive bool      `json:"is_active"`
}

type SubmitFormRequest struct {
	Data map[string]interface{} `json:"data" validate:"required"`
}

type ExportFormRequest struct {
	Format string `json:"format" validate:"omitempty,oneof=csv json"`
}
