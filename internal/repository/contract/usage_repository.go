package contract

import (
	"context"

	"formhive-be/internal/entity"

	"github.com/google/uuid"
)

// UsageRepository serves the derived usage counters and the thin create
// paths for the counted resources. Counts are live reads; brief
// staleness against concurrent deletes is acceptable.
type UsageRepository interface {
	CountFormsByUser(ctx context.Context, userId uuid.UUID) (int64, error)
	CountSubmissionsByForm(ctx context.Context, formId uuid.UUID) (int64, error)
	CountExportsByForm(ctx context.Context, formId uuid.UUID) (int64, error)

	CreateForm(ctx context.Context, form *entity.Form) error
	FindFormByID(ctx context.Context, id uuid.UUID) (*entity.Form, error)
	CreateSubmission(ctx context.Context, s *entity.FormSubmission) error
	CreateExport(ctx context.Context, e *entity.FormExport) error
}
