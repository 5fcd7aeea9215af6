package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	Role         string

	// CurrentPlanId is the plan whose limits govern the user right now.
	// Only the subscription state machine writes it; nil means the
	// default (free) plan applies.
	CurrentPlanId *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}
