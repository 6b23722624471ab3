package visit

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a visit does not exist.
var ErrNotFound = errors.New("visit not found")

// VisitRepository defines the data access interface for visits.
type VisitRepository interface {
	// Create persists a new visit, assigning the next queue number for
	// the doctor and date.
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Visit, error)
	// ListByDate returns the queue for a date, optionally filtered to one
	// doctor, ordered by queue number.
	ListByDate(ctx context.Context, date, doctorID string, limit, offset int) ([]*Visit, int, error)
}
