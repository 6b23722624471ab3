// Package visit implements the day's visit queue: the ordered list of
// patients waiting for, seeing, or done with a doctor. Every status change
// is broadcast to connected front-desk and doctor clients as a
// cache-invalidation hint.
package visit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Visit statuses.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"
)

// Visit maps to the visit table: one patient's place in a doctor's queue on
// a given day.
type Visit struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientName string    `db:"patient_name" json:"patient_name"`
	DoctorID    string    `db:"doctor_id" json:"doctor_id"`
	VisitDate   string    `db:"visit_date" json:"visit_date"` // YYYY-MM-DD
	QueueNumber int       `db:"queue_number" json:"queue_number"`
	Status      string    `db:"status" json:"status"`
	Complaint   *string   `db:"complaint" json:"complaint,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// validTransitions encodes the queue lifecycle: waiting → in_progress →
// done, with cancellation allowed until the visit is done.
var validTransitions = map[string][]string{
	StatusWaiting:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusDone, StatusCancelled},
	StatusDone:       {},
	StatusCancelled:  {},
}

// ValidStatus reports whether s is a known visit status.
func ValidStatus(s string) bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransition reports whether a visit may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateDate checks the YYYY-MM-DD visit date format.
func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("visit_date must be YYYY-MM-DD: %w", err)
	}
	return nil
}
