package sessionRepo

import (
	"errors"
	"time"

	"taskpilot/models"
)

// Session status filter values.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Sentinel errors surfaced by the storage layer's conditional writes. The
// uniqueness guarantees live in the database (partial unique index, filtered
// update), not in application-level read-then-write, so two racing requests
// resolve to exactly one success.
var (
	// ErrActiveExists: an open session already exists for the account.
	ErrActiveExists = errors.New("active session already exists for this account")
	// ErrAlreadyClosed: the session was not open when Close ran.
	ErrAlreadyClosed = errors.New("session is already closed")
)

// Filter narrows session listings. From/To bound StartTime inclusively.
type Filter struct {
	TaskerID  string
	AccountID string
	Status    string
	From      *time.Time
	To        *time.Time
}

// SessionRepository defines methods for work-session data access.
type SessionRepository interface {
	// Create inserts a new open session. Fails with ErrActiveExists if the
	// account already has an open session; the check and the insert are a
	// single atomic operation.
	Create(session *models.WorkSession) error
	// GetByID retrieves a session by its unique ID. Returns (nil, nil) when absent.
	GetByID(id string) (*models.WorkSession, error)
	// Close atomically transitions an open session to closed, setting the
	// end time and computed totals. Fails with ErrAlreadyClosed if the
	// session is no longer open.
	Close(id string, endTime time.Time, totalHours, totalPayment float64) (*models.WorkSession, error)
	// List retrieves sessions matching the filter, most recent start first.
	List(filter Filter) ([]models.WorkSession, error)
}
