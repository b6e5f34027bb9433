package submissionRepo

import (
	"errors"
	"time"

	"taskpilot/models"
)

// ErrAlreadyReviewed: the submission was not PENDING when Review ran.
var ErrAlreadyReviewed = errors.New("submission has already been reviewed")

// Filter narrows submission listings. From/To bound SubmittedAt inclusively.
type Filter struct {
	TaskerID  string
	AccountID string
	Status    string
	From      *time.Time
	To        *time.Time
}

// SubmissionRepository defines methods for task-submission data access.
type SubmissionRepository interface {
	// Create inserts a new PENDING submission.
	Create(submission *models.TaskSubmission) error
	// GetByID retrieves a submission by its unique ID. Returns (nil, nil) when absent.
	GetByID(id string) (*models.TaskSubmission, error)
	// Review atomically transitions PENDING -> APPROVED|REJECTED. Fails with
	// ErrAlreadyReviewed otherwise.
	Review(id, status, reviewedBy, reviewNotes string, reviewedAt time.Time) (*models.TaskSubmission, error)
	// List retrieves submissions matching the filter, newest first.
	List(filter Filter) ([]models.TaskSubmission, error)
}
