package submission

import (
	"context"
	"io"
	"time"

	accountRepo "taskpilot/database/repository/account"
	submissionRepo "taskpilot/database/repository/submission"
	userRepo "taskpilot/database/repository/user"
	"taskpilot/models"
	"taskpilot/services/audit"
	"taskpilot/services/notification"
	"taskpilot/services/storage"
)

// CreateInput carries a new task submission. Screenshot is the uploaded
// evidence file; it lands in object storage before the record is written.
type CreateInput struct {
	AccountID  string
	TaskID     string
	Notes      string
	Screenshot io.Reader
}

// ReviewInput carries a manager's review decision.
type ReviewInput struct {
	Status      string `json:"status" binding:"required"`
	ReviewNotes string `json:"reviewNotes"`
}

// ListQuery narrows submission listings. From/To bound the submission time.
type ListQuery struct {
	AccountID string
	TaskerID  string
	Status    string
	From      *time.Time
	To        *time.Time
}

// SubmissionService manages task evidence for HANDSHAKE accounts: taskers
// upload, managers review. Submissions never touch billing.
type SubmissionService interface {
	// Create uploads the screenshot and records a PENDING submission.
	Create(ctx context.Context, actor models.Actor, input CreateInput) (*models.TaskSubmission, error)
	// Review approves or rejects a PENDING submission. Each submission is
	// reviewed exactly once. Managers only.
	Review(actor models.Actor, submissionID string, input ReviewInput) (*models.TaskSubmission, error)
	// GetByID returns one submission; taskers may only view their own.
	GetByID(actor models.Actor, submissionID string) (*models.TaskSubmission, error)
	// List returns submissions matching the query, role-scoped.
	List(actor models.Actor, query ListQuery) ([]models.TaskSubmission, error)
}

// DefaultSubmissionService is the production implementation.
type DefaultSubmissionService struct {
	Submissions submissionRepo.SubmissionRepository
	Accounts    accountRepo.AccountRepository
	Users       userRepo.UserRepository
	Storage     storage.StorageService
	Audit       audit.Recorder
	Notifier    notification.Notifier
}
