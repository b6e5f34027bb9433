package session

import (
	"time"

	accountRepo "taskpilot/database/repository/account"
	sessionRepo "taskpilot/database/repository/session"
	userRepo "taskpilot/database/repository/user"
	"taskpilot/models"
	"taskpilot/services/audit"
)

// ListQuery carries the optional filters for session listings.
type ListQuery struct {
	AccountID string
	// Status is "active", "completed" or empty for both.
	Status string
	From   *time.Time
	To     *time.Time
}

// SessionService manages the lifecycle of billable work sessions.
type SessionService interface {
	// Start opens a new session on an account assigned to the calling
	// tasker, snapshotting the account's hourly rate.
	Start(actor models.Actor, accountID string) (*models.WorkSession, error)
	// Stop closes the caller's open session and computes its totals.
	Stop(actor models.Actor, sessionID string) (*models.WorkSession, error)
	// GetByID returns one session; taskers may only view their own.
	GetByID(actor models.Actor, sessionID string) (*models.WorkSession, error)
	// ListActive returns currently running sessions, role-scoped.
	ListActive(actor models.Actor) ([]models.WorkSession, error)
	// List returns sessions matching the query, role-scoped, with rolled-up
	// totals over the closed sessions in the result.
	List(actor models.Actor, query ListQuery) ([]models.WorkSession, models.SessionTotals, error)
}

// DefaultSessionService is the production implementation.
type DefaultSessionService struct {
	Sessions sessionRepo.SessionRepository
	Accounts accountRepo.AccountRepository
	Users    userRepo.UserRepository
	Audit    audit.Recorder
}
