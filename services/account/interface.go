package account

import (
	accountRepo "taskpilot/database/repository/account"
	sessionRepo "taskpilot/database/repository/session"
	userRepo "taskpilot/database/repository/user"
	"taskpilot/models"
	"taskpilot/services/audit"
)

// CreateInput carries the fields needed to register a work account.
type CreateInput struct {
	AccountName string  `json:"accountName" binding:"required"`
	AccountType string  `json:"accountType" binding:"required"`
	BrowserType string  `json:"browserType" binding:"required"`
	HourlyRate  float64 `json:"hourlyRate" binding:"required"`
	TaskerID    string  `json:"taskerId"`
}

// UpdateInput carries the mutable account fields. Nil pointers leave the
// field unchanged; an empty TaskerID unassigns the account.
type UpdateInput struct {
	AccountName *string  `json:"accountName"`
	BrowserType *string  `json:"browserType"`
	HourlyRate  *float64 `json:"hourlyRate"`
	TaskerID    *string  `json:"taskerId"`
}

// ListQuery narrows account listings.
type ListQuery struct {
	AccountType string
	BrowserType string
	Assigned    *bool
	Search      string
}

// AccountService manages browser-automation work accounts and their
// assignment to taskers.
type AccountService interface {
	// Create registers a new account. Managers only; names are unique.
	Create(actor models.Actor, input CreateInput) (*models.Account, error)
	// Update modifies account fields, including reassignment. Rate changes
	// apply to future sessions only. Managers only.
	Update(actor models.Actor, accountID string, input UpdateInput) (*models.Account, error)
	// Deactivate retires an account without touching its session history.
	// Managers only.
	Deactivate(actor models.Actor, accountID string) (*models.Account, error)
	// GetByID returns one account; taskers may only view their own.
	GetByID(actor models.Actor, accountID string) (*models.Account, error)
	// List returns accounts matching the query: all of them for managers,
	// the caller's assignments for taskers.
	List(actor models.Actor, query ListQuery) ([]models.Account, error)
}

// DefaultAccountService is the production implementation.
type DefaultAccountService struct {
	Accounts accountRepo.AccountRepository
	Users    userRepo.UserRepository
	Sessions sessionRepo.SessionRepository
	Audit    audit.Recorder
}
