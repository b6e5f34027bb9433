package accountRepo

import "taskpilot/models"

// Filter narrows account listings.
type Filter struct {
	AccountType string
	BrowserType string
	TaskerID    string
	// Assigned filters on whether a tasker is assigned at all.
	Assigned *bool
	// Search matches a substring of the account name.
	Search string
}

// AccountRepository defines methods for work-account data access.
type AccountRepository interface {
	// GetByID retrieves an account by its unique ID. Returns (nil, nil) when absent.
	GetByID(id string) (*models.Account, error)
	// GetByName retrieves an account by its name. Returns (nil, nil) when absent.
	GetByName(name string) (*models.Account, error)
	// Create inserts a new account record.
	Create(account *models.Account) error
	// Update modifies an existing account record.
	Update(account *models.Account) error
	// List retrieves accounts matching the filter, newest first.
	List(filter Filter) ([]models.Account, error)
}
