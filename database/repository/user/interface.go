package userRepo

import "taskpilot/models"

// Filter narrows user listings.
type Filter struct {
	Role       string
	ActiveOnly bool
}

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID. Returns (nil, nil) when absent.
	GetByID(id string) (*models.User, error)
	// GetByEmail retrieves a user by email. Returns (nil, nil) when absent.
	GetByEmail(email string) (*models.User, error)
	// Create inserts a new user record.
	Create(user *models.User) error
	// Update modifies an existing user record.
	Update(user *models.User) error
	// List retrieves users matching the filter, newest first.
	List(filter Filter) ([]models.User, error)
}
