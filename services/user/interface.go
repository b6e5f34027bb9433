package user

import (
	userRepo "taskpilot/database/repository/user"
	"taskpilot/models"
	"taskpilot/services/audit"
)

// RegisterInput carries the fields needed to create a platform account.
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResult is the successful outcome of registration or login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// UserService manages platform accounts and authentication.
type UserService interface {
	// Register creates a new account and issues a token for it.
	Register(input RegisterInput) (*AuthResult, error)
	// Login verifies credentials and issues a token. Deactivated accounts
	// cannot log in.
	Login(input LoginInput) (*AuthResult, error)
	// Me returns the caller's own profile.
	Me(actor models.Actor) (*models.User, error)
	// UpdateFCMToken stores the caller's push-notification token.
	UpdateFCMToken(actor models.Actor, token string) error
	// List returns users matching the filter. Managers only.
	List(actor models.Actor, role string, activeOnly bool) ([]models.User, error)
	// GetByID returns one user. Managers only.
	GetByID(actor models.Actor, userID string) (*models.User, error)
	// Deactivate disables an account so it can no longer log in. Existing
	// session and payment history is kept intact. Managers only.
	Deactivate(actor models.Actor, userID string) (*models.User, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Users userRepo.UserRepository
	Audit audit.Recorder
}
