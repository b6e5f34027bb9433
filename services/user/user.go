package user

import (
	"strings"
	"time"

	userRepo "taskpilot/database/repository/user"
	"taskpilot/models"
	"taskpilot/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// Register creates a new account. The email is lowercased before the
// duplicate check so casing variants cannot register twice.
func (s *DefaultUserService) Register(input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, utils.InvalidInputf("email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, utils.InvalidInputf("password must be at least %d characters", minPasswordLength)
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, utils.InvalidInputf("full name is required")
	}
	role := strings.ToUpper(input.Role)
	if role != models.RoleManager && role != models.RoleTasker {
		return nil, utils.InvalidInputf("role must be MANAGER or TASKER")
	}

	existing, err := s.Users.GetByEmail(email)
	if err != nil {
		return nil, utils.Internalf(err, "failed to check for existing user")
	}
	if existing != nil {
		return nil, utils.Conflictf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.Internalf(err, "failed to hash password")
	}

	u := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(input.FullName),
		Role:         role,
		IsActive:     true,
	}
	if err := s.Users.Create(u); err != nil {
		return nil, utils.Internalf(err, "failed to create user")
	}

	token, err := utils.GenerateToken(u.ID, u.Email, u.Role, utils.TokenTTL)
	if err != nil {
		return nil, utils.Internalf(err, "failed to issue token")
	}
	return &AuthResult{Token: token, User: u}, nil
}

// Login verifies credentials and issues a token. The same rejection covers
// unknown email and wrong password.
func (s *DefaultUserService) Login(input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	u, err := s.Users.GetByEmail(email)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load user")
	}
	if u == nil {
		return nil, utils.Unauthorizedf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, utils.Unauthorizedf("invalid email or password")
	}
	if !u.IsActive {
		return nil, utils.Forbiddenf("account has been deactivated")
	}

	token, err := utils.GenerateToken(u.ID, u.Email, u.Role, utils.TokenTTL)
	if err != nil {
		return nil, utils.Internalf(err, "failed to issue token")
	}
	return &AuthResult{Token: token, User: u}, nil
}

// Me returns the caller's own profile.
func (s *DefaultUserService) Me(actor models.Actor) (*models.User, error) {
	u, err := s.Users.GetByID(actor.ID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load user")
	}
	if u == nil {
		return nil, utils.NotFoundf("user not found")
	}
	return u, nil
}

// UpdateFCMToken stores the caller's push-notification token.
func (s *DefaultUserService) UpdateFCMToken(actor models.Actor, token string) error {
	u, err := s.Users.GetByID(actor.ID)
	if err != nil {
		return utils.Internalf(err, "failed to load user")
	}
	if u == nil {
		return utils.NotFoundf("user not found")
	}
	u.FCMToken = token
	u.UpdatedAt = time.Now()
	if err := s.Users.Update(u); err != nil {
		return utils.Internalf(err, "failed to update user")
	}
	return nil
}

// List returns users matching the filter. Managers only.
func (s *DefaultUserService) List(actor models.Actor, role string, activeOnly bool) ([]models.User, error) {
	if !actor.IsManager() {
		return nil, utils.Forbiddenf("only managers can list users")
	}
	if role != "" {
		role = strings.ToUpper(role)
		if role != models.RoleManager && role != models.RoleTasker {
			return nil, utils.InvalidInputf("role must be MANAGER or TASKER")
		}
	}
	users, err := s.Users.List(userRepo.Filter{Role: role, ActiveOnly: activeOnly})
	if err != nil {
		return nil, utils.Internalf(err, "failed to list users")
	}
	return users, nil
}

// GetByID returns one user. Managers only.
func (s *DefaultUserService) GetByID(actor models.Actor, userID string) (*models.User, error) {
	if !actor.IsManager() {
		return nil, utils.Forbiddenf("only managers can view users")
	}
	u, err := s.Users.GetByID(userID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load user")
	}
	if u == nil {
		return nil, utils.NotFoundf("user not found")
	}
	return u, nil
}

// Deactivate disables an account. History referencing the user survives; the
// account simply stops authenticating once its cached auth entry expires.
func (s *DefaultUserService) Deactivate(actor models.Actor, userID string) (*models.User, error) {
	if !actor.IsManager() {
		return nil, utils.Forbiddenf("only managers can deactivate users")
	}
	if userID == actor.ID {
		return nil, utils.InvalidInputf("you cannot deactivate your own account")
	}

	u, err := s.Users.GetByID(userID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load user")
	}
	if u == nil {
		return nil, utils.NotFoundf("user not found")
	}
	if !u.IsActive {
		return nil, utils.InvalidStatef("user is already deactivated")
	}

	u.IsActive = false
	u.UpdatedAt = time.Now()
	if err := s.Users.Update(u); err != nil {
		return nil, utils.Internalf(err, "failed to deactivate user")
	}

	s.Audit.Record(actor, "user_deactivated", "user", userID, map[string]any{
		"email": u.Email,
		"role":  u.Role,
	})
	return u, nil
}
