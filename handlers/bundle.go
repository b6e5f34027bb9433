package handlers

import (
	userRepoPkg "taskpilot/database/repository/user"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// UserRepo is exposed for the auth middleware's active-user check.
	UserRepo userRepoPkg.UserRepository

	Auth        *AuthHandler
	Users       *UserHandler
	Accounts    *AccountHandler
	Sessions    *SessionHandler
	Payments    *PaymentHandler
	Submissions *SubmissionHandler
	Audit       *AuditHandler
	Storage     *StorageHandler
}
