package account

import (
	"strings"
	"time"

	accountRepo "taskpilot/database/repository/account"
	sessionRepo "taskpilot/database/repository/session"
	"taskpilot/models"
	"taskpilot/utils"

	"github.com/google/uuid"
)

// Create registers a new work account. Names are unique across the fleet so
// the browser profile an account maps to is never ambiguous.
func (s *DefaultAccountService) Create(actor models.Actor, input CreateInput) (*models.Account, error) {
	if !actor.IsManager() {
		return nil, utils.Forbiddenf("only managers can create accounts")
	}

	name := strings.TrimSpace(input.AccountName)
	if name == "" {
		return nil, utils.InvalidInputf("account name is required")
	}
	if !models.ValidAccountType(input.AccountType) {
		return nil, utils.InvalidInputf("account type must be OUTLIER or HANDSHAKE")
	}
	if !models.ValidBrowserType(input.BrowserType) {
		return nil, utils.InvalidInputf("browser type must be IX_BROWSER, GOLOGIN or MORELOGIN")
	}
	if input.HourlyRate <= 0 {
		return nil, utils.InvalidInputf("hourly rate must be greater than zero")
	}

	existing, err := s.Accounts.GetByName(name)
	if err != nil {
		return nil, utils.Internalf(err, "failed to check account name")
	}
	if existing != nil {
		return nil, utils.Conflictf("account name already exists")
	}

	if input.TaskerID != "" {
		if err := s.validateTasker(input.TaskerID); err != nil {
			return nil, err
		}
	}

	account := &models.Account{
		ID:          uuid.New().String(),
		AccountName: name,
		AccountType: input.AccountType,
		BrowserType: input.BrowserType,
		HourlyRate:  input.HourlyRate,
		IsActive:    true,
		TaskerID:    input.TaskerID,
		CreatedBy:   actor.ID,
	}
	if err := s.Accounts.Create(account); err != nil {
		return nil, utils.Internalf(err, "failed to create account")
	}

	s.Audit.Record(actor, "account_created", "account", account.ID, map[string]any{
		"accountName": name,
		"accountType": input.AccountType,
		"hourlyRate":  input.HourlyRate,
		"taskerId":    input.TaskerID,
	})

	s.attachTasker(account)
	return account, nil
}

// Update modifies account fields. A rate change only affects sessions
// started afterwards; running and closed sessions keep the rate they
// snapshotted at start.
func (s *DefaultAccountService) Update(actor models.Actor, accountID string, input UpdateInput) (*models.Account, error) {
	if !actor.IsManager() {
		return nil, utils.Forbiddenf("only managers can update accounts")
	}

	account, err := s.Accounts.GetByID(accountID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load account")
	}
	if account == nil {
		return nil, utils.NotFoundf("account not found")
	}

	changes := map[string]any{}

	if input.AccountName != nil {
		name := strings.TrimSpace(*input.AccountName)
		if name == "" {
			return nil, utils.InvalidInputf("account name is required")
		}
		if name != account.AccountName {
			existing, err := s.Accounts.GetByName(name)
			if err != nil {
				return nil, utils.Internalf(err, "failed to check account name")
			}
			if existing != nil && existing.ID != account.ID {
				return nil, utils.Conflictf("account name already exists")
			}
			changes["accountName"] = name
			account.AccountName = name
		}
	}
	if input.BrowserType != nil {
		if !models.ValidBrowserType(*input.BrowserType) {
			return nil, utils.InvalidInputf("browser type must be IX_BROWSER, GOLOGIN or MORELOGIN")
		}
		changes["browserType"] = *input.BrowserType
		account.BrowserType = *input.BrowserType
	}
	if input.HourlyRate != nil {
		if *input.HourlyRate <= 0 {
			return nil, utils.InvalidInputf("hourly rate must be greater than zero")
		}
		changes["hourlyRate"] = *input.HourlyRate
		account.HourlyRate = *input.HourlyRate
	}
	if input.TaskerID != nil && *input.TaskerID != account.TaskerID {
		if *input.TaskerID != "" {
			if err := s.validateTasker(*input.TaskerID); err != nil {
				return nil, err
			}
		}
		open, err := s.Sessions.List(sessionRepo.Filter{
			AccountID: accountID,
			Status:    sessionRepo.StatusActive,
		})
		if err != nil {
			return nil, utils.Internalf(err, "failed to check for active session")
		}
		if len(open) > 0 {
			return nil, utils.InvalidStatef("cannot reassign account while a session is active")
		}
		changes["taskerId"] = *input.TaskerID
		account.TaskerID = *input.TaskerID
	}

	if len(changes) == 0 {
		s.attachTasker(account)
		return account, nil
	}

	account.UpdatedAt = time.Now()
	if err := s.Accounts.Update(account); err != nil {
		return nil, utils.Internalf(err, "failed to update account")
	}

	s.Audit.Record(actor, "account_updated", "account", accountID, changes)

	s.attachTasker(account)
	return account, nil
}

// Deactivate retires an account. Session history stays attached and a
// running session on it can still be stopped; only new starts are blocked.
func (s *DefaultAccountService) Deactivate(actor models.Actor, accountID string) (*models.Account, error) {
	if !actor.IsManager() {
		return nil, utils.Forbiddenf("only managers can deactivate accounts")
	}

	account, err := s.Accounts.GetByID(accountID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load account")
	}
	if account == nil {
		return nil, utils.NotFoundf("account not found")
	}
	if !account.IsActive {
		return nil, utils.InvalidStatef("account is already deactivated")
	}

	account.IsActive = false
	account.UpdatedAt = time.Now()
	if err := s.Accounts.Update(account); err != nil {
		return nil, utils.Internalf(err, "failed to deactivate account")
	}

	s.Audit.Record(actor, "account_deactivated", "account", accountID, map[string]any{
		"accountName": account.AccountName,
	})

	s.attachTasker(account)
	return account, nil
}

// GetByID returns one account. Taskers may only view accounts assigned to them.
func (s *DefaultAccountService) GetByID(actor models.Actor, accountID string) (*models.Account, error) {
	account, err := s.Accounts.GetByID(accountID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load account")
	}
	if account == nil {
		return nil, utils.NotFoundf("account not found")
	}
	if actor.IsTasker() && account.TaskerID != actor.ID {
		return nil, utils.Forbiddenf("access denied")
	}
	s.attachTasker(account)
	return account, nil
}

// List returns accounts matching the query. Taskers see their own
// assignments; managers see the whole fleet.
func (s *DefaultAccountService) List(actor models.Actor, query ListQuery) ([]models.Account, error) {
	filter := accountRepo.Filter{
		AccountType: query.AccountType,
		BrowserType: query.BrowserType,
		Assigned:    query.Assigned,
		Search:      query.Search,
	}
	if actor.IsTasker() {
		filter.TaskerID = actor.ID
	}

	accounts, err := s.Accounts.List(filter)
	if err != nil {
		return nil, utils.Internalf(err, "failed to list accounts")
	}

	refs := map[string]*models.UserRef{}
	for i := range accounts {
		id := accounts[i].TaskerID
		if id == "" {
			continue
		}
		ref, ok := refs[id]
		if !ok {
			if u, err := s.Users.GetByID(id); err == nil && u != nil {
				ref = u.Ref()
			}
			refs[id] = ref
		}
		accounts[i].Tasker = ref
	}
	return accounts, nil
}

// validateTasker checks that the assignee exists and holds the tasker role.
func (s *DefaultAccountService) validateTasker(taskerID string) error {
	u, err := s.Users.GetByID(taskerID)
	if err != nil {
		return utils.Internalf(err, "failed to load tasker")
	}
	if u == nil || u.Role != models.RoleTasker {
		return utils.NotFoundf("tasker not found")
	}
	if !u.IsActive {
		return utils.InvalidStatef("cannot assign account to a deactivated tasker")
	}
	return nil
}

func (s *DefaultAccountService) attachTasker(account *models.Account) {
	if account.TaskerID == "" {
		account.Tasker = nil
		return
	}
	if u, err := s.Users.GetByID(account.TaskerID); err == nil && u != nil {
		account.Tasker = u.Ref()
	}
}
