package session

import (
	"errors"
	"time"

	sessionRepo "taskpilot/database/repository/session"
	"taskpilot/models"
	"taskpilot/utils"

	"github.com/google/uuid"
)

// computeTotals derives the billable totals for a closed interval. Hours are
// rounded to 2 decimals first; payment is computed from the ROUNDED hours
// and rounded again. Rounding payment from the raw duration instead can
// diverge by a cent on short sessions.
func computeTotals(startTime, endTime time.Time, hourlyRate float64) (totalHours, totalPayment float64) {
	totalHours = utils.Round2(endTime.Sub(startTime).Hours())
	totalPayment = utils.Round2(totalHours * hourlyRate)
	return totalHours, totalPayment
}

// Start opens a new work session. Preconditions run in order, each with its
// own failure kind; the final uniqueness check rides on the storage layer's
// partial unique index so two racing starts cannot both succeed.
func (s *DefaultSessionService) Start(actor models.Actor, accountID string) (*models.WorkSession, error) {
	if !actor.IsTasker() {
		return nil, utils.Forbiddenf("only taskers can start work sessions")
	}

	account, err := s.Accounts.GetByID(accountID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load account")
	}
	if account == nil {
		return nil, utils.NotFoundf("account not found")
	}
	if account.TaskerID != actor.ID {
		return nil, utils.Forbiddenf("you can only start sessions for your assigned accounts")
	}
	if !account.IsActive {
		return nil, utils.InvalidStatef("cannot start session for inactive account")
	}

	sess := &models.WorkSession{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		TaskerID:   actor.ID,
		StartTime:  time.Now(),
		HourlyRate: account.HourlyRate,
	}
	if err := s.Sessions.Create(sess); err != nil {
		if errors.Is(err, sessionRepo.ErrActiveExists) {
			return nil, utils.Conflictf("an active session already exists for this account")
		}
		return nil, utils.Internalf(err, "failed to create work session")
	}

	s.Audit.Record(actor, "work_session_started", "work_session", sess.ID, map[string]any{
		"accountId":  accountID,
		"hourlyRate": account.HourlyRate,
	})

	sess.Account = account.Ref()
	s.attachTaskers([]*models.WorkSession{sess})
	return sess, nil
}

// Stop closes an open session. The open check and the update are one
// conditional write, so two racing stops resolve to one success and one
// already-stopped rejection.
func (s *DefaultSessionService) Stop(actor models.Actor, sessionID string) (*models.WorkSession, error) {
	if !actor.IsTasker() {
		return nil, utils.Forbiddenf("only taskers can stop work sessions")
	}

	sess, err := s.Sessions.GetByID(sessionID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load session")
	}
	if sess == nil {
		return nil, utils.NotFoundf("session not found")
	}
	if sess.TaskerID != actor.ID {
		return nil, utils.Forbiddenf("you can only stop your own sessions")
	}
	if sess.EndTime != nil {
		return nil, utils.InvalidStatef("session has already been stopped")
	}

	endTime := time.Now()
	totalHours, totalPayment := computeTotals(sess.StartTime, endTime, sess.HourlyRate)

	closed, err := s.Sessions.Close(sessionID, endTime, totalHours, totalPayment)
	if err != nil {
		if errors.Is(err, sessionRepo.ErrAlreadyClosed) {
			return nil, utils.InvalidStatef("session has already been stopped")
		}
		return nil, utils.Internalf(err, "failed to close session")
	}

	s.Audit.Record(actor, "work_session_stopped", "work_session", sessionID, map[string]any{
		"endTime":      endTime,
		"totalHours":   totalHours,
		"totalPayment": totalPayment,
	})

	s.attachRefs([]*models.WorkSession{closed})
	return closed, nil
}

// GetByID returns one session. Taskers may only view their own sessions.
func (s *DefaultSessionService) GetByID(actor models.Actor, sessionID string) (*models.WorkSession, error) {
	sess, err := s.Sessions.GetByID(sessionID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load session")
	}
	if sess == nil {
		return nil, utils.NotFoundf("session not found")
	}
	if actor.IsTasker() && sess.TaskerID != actor.ID {
		return nil, utils.Forbiddenf("access denied")
	}
	s.attachRefs([]*models.WorkSession{sess})
	return sess, nil
}

// ListActive returns running sessions: all of them for managers, the
// caller's own for taskers.
func (s *DefaultSessionService) ListActive(actor models.Actor) ([]models.WorkSession, error) {
	filter := sessionRepo.Filter{Status: sessionRepo.StatusActive}
	if actor.IsTasker() {
		filter.TaskerID = actor.ID
	}
	sessions, err := s.Sessions.List(filter)
	if err != nil {
		return nil, utils.Internalf(err, "failed to list active sessions")
	}
	s.attachSliceRefs(sessions)
	return sessions, nil
}

// List returns sessions matching the query, role-scoped, plus rolled-up
// totals over the closed sessions in the result. The footer is rounded once
// at response level; the per-session values are already rounded.
func (s *DefaultSessionService) List(actor models.Actor, query ListQuery) ([]models.WorkSession, models.SessionTotals, error) {
	filter := sessionRepo.Filter{
		AccountID: query.AccountID,
		Status:    query.Status,
		From:      query.From,
		To:        query.To,
	}
	if actor.IsTasker() {
		filter.TaskerID = actor.ID
	}

	sessions, err := s.Sessions.List(filter)
	if err != nil {
		return nil, models.SessionTotals{}, utils.Internalf(err, "failed to list sessions")
	}

	var totals models.SessionTotals
	for _, sess := range sessions {
		if sess.TotalHours != nil {
			totals.TotalHours += *sess.TotalHours
		}
		if sess.TotalPayment != nil {
			totals.TotalPayment += *sess.TotalPayment
		}
	}
	totals.TotalHours = utils.Round2(totals.TotalHours)
	totals.TotalPayment = utils.Round2(totals.TotalPayment)

	s.attachSliceRefs(sessions)
	return sessions, totals, nil
}

// attachRefs decorates sessions with slim account and tasker projections.
// Lookup failures are ignored; the core fields stand on their own.
func (s *DefaultSessionService) attachRefs(sessions []*models.WorkSession) {
	accounts := map[string]*models.AccountRef{}
	for _, sess := range sessions {
		ref, ok := accounts[sess.AccountID]
		if !ok {
			if account, err := s.Accounts.GetByID(sess.AccountID); err == nil && account != nil {
				ref = account.Ref()
			}
			accounts[sess.AccountID] = ref
		}
		sess.Account = ref
	}
	s.attachTaskers(sessions)
}

func (s *DefaultSessionService) attachTaskers(sessions []*models.WorkSession) {
	taskers := map[string]*models.UserRef{}
	for _, sess := range sessions {
		ref, ok := taskers[sess.TaskerID]
		if !ok {
			if u, err := s.Users.GetByID(sess.TaskerID); err == nil && u != nil {
				ref = u.Ref()
			}
			taskers[sess.TaskerID] = ref
		}
		sess.Tasker = ref
	}
}

func (s *DefaultSessionService) attachSliceRefs(sessions []models.WorkSession) {
	ptrs := make([]*models.WorkSession, len(sessions))
	for i := range sessions {
		ptrs[i] = &sessions[i]
	}
	s.attachRefs(ptrs)
}
