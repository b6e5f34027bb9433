package session

import (
	"testing"
	"time"

	accountRepo "taskpilot/database/repository/account"
	sessionRepo "taskpilot/database/repository/session"
	userRepo "taskpilot/database/repository/user"
	"taskpilot/models"
	"taskpilot/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessionRepo is an in-memory SessionRepository honoring the same
// uniqueness contract as the Mongo implementation.
type fakeSessionRepo struct {
	sessions map[string]*models.WorkSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*models.WorkSession{}}
}

func (f *fakeSessionRepo) Create(sess *models.WorkSession) error {
	for _, existing := range f.sessions {
		if existing.AccountID == sess.AccountID && existing.Open {
			return sessionRepo.ErrActiveExists
		}
	}
	sess.Open = true
	now := time.Now()
	sess.CreatedAt = now
	sess.UpdatedAt = now
	cp := *sess
	f.sessions[sess.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) GetByID(id string) (*models.WorkSession, error) {
	sess, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (f *fakeSessionRepo) Close(id string, endTime time.Time, totalHours, totalPayment float64) (*models.WorkSession, error) {
	sess, ok := f.sessions[id]
	if !ok || !sess.Open {
		return nil, sessionRepo.ErrAlreadyClosed
	}
	sess.Open = false
	sess.EndTime = &endTime
	sess.TotalHours = &totalHours
	sess.TotalPayment = &totalPayment
	sess.UpdatedAt = time.Now()
	cp := *sess
	return &cp, nil
}

func (f *fakeSessionRepo) List(filter sessionRepo.Filter) ([]models.WorkSession, error) {
	var out []models.WorkSession
	for _, sess := range f.sessions {
		if filter.TaskerID != "" && sess.TaskerID != filter.TaskerID {
			continue
		}
		if filter.AccountID != "" && sess.AccountID != filter.AccountID {
			continue
		}
		if filter.Status == sessionRepo.StatusActive && !sess.Open {
			continue
		}
		if filter.Status == sessionRepo.StatusCompleted && sess.Open {
			continue
		}
		if filter.From != nil && sess.StartTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && sess.StartTime.After(*filter.To) {
			continue
		}
		out = append(out, *sess)
	}
	return out, nil
}

type fakeAccountRepo struct {
	accounts map[string]*models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*models.Account{}}
}

func (f *fakeAccountRepo) GetByID(id string) (*models.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountRepo) GetByName(name string) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.AccountName == name {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) Create(a *models.Account) error {
	cp := *a
	f.accounts[a.ID] = &cp
	return nil
}

func (f *fakeAccountRepo) Update(a *models.Account) error {
	cp := *a
	f.accounts[a.ID] = &cp
	return nil
}

func (f *fakeAccountRepo) List(filter accountRepo.Filter) ([]models.Account, error) {
	var out []models.Account
	for _, a := range f.accounts {
		if filter.TaskerID != "" && a.TaskerID != filter.TaskerID {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (f *fakeUserRepo) GetByID(id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Create(u *models.User) error {
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Update(u *models.User) error {
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) List(filter userRepo.Filter) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.ActiveOnly && !u.IsActive {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

// recordingAudit captures recorded actions for assertions.
type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) Record(_ models.Actor, action, _, _ string, _ map[string]any) {
	r.actions = append(r.actions, action)
}

func newTestService() (*DefaultSessionService, *fakeSessionRepo, *fakeAccountRepo, *fakeUserRepo, *recordingAudit) {
	sessions := newFakeSessionRepo()
	accounts := newFakeAccountRepo()
	users := newFakeUserRepo()
	rec := &recordingAudit{}
	svc := &DefaultSessionService{
		Sessions: sessions,
		Accounts: accounts,
		Users:    users,
		Audit:    rec,
	}
	return svc, sessions, accounts, users, rec
}

func seedTasker(users *fakeUserRepo, id string) models.Actor {
	users.users[id] = &models.User{
		ID:       id,
		Email:    id + "@example.com",
		FullName: "Tasker " + id,
		Role:     models.RoleTasker,
		IsActive: true,
	}
	return models.Actor{ID: id, Role: models.RoleTasker}
}

func seedAccount(accounts *fakeAccountRepo, id, taskerID string, rate float64) {
	accounts.accounts[id] = &models.Account{
		ID:          id,
		AccountName: "acct-" + id,
		AccountType: models.AccountTypeOutlier,
		BrowserType: models.BrowserIXBrowser,
		HourlyRate:  rate,
		IsActive:    true,
		TaskerID:    taskerID,
	}
}

func TestComputeTotalsRoundsHoursBeforePayment(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		duration    time.Duration
		rate        float64
		wantHours   float64
		wantPayment float64
	}{
		{"ninety minutes at 15", 90 * time.Minute, 15.00, 1.50, 22.50},
		{"rounded hours drive payment", 90*time.Minute + 36*time.Second, 15.00, 1.51, 22.65},
		{"eight hours at 12.5", 8 * time.Hour, 12.50, 8.00, 100.00},
		{"one minute", time.Minute, 20.00, 0.02, 0.40},
		{"twenty seconds rounds to zero", 20 * time.Second, 50.00, 0.01, 0.50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours, payment := computeTotals(start, start.Add(tt.duration), tt.rate)
			assert.InDelta(t, tt.wantHours, hours, 1e-9)
			assert.InDelta(t, tt.wantPayment, payment, 1e-9)
		})
	}
}

func TestStartSnapshotsHourlyRate(t *testing.T) {
	svc, _, accounts, users, rec := newTestService()
	actor := seedTasker(users, "t1")
	seedAccount(accounts, "a1", "t1", 15.00)

	sess, err := svc.Start(actor, "a1")
	require.NoError(t, err)
	assert.Equal(t, 15.00, sess.HourlyRate)
	assert.Nil(t, sess.EndTime)
	assert.Nil(t, sess.TotalHours)
	assert.Equal(t, []string{"work_session_started"}, rec.actions)

	// A later rate change must not touch the running session.
	accounts.accounts["a1"].HourlyRate = 99.00
	loaded, err := svc.GetByID(actor, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.00, loaded.HourlyRate)
}

func TestStartRejectsSecondOpenSessionOnAccount(t *testing.T) {
	svc, _, accounts, users, _ := newTestService()
	actor := seedTasker(users, "t1")
	seedAccount(accounts, "a1", "t1", 15.00)

	_, err := svc.Start(actor, "a1")
	require.NoError(t, err)

	_, err = svc.Start(actor, "a1")
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestStartPreconditions(t *testing.T) {
	svc, _, accounts, users, _ := newTestService()
	actor := seedTasker(users, "t1")
	seedTasker(users, "t2")
	seedAccount(accounts, "owned", "t2", 15.00)
	seedAccount(accounts, "inactive", "t1", 15.00)
	accounts.accounts["inactive"].IsActive = false

	t.Run("manager cannot start", func(t *testing.T) {
		_, err := svc.Start(models.Actor{ID: "m1", Role: models.RoleManager}, "owned")
		assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
	})
	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.Start(actor, "missing")
		assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	})
	t.Run("not assigned", func(t *testing.T) {
		_, err := svc.Start(actor, "owned")
		assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
	})
	t.Run("inactive account", func(t *testing.T) {
		_, err := svc.Start(actor, "inactive")
		assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))
	})
}

func TestStopComputesRoundedTotals(t *testing.T) {
	svc, sessions, accounts, users, rec := newTestService()
	actor := seedTasker(users, "t1")
	seedAccount(accounts, "a1", "t1", 15.00)

	started, err := svc.Start(actor, "a1")
	require.NoError(t, err)

	// Backdate the start so the closed interval is ninety minutes.
	sessions.sessions[started.ID].StartTime = time.Now().Add(-90 * time.Minute)

	stopped, err := svc.Stop(actor, started.ID)
	require.NoError(t, err)
	require.NotNil(t, stopped.EndTime)
	require.NotNil(t, stopped.TotalHours)
	require.NotNil(t, stopped.TotalPayment)
	assert.InDelta(t, 1.50, *stopped.TotalHours, 0.01)
	assert.InDelta(t, 22.50, *stopped.TotalPayment, 0.16)
	assert.InDelta(t, utils.Round2(*stopped.TotalHours*15.00), *stopped.TotalPayment, 1e-9)
	assert.Contains(t, rec.actions, "work_session_stopped")
}

func TestStopRejectsSecondStop(t *testing.T) {
	svc, _, accounts, users, _ := newTestService()
	actor := seedTasker(users, "t1")
	seedAccount(accounts, "a1", "t1", 15.00)

	started, err := svc.Start(actor, "a1")
	require.NoError(t, err)

	_, err = svc.Stop(actor, started.ID)
	require.NoError(t, err)

	_, err = svc.Stop(actor, started.ID)
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))
}

func TestStopOwnershipAndExistence(t *testing.T) {
	svc, _, accounts, users, _ := newTestService()
	owner := seedTasker(users, "t1")
	other := seedTasker(users, "t2")
	seedAccount(accounts, "a1", "t1", 15.00)

	started, err := svc.Start(owner, "a1")
	require.NoError(t, err)

	_, err = svc.Stop(other, started.ID)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

	_, err = svc.Stop(owner, "missing")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestStopAllowedOnDeactivatedAccount(t *testing.T) {
	svc, _, accounts, users, _ := newTestService()
	actor := seedTasker(users, "t1")
	seedAccount(accounts, "a1", "t1", 15.00)

	started, err := svc.Start(actor, "a1")
	require.NoError(t, err)

	accounts.accounts["a1"].IsActive = false

	_, err = svc.Stop(actor, started.ID)
	assert.NoError(t, err)
}

func TestListScopesTaskersToTheirOwnSessions(t *testing.T) {
	svc, _, accounts, users, _ := newTestService()
	t1 := seedTasker(users, "t1")
	t2 := seedTasker(users, "t2")
	seedAccount(accounts, "a1", "t1", 15.00)
	seedAccount(accounts, "a2", "t2", 20.00)

	_, err := svc.Start(t1, "a1")
	require.NoError(t, err)
	_, err = svc.Start(t2, "a2")
	require.NoError(t, err)

	own, _, err := svc.List(t1, ListQuery{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "t1", own[0].TaskerID)

	all, _, err := svc.List(models.Actor{ID: "m1", Role: models.RoleManager}, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListTotalsSumOnlyClosedSessions(t *testing.T) {
	svc, sessions, accounts, users, _ := newTestService()
	actor := seedTasker(users, "t1")
	seedAccount(accounts, "a1", "t1", 15.00)
	seedAccount(accounts, "a2", "t1", 20.00)

	first, err := svc.Start(actor, "a1")
	require.NoError(t, err)
	sessions.sessions[first.ID].StartTime = time.Now().Add(-2 * time.Hour)
	_, err = svc.Stop(actor, first.ID)
	require.NoError(t, err)

	// Second session stays open; it must not contribute to the footer.
	_, err = svc.Start(actor, "a2")
	require.NoError(t, err)

	listed, totals, err := svc.List(actor, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	assert.InDelta(t, 2.00, totals.TotalHours, 0.01)
	assert.InDelta(t, 30.00, totals.TotalPayment, 0.16)
}

func TestListActive(t *testing.T) {
	svc, _, accounts, users, _ := newTestService()
	actor := seedTasker(users, "t1")
	seedAccount(accounts, "a1", "t1", 15.00)
	seedAccount(accounts, "a2", "t1", 20.00)

	first, err := svc.Start(actor, "a1")
	require.NoError(t, err)
	_, err = svc.Start(actor, "a2")
	require.NoError(t, err)
	_, err = svc.Stop(actor, first.ID)
	require.NoError(t, err)

	active, err := svc.ListActive(actor)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a2", active[0].AccountID)
}

func TestGetByIDEnrichesRefs(t *testing.T) {
	svc, _, accounts, users, _ := newTestService()
	actor := seedTasker(users, "t1")
	seedAccount(accounts, "a1", "t1", 15.00)

	started, err := svc.Start(actor, "a1")
	require.NoError(t, err)

	loaded, err := svc.GetByID(actor, started.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Account)
	assert.Equal(t, "acct-a1", loaded.Account.AccountName)
	require.NotNil(t, loaded.Tasker)
	assert.Equal(t, "t1", loaded.Tasker.ID)
}
