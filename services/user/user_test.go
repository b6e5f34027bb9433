package user

import (
	"testing"

	userRepo "taskpilot/database/repository/user"
	"taskpilot/models"
	"taskpilot/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

type recordingAudit struct{ actions []string }

func (r *recordingAudit) Record(_ models.Actor, action, _, _ string, _ map[string]any) {
	r.actions = append(r.actions, action)
}

func newUserFixture() (*DefaultUserService, *fakeUserRepo, *recordingAudit) {
	repo := newFakeUserRepo()
	rec := &recordingAudit{}
	return &DefaultUserService{Users: repo, Audit: rec}, repo, rec
}

func registerTasker(t *testing.T, svc *DefaultUserService, email string) *AuthResult {
	t.Helper()
	result, err := svc.Register(RegisterInput{
		Email:    email,
		Password: "hunter2hunter2",
		FullName: "Worker One",
		Role:     "TASKER",
	})
	require.NoError(t, err)
	return result
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newUserFixture()
	result := registerTasker(t, svc, "worker@example.com")
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, models.RoleTasker, result.User.Role)
	assert.True(t, result.User.IsActive)
	assert.Empty(t, result.User.Password)

	login, err := svc.Login(LoginInput{Email: "worker@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)

	claims, err := utils.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, models.RoleTasker, claims.Role)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newUserFixture()

	t.Run("short password", func(t *testing.T) {
		_, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "short", FullName: "A", Role: "TASKER"})
		assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))
	})
	t.Run("bad role", func(t *testing.T) {
		_, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "hunter2hunter2", FullName: "A", Role: "ADMIN"})
		assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))
	})
	t.Run("duplicate email ignores case", func(t *testing.T) {
		registerTasker(t, svc, "worker@example.com")
		_, err := svc.Register(RegisterInput{Email: "Worker@Example.com", Password: "hunter2hunter2", FullName: "B", Role: "TASKER"})
		assert.Equal(t, utils.KindConflict, utils.KindOf(err))
	})
}

func TestLoginRejections(t *testing.T) {
	svc, repo, _ := newUserFixture()
	result := registerTasker(t, svc, "worker@example.com")

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(LoginInput{Email: "nobody@example.com", Password: "hunter2hunter2"})
		assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))
	})
	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(LoginInput{Email: "worker@example.com", Password: "wrong-password"})
		assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))
	})
	t.Run("deactivated account", func(t *testing.T) {
		repo.users[result.User.ID].IsActive = false
		_, err := svc.Login(LoginInput{Email: "worker@example.com", Password: "hunter2hunter2"})
		assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
	})
}

func TestDeactivate(t *testing.T) {
	svc, repo, rec := newUserFixture()
	result := registerTasker(t, svc, "worker@example.com")
	manager := models.Actor{ID: "m1", Role: models.RoleManager}
	repo.users["m1"] = &models.User{ID: "m1", Email: "boss@example.com", Role: models.RoleManager, IsActive: true}

	u, err := svc.Deactivate(manager, result.User.ID)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	assert.Contains(t, rec.actions, "user_deactivated")

	_, err = svc.Deactivate(manager, result.User.ID)
	assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))

	_, err = svc.Deactivate(manager, "m1")
	assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))

	_, err = svc.Deactivate(models.Actor{ID: result.User.ID, Role: models.RoleTasker}, "m1")
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
}

func TestListManagersOnly(t *testing.T) {
	svc, repo, _ := newUserFixture()
	registerTasker(t, svc, "worker@example.com")
	repo.users["m1"] = &models.User{ID: "m1", Email: "boss@example.com", Role: models.RoleManager, IsActive: true}
	manager := models.Actor{ID: "m1", Role: models.RoleManager}

	taskers, err := svc.List(manager, "TASKER", true)
	require.NoError(t, err)
	assert.Len(t, taskers, 1)

	_, err = svc.List(models.Actor{ID: "x", Role: models.RoleTasker}, "", false)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
}
