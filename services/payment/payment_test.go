package payment

import (
	"sort"
	"testing"
	"time"

	paymentRepo "taskpilot/database/repository/payment"
	sessionRepo "taskpilot/database/repository/session"
	userRepo "taskpilot/database/repository/user"
	"taskpilot/models"
	"taskpilot/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePaymentRepo is an in-memory PaymentRepository honoring the same
// uniqueness and conditional-transition contract as the Mongo implementation.
type fakePaymentRepo struct {
	records map[string]*models.PaymentRecord
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{records: map[string]*models.PaymentRecord{}}
}

func (f *fakePaymentRepo) Create(record *models.PaymentRecord) error {
	for _, existing := range f.records {
		if existing.TaskerID == record.TaskerID &&
			existing.PeriodStart.Equal(record.PeriodStart) &&
			existing.PeriodEnd.Equal(record.PeriodEnd) {
			return paymentRepo.ErrDuplicatePeriod
		}
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	cp := *record
	f.records[record.ID] = &cp
	return nil
}

func (f *fakePaymentRepo) GetByID(id string) (*models.PaymentRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakePaymentRepo) GetByPeriod(taskerID string, periodStart, periodEnd time.Time) (*models.PaymentRecord, error) {
	for _, rec := range f.records {
		if rec.TaskerID == taskerID && rec.PeriodStart.Equal(periodStart) && rec.PeriodEnd.Equal(periodEnd) {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentRepo) MarkPaid(id string, paidAt time.Time, paidBy string, notes *string) (*models.PaymentRecord, error) {
	rec, ok := f.records[id]
	if !ok || rec.Status != models.PaymentPending {
		return nil, paymentRepo.ErrNotPending
	}
	rec.Status = models.PaymentPaid
	rec.PaidAt = &paidAt
	rec.PaidBy = paidBy
	if notes != nil {
		rec.Notes = *notes
	}
	rec.UpdatedAt = time.Now()
	cp := *rec
	return &cp, nil
}

func (f *fakePaymentRepo) Cancel(id string, notes *string) (*models.PaymentRecord, error) {
	rec, ok := f.records[id]
	if !ok || rec.Status != models.PaymentPending {
		return nil, paymentRepo.ErrNotPending
	}
	rec.Status = models.PaymentCancelled
	if notes != nil {
		rec.Notes = *notes
	}
	rec.UpdatedAt = time.Now()
	cp := *rec
	return &cp, nil
}

func (f *fakePaymentRepo) List(filter paymentRepo.Filter) ([]models.PaymentRecord, error) {
	var out []models.PaymentRecord
	for _, rec := range f.records {
		if filter.TaskerID != "" && rec.TaskerID != filter.TaskerID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.From != nil && rec.PeriodStart.Before(*filter.From) {
			continue
		}
		if filter.To != nil && rec.PeriodStart.After(*filter.To) {
			continue
		}
		out = append(out, *rec)
	}
	if filter.SortPeriodEndAsc {
		sort.Slice(out, func(i, j int) bool { return out[i].PeriodEnd.Before(out[j].PeriodEnd) })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].PeriodStart.After(out[j].PeriodStart) })
	}
	return out, nil
}

type fakeSessionRepo struct {
	sessions map[string]*models.WorkSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*models.WorkSession{}}
}

func (f *fakeSessionRepo) Create(sess *models.WorkSession) error {
	sess.Open = true
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

type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) Record(_ models.Actor, action, _, _ string, _ map[string]any) {
	r.actions = append(r.actions, action)
}

type recordingNotifier struct {
	payloads []models.PushPayload
}

func (r *recordingNotifier) Notify(p models.PushPayload) {
	r.payloads = append(r.payloads, p)
}

type paymentFixture struct {
	svc      *DefaultPaymentService
	payments *fakePaymentRepo
	sessions *fakeSessionRepo
	users    *fakeUserRepo
	audit    *recordingAudit
	notifier *recordingNotifier

	manager models.Actor
	tasker  models.Actor
}

func newPaymentFixture() *paymentFixture {
	payments := newFakePaymentRepo()
	sessions := newFakeSessionRepo()
	users := newFakeUserRepo()
	rec := &recordingAudit{}
	notifier := &recordingNotifier{}

	users.users["m1"] = &models.User{ID: "m1", Email: "boss@example.com", FullName: "The Boss", Role: models.RoleManager, IsActive: true}
	users.users["t1"] = &models.User{ID: "t1", Email: "worker@example.com", FullName: "Worker One", Role: models.RoleTasker, IsActive: true}

	return &paymentFixture{
		svc: &DefaultPaymentService{
			Payments: payments,
			Sessions: sessions,
			Users:    users,
			Audit:    rec,
			Notifier: notifier,
		},
		payments: payments,
		sessions: sessions,
		users:    users,
		audit:    rec,
		notifier: notifier,
		manager:  models.Actor{ID: "m1", Role: models.RoleManager},
		tasker:   models.Actor{ID: "t1", Role: models.RoleTasker},
	}
}

// seedClosedSession inserts a closed session with already-rounded totals.
func (fx *paymentFixture) seedClosedSession(taskerID string, start time.Time, hours, payment float64) {
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	fx.sessions.sessions[uuid.New().String()] = &models.WorkSession{
		ID:           uuid.New().String(),
		AccountID:    "a1",
		TaskerID:     taskerID,
		StartTime:    start,
		EndTime:      &end,
		HourlyRate:   15.00,
		TotalHours:   &hours,
		TotalPayment: &payment,
		Open:         false,
	}
}

var (
	periodStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC)
)

func TestGenerateAggregatesClosedSessions(t *testing.T) {
	fx := newPaymentFixture()
	fx.seedClosedSession("t1", periodStart.Add(24*time.Hour), 1.50, 22.50)
	fx.seedClosedSession("t1", periodStart.Add(48*time.Hour), 2.25, 33.75)

	record, err := fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, record.Status)
	assert.InDelta(t, 3.75, record.TotalHours, 1e-9)
	assert.InDelta(t, 56.25, record.TotalAmount, 1e-9)
	assert.Equal(t, "t1", record.TaskerID)
	require.NotNil(t, record.Tasker)
	assert.Equal(t, "Worker One", record.Tasker.FullName)
	assert.Contains(t, fx.audit.actions, "payment_generated")
}

func TestGenerateReconcilesWithSessionLedger(t *testing.T) {
	fx := newPaymentFixture()
	// Per-session values carry the session-level rounding; the record must
	// equal the rounded sum of exactly these values.
	seeds := []struct{ hours, payment float64 }{
		{0.02, 0.40},
		{1.51, 22.65},
		{7.99, 119.85},
	}
	var wantHours, wantAmount float64
	for i, s := range seeds {
		fx.seedClosedSession("t1", periodStart.Add(time.Duration(i+1)*24*time.Hour), s.hours, s.payment)
		wantHours += s.hours
		wantAmount += s.payment
	}

	record, err := fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.NoError(t, err)
	assert.InDelta(t, utils.Round2(wantHours), record.TotalHours, 1e-9)
	assert.InDelta(t, utils.Round2(wantAmount), record.TotalAmount, 1e-9)
}

func TestGenerateExcludesOpenAndOutOfPeriodSessions(t *testing.T) {
	fx := newPaymentFixture()
	// Open session inside the period.
	fx.sessions.sessions["open"] = &models.WorkSession{
		ID: "open", AccountID: "a1", TaskerID: "t1",
		StartTime: periodStart.Add(24 * time.Hour), Open: true, HourlyRate: 15.00,
	}
	// Closed session outside the period.
	fx.seedClosedSession("t1", periodStart.Add(-48*time.Hour), 4.00, 60.00)

	_, err := fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))
}

func TestGeneratePreconditions(t *testing.T) {
	fx := newPaymentFixture()
	fx.seedClosedSession("t1", periodStart.Add(24*time.Hour), 1.00, 15.00)

	t.Run("tasker cannot generate", func(t *testing.T) {
		_, err := fx.svc.Generate(fx.tasker, "t1", periodStart, periodEnd)
		assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
	})
	t.Run("inverted period", func(t *testing.T) {
		_, err := fx.svc.Generate(fx.manager, "t1", periodEnd, periodStart)
		assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))
	})
	t.Run("unknown tasker", func(t *testing.T) {
		_, err := fx.svc.Generate(fx.manager, "missing", periodStart, periodEnd)
		assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	})
	t.Run("manager id is not a tasker", func(t *testing.T) {
		_, err := fx.svc.Generate(fx.manager, "m1", periodStart, periodEnd)
		assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	})
}

func TestGenerateRejectsDuplicatePeriod(t *testing.T) {
	fx := newPaymentFixture()
	fx.seedClosedSession("t1", periodStart.Add(24*time.Hour), 1.50, 22.50)

	_, err := fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.NoError(t, err)

	_, err = fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	// A different period for the same tasker is fine.
	later := periodEnd.Add(24 * time.Hour)
	fx.seedClosedSession("t1", later.Add(time.Hour), 1.00, 15.00)
	_, err = fx.svc.Generate(fx.manager, "t1", later, later.Add(7*24*time.Hour))
	assert.NoError(t, err)
}

func TestMarkPaidTransitionsAndNotifies(t *testing.T) {
	fx := newPaymentFixture()
	fx.seedClosedSession("t1", periodStart.Add(24*time.Hour), 1.50, 22.50)
	record, err := fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.NoError(t, err)

	notes := "march payroll"
	paid, err := fx.svc.MarkPaid(fx.manager, record.ID, &notes)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "m1", paid.PaidBy)
	assert.Equal(t, "march payroll", paid.Notes)
	require.NotNil(t, paid.Payer)
	assert.Equal(t, "The Boss", paid.Payer.FullName)

	require.Len(t, fx.notifier.payloads, 1)
	assert.Equal(t, "t1", fx.notifier.payloads[0].UserID)
	assert.Contains(t, fx.audit.actions, "payment_marked_paid")
}

func TestMarkPaidTerminalStates(t *testing.T) {
	fx := newPaymentFixture()
	fx.seedClosedSession("t1", periodStart.Add(24*time.Hour), 1.50, 22.50)
	record, err := fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.NoError(t, err)

	_, err = fx.svc.MarkPaid(fx.manager, record.ID, nil)
	require.NoError(t, err)

	_, err = fx.svc.MarkPaid(fx.manager, record.ID, nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))
	assert.Contains(t, err.Error(), "already been marked as paid")
}

func TestMarkPaidRejectsCancelledRecord(t *testing.T) {
	fx := newPaymentFixture()
	fx.seedClosedSession("t1", periodStart.Add(24*time.Hour), 1.50, 22.50)
	record, err := fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.NoError(t, err)

	_, err = fx.svc.Cancel(fx.manager, record.ID, nil)
	require.NoError(t, err)

	_, err = fx.svc.MarkPaid(fx.manager, record.ID, nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))
	assert.Contains(t, err.Error(), "cancelled")
}

func TestCancelRejectsPaidRecord(t *testing.T) {
	fx := newPaymentFixture()
	fx.seedClosedSession("t1", periodStart.Add(24*time.Hour), 1.50, 22.50)
	record, err := fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.NoError(t, err)

	_, err = fx.svc.MarkPaid(fx.manager, record.ID, nil)
	require.NoError(t, err)

	_, err = fx.svc.Cancel(fx.manager, record.ID, nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))
	assert.Contains(t, err.Error(), "paid")
}

func TestCancelIsIdempotentRejection(t *testing.T) {
	fx := newPaymentFixture()
	fx.seedClosedSession("t1", periodStart.Add(24*time.Hour), 1.50, 22.50)
	record, err := fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.NoError(t, err)

	_, err = fx.svc.Cancel(fx.manager, record.ID, nil)
	require.NoError(t, err)

	_, err = fx.svc.Cancel(fx.manager, record.ID, nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))
	assert.Contains(t, err.Error(), "already cancelled")
}

func TestListTotalsBucketByStatus(t *testing.T) {
	fx := newPaymentFixture()
	fx.seedClosedSession("t1", periodStart.Add(24*time.Hour), 1.50, 22.50)
	first, err := fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.NoError(t, err)

	later := periodEnd.Add(24 * time.Hour)
	fx.seedClosedSession("t1", later.Add(time.Hour), 2.00, 30.00)
	_, err = fx.svc.Generate(fx.manager, "t1", later, later.Add(7*24*time.Hour))
	require.NoError(t, err)

	_, err = fx.svc.MarkPaid(fx.manager, first.ID, nil)
	require.NoError(t, err)

	records, totals, err := fx.svc.List(fx.manager, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.InDelta(t, 3.50, totals.TotalHours, 1e-9)
	assert.InDelta(t, 52.50, totals.TotalAmount, 1e-9)
	assert.InDelta(t, 22.50, totals.PaidAmount, 1e-9)
	assert.InDelta(t, 30.00, totals.PendingAmount, 1e-9)
}

func TestListScopesTaskersToTheirOwnRecords(t *testing.T) {
	fx := newPaymentFixture()
	fx.users.users["t2"] = &models.User{ID: "t2", Email: "other@example.com", FullName: "Worker Two", Role: models.RoleTasker, IsActive: true}

	fx.seedClosedSession("t1", periodStart.Add(24*time.Hour), 1.50, 22.50)
	fx.seedClosedSession("t2", periodStart.Add(24*time.Hour), 2.00, 30.00)
	_, err := fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.NoError(t, err)
	_, err = fx.svc.Generate(fx.manager, "t2", periodStart, periodEnd)
	require.NoError(t, err)

	// Even with an explicit filter for someone else, a tasker sees only
	// their own records.
	records, _, err := fx.svc.List(fx.tasker, ListQuery{TaskerID: "t2"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "t1", records[0].TaskerID)
}

func TestPendingOrdersByPeriodEnd(t *testing.T) {
	fx := newPaymentFixture()

	later := periodEnd.Add(24 * time.Hour)
	fx.seedClosedSession("t1", later.Add(time.Hour), 2.00, 30.00)
	_, err := fx.svc.Generate(fx.manager, "t1", later, later.Add(7*24*time.Hour))
	require.NoError(t, err)

	fx.seedClosedSession("t1", periodStart.Add(24*time.Hour), 1.50, 22.50)
	_, err = fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.NoError(t, err)

	records, outstanding, err := fx.svc.Pending(fx.manager)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].PeriodEnd.Before(records[1].PeriodEnd))
	assert.InDelta(t, 52.50, outstanding, 1e-9)

	_, _, err = fx.svc.Pending(fx.tasker)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
}

func TestGetByIDOwnership(t *testing.T) {
	fx := newPaymentFixture()
	fx.users.users["t2"] = &models.User{ID: "t2", Email: "other@example.com", FullName: "Worker Two", Role: models.RoleTasker, IsActive: true}
	fx.seedClosedSession("t1", periodStart.Add(24*time.Hour), 1.50, 22.50)
	record, err := fx.svc.Generate(fx.manager, "t1", periodStart, periodEnd)
	require.NoError(t, err)

	_, err = fx.svc.GetByID(models.Actor{ID: "t2", Role: models.RoleTasker}, record.ID)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

	got, err := fx.svc.GetByID(fx.tasker, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)

	_, err = fx.svc.GetByID(fx.manager, "missing")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}
