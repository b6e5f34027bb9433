package payment

import (
	"errors"
	"fmt"
	"time"

	paymentRepo "taskpilot/database/repository/payment"
	sessionRepo "taskpilot/database/repository/session"
	"taskpilot/models"
	"taskpilot/utils"

	"github.com/google/uuid"
)

// Generate aggregates the tasker's completed sessions inside the period into
// a single PENDING record. Per-session totals are already rounded; the sums
// are rounded once more at record level so the record reconciles exactly
// against the session listing for the same period.
func (s *DefaultPaymentService) Generate(actor models.Actor, taskerID string, periodStart, periodEnd time.Time) (*models.PaymentRecord, error) {
	if !actor.IsManager() {
		return nil, utils.Forbiddenf("only managers can generate payments")
	}
	if periodEnd.Before(periodStart) {
		return nil, utils.InvalidInputf("end date must be after start date")
	}

	tasker, err := s.Users.GetByID(taskerID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load tasker")
	}
	if tasker == nil || tasker.Role != models.RoleTasker {
		return nil, utils.NotFoundf("tasker not found")
	}

	existing, err := s.Payments.GetByPeriod(taskerID, periodStart, periodEnd)
	if err != nil {
		return nil, utils.Internalf(err, "failed to check for existing payment record")
	}
	if existing != nil {
		return nil, utils.Conflictf("payment record already exists for this period")
	}

	sessions, err := s.Sessions.List(sessionRepo.Filter{
		TaskerID: taskerID,
		Status:   sessionRepo.StatusCompleted,
		From:     &periodStart,
		To:       &periodEnd,
	})
	if err != nil {
		return nil, utils.Internalf(err, "failed to load sessions for period")
	}
	if len(sessions) == 0 {
		return nil, utils.InvalidInputf("no completed work sessions found in this period")
	}

	var totalHours, totalAmount float64
	for _, sess := range sessions {
		if sess.TotalHours != nil {
			totalHours += *sess.TotalHours
		}
		if sess.TotalPayment != nil {
			totalAmount += *sess.TotalPayment
		}
	}

	record := &models.PaymentRecord{
		ID:          uuid.New().String(),
		TaskerID:    taskerID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		TotalHours:  utils.Round2(totalHours),
		TotalAmount: utils.Round2(totalAmount),
		Status:      models.PaymentPending,
	}
	if err := s.Payments.Create(record); err != nil {
		if errors.Is(err, paymentRepo.ErrDuplicatePeriod) {
			return nil, utils.Conflictf("payment record already exists for this period")
		}
		return nil, utils.Internalf(err, "failed to create payment record")
	}

	s.Audit.Record(actor, "payment_generated", "payment_record", record.ID, map[string]any{
		"taskerId":     taskerID,
		"periodStart":  periodStart,
		"periodEnd":    periodEnd,
		"totalHours":   record.TotalHours,
		"totalAmount":  record.TotalAmount,
		"sessionCount": len(sessions),
	})

	record.Tasker = tasker.Ref()
	return record, nil
}

// MarkPaid settles a PENDING record. The status check and the update are one
// conditional write; a record that already left PENDING is rejected with the
// message matching its terminal state.
func (s *DefaultPaymentService) MarkPaid(actor models.Actor, paymentID string, notes *string) (*models.PaymentRecord, error) {
	if !actor.IsManager() {
		return nil, utils.Forbiddenf("only managers can mark payments as paid")
	}

	record, err := s.loadRecord(paymentID)
	if err != nil {
		return nil, err
	}
	if msg := blockedTransitionMessage(record.Status, models.PaymentPaid); msg != "" {
		return nil, utils.InvalidStatef("%s", msg)
	}

	updated, err := s.Payments.MarkPaid(paymentID, time.Now(), actor.ID, notes)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrNotPending) {
			return nil, s.staleTransitionError(paymentID, models.PaymentPaid)
		}
		return nil, utils.Internalf(err, "failed to mark payment as paid")
	}

	s.Audit.Record(actor, "payment_marked_paid", "payment_record", paymentID, map[string]any{
		"taskerId":    updated.TaskerID,
		"totalAmount": updated.TotalAmount,
	})

	s.Notifier.Notify(models.PushPayload{
		UserID: updated.TaskerID,
		Title:  "Payment received",
		Body: fmt.Sprintf("Your payment of $%.2f for %s - %s has been marked as paid.",
			updated.TotalAmount,
			updated.PeriodStart.Format("Jan 2"),
			updated.PeriodEnd.Format("Jan 2, 2006")),
		Data: map[string]string{"paymentId": updated.ID},
	})

	s.attachRefs([]*models.PaymentRecord{updated})
	return updated, nil
}

// Cancel voids a PENDING record. PAID records stay paid; cancelling one is
// an invalid transition, not an override.
func (s *DefaultPaymentService) Cancel(actor models.Actor, paymentID string, notes *string) (*models.PaymentRecord, error) {
	if !actor.IsManager() {
		return nil, utils.Forbiddenf("only managers can cancel payments")
	}

	record, err := s.loadRecord(paymentID)
	if err != nil {
		return nil, err
	}
	if msg := blockedTransitionMessage(record.Status, models.PaymentCancelled); msg != "" {
		return nil, utils.InvalidStatef("%s", msg)
	}

	updated, err := s.Payments.Cancel(paymentID, notes)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrNotPending) {
			return nil, s.staleTransitionError(paymentID, models.PaymentCancelled)
		}
		return nil, utils.Internalf(err, "failed to cancel payment")
	}

	s.Audit.Record(actor, "payment_cancelled", "payment_record", paymentID, map[string]any{
		"taskerId":    updated.TaskerID,
		"totalAmount": updated.TotalAmount,
	})

	s.attachRefs([]*models.PaymentRecord{updated})
	return updated, nil
}

// GetByID returns one record. Taskers may only view their own.
func (s *DefaultPaymentService) GetByID(actor models.Actor, paymentID string) (*models.PaymentRecord, error) {
	record, err := s.loadRecord(paymentID)
	if err != nil {
		return nil, err
	}
	if actor.IsTasker() && record.TaskerID != actor.ID {
		return nil, utils.Forbiddenf("access denied")
	}
	s.attachRefs([]*models.PaymentRecord{record})
	return record, nil
}

// List returns records matching the query plus rolled-up totals. Taskers are
// pinned to their own records regardless of the query's tasker filter.
func (s *DefaultPaymentService) List(actor models.Actor, query ListQuery) ([]models.PaymentRecord, models.PaymentTotals, error) {
	filter := paymentRepo.Filter{
		TaskerID: query.TaskerID,
		Status:   query.Status,
		From:     query.From,
		To:       query.To,
	}
	if actor.IsTasker() {
		filter.TaskerID = actor.ID
	}

	records, err := s.Payments.List(filter)
	if err != nil {
		return nil, models.PaymentTotals{}, utils.Internalf(err, "failed to list payment records")
	}

	var totals models.PaymentTotals
	for _, rec := range records {
		totals.TotalHours += rec.TotalHours
		totals.TotalAmount += rec.TotalAmount
		switch rec.Status {
		case models.PaymentPending:
			totals.PendingAmount += rec.TotalAmount
		case models.PaymentPaid:
			totals.PaidAmount += rec.TotalAmount
		}
	}
	totals.TotalHours = utils.Round2(totals.TotalHours)
	totals.TotalAmount = utils.Round2(totals.TotalAmount)
	totals.PendingAmount = utils.Round2(totals.PendingAmount)
	totals.PaidAmount = utils.Round2(totals.PaidAmount)

	s.attachSliceRefs(records)
	return records, totals, nil
}

// Pending returns the outstanding payroll queue ordered by period end, oldest
// due first, plus the total amount outstanding.
func (s *DefaultPaymentService) Pending(actor models.Actor) ([]models.PaymentRecord, float64, error) {
	if !actor.IsManager() {
		return nil, 0, utils.Forbiddenf("only managers can view pending payments")
	}

	records, err := s.Payments.List(paymentRepo.Filter{
		Status:           models.PaymentPending,
		SortPeriodEndAsc: true,
	})
	if err != nil {
		return nil, 0, utils.Internalf(err, "failed to list pending payments")
	}

	var outstanding float64
	for _, rec := range records {
		outstanding += rec.TotalAmount
	}

	s.attachSliceRefs(records)
	return records, utils.Round2(outstanding), nil
}

func (s *DefaultPaymentService) loadRecord(paymentID string) (*models.PaymentRecord, error) {
	record, err := s.Payments.GetByID(paymentID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load payment record")
	}
	if record == nil {
		return nil, utils.NotFoundf("payment record not found")
	}
	return record, nil
}

// blockedTransitionMessage returns the rejection message for moving a record
// that is already terminal, or "" when the record is still PENDING.
func blockedTransitionMessage(current, target string) string {
	switch {
	case current == models.PaymentPaid && target == models.PaymentPaid:
		return "payment has already been marked as paid"
	case current == models.PaymentCancelled && target == models.PaymentPaid:
		return "cannot mark cancelled payment as paid"
	case current == models.PaymentCancelled && target == models.PaymentCancelled:
		return "payment is already cancelled"
	case current == models.PaymentPaid && target == models.PaymentCancelled:
		return "cannot cancel a paid payment"
	}
	return ""
}

// staleTransitionError resolves the right rejection after losing a race: the
// record left PENDING between our read and the conditional write.
func (s *DefaultPaymentService) staleTransitionError(paymentID, target string) error {
	record, err := s.Payments.GetByID(paymentID)
	if err != nil || record == nil {
		return utils.InvalidStatef("payment record is no longer pending")
	}
	if msg := blockedTransitionMessage(record.Status, target); msg != "" {
		return utils.InvalidStatef("%s", msg)
	}
	return utils.InvalidStatef("payment record is no longer pending")
}

// attachRefs decorates records with slim tasker and payer projections.
// Lookup failures are ignored; the core fields stand on their own.
func (s *DefaultPaymentService) attachRefs(records []*models.PaymentRecord) {
	refs := map[string]*models.UserRef{}
	lookup := func(id string) *models.UserRef {
		if id == "" {
			return nil
		}
		ref, ok := refs[id]
		if !ok {
			if u, err := s.Users.GetByID(id); err == nil && u != nil {
				ref = u.Ref()
			}
			refs[id] = ref
		}
		return ref
	}
	for _, rec := range records {
		rec.Tasker = lookup(rec.TaskerID)
		rec.Payer = lookup(rec.PaidBy)
	}
}

func (s *DefaultPaymentService) attachSliceRefs(records []models.PaymentRecord) {
	ptrs := make([]*models.PaymentRecord, len(records))
	for i := range records {
		ptrs[i] = &records[i]
	}
	s.attachRefs(ptrs)
}
