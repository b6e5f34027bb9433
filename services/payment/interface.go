package payment

import (
	"time"

	paymentRepo "taskpilot/database/repository/payment"
	sessionRepo "taskpilot/database/repository/session"
	userRepo "taskpilot/database/repository/user"
	"taskpilot/models"
	"taskpilot/services/audit"
	"taskpilot/services/notification"
)

// ListQuery narrows payment listings. From/To bound the period start.
type ListQuery struct {
	TaskerID string
	Status   string
	From     *time.Time
	To       *time.Time
}

// PaymentService aggregates completed work sessions into payment records
// and drives each record through its PENDING -> PAID / CANCELLED lifecycle.
type PaymentService interface {
	// Generate creates a PENDING record covering the tasker's completed
	// sessions inside [periodStart, periodEnd]. At most one record may exist
	// per (tasker, period) triple.
	Generate(actor models.Actor, taskerID string, periodStart, periodEnd time.Time) (*models.PaymentRecord, error)
	// MarkPaid settles a PENDING record. PAID and CANCELLED are terminal.
	MarkPaid(actor models.Actor, paymentID string, notes *string) (*models.PaymentRecord, error)
	// Cancel voids a PENDING record. A PAID record cannot be cancelled.
	Cancel(actor models.Actor, paymentID string, notes *string) (*models.PaymentRecord, error)
	// GetByID returns one record; taskers may only view their own.
	GetByID(actor models.Actor, paymentID string) (*models.PaymentRecord, error)
	// List returns records matching the query, role-scoped, with rolled-up
	// totals over the result.
	List(actor models.Actor, query ListQuery) ([]models.PaymentRecord, models.PaymentTotals, error)
	// Pending returns all PENDING records ordered by period end, oldest due
	// first, plus the outstanding amount.
	Pending(actor models.Actor) ([]models.PaymentRecord, float64, error)
	// ExportCSV renders records matching the query as a CSV document and
	// returns the bytes plus a dated filename.
	ExportCSV(actor models.Actor, query ListQuery) ([]byte, string, error)
}

// DefaultPaymentService is the production implementation.
type DefaultPaymentService struct {
	Payments paymentRepo.PaymentRepository
	Sessions sessionRepo.SessionRepository
	Users    userRepo.UserRepository
	Audit    audit.Recorder
	Notifier notification.Notifier
}
