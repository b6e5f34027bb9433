package paymentRepo

import (
	"errors"
	"time"

	"taskpilot/models"
)

// Sentinel errors surfaced by the storage layer's conditional writes.
var (
	// ErrDuplicatePeriod: a record already exists for the exact
	// (taskerId, periodStart, periodEnd) triple.
	ErrDuplicatePeriod = errors.New("payment record already exists for this period")
	// ErrNotPending: the record was not PENDING when the transition ran.
	ErrNotPending = errors.New("payment record is not pending")
)

// Filter narrows payment listings. From/To bound PeriodStart inclusively.
type Filter struct {
	TaskerID string
	Status   string
	From     *time.Time
	To       *time.Time
	// SortPeriodEndAsc orders by period end ascending instead of the
	// default period start descending.
	SortPeriodEndAsc bool
}

// PaymentRepository defines methods for payment-record data access.
type PaymentRepository interface {
	// Create inserts a new PENDING record. Fails with ErrDuplicatePeriod if
	// the (taskerId, periodStart, periodEnd) triple is taken; the uniqueness
	// check and the insert are a single atomic operation.
	Create(record *models.PaymentRecord) error
	// GetByID retrieves a record by its unique ID. Returns (nil, nil) when absent.
	GetByID(id string) (*models.PaymentRecord, error)
	// GetByPeriod retrieves the record for an exact (taskerId, periodStart,
	// periodEnd) triple. Returns (nil, nil) when absent.
	GetByPeriod(taskerID string, periodStart, periodEnd time.Time) (*models.PaymentRecord, error)
	// MarkPaid atomically transitions PENDING -> PAID. A nil notes pointer
	// retains the existing notes. Fails with ErrNotPending otherwise.
	MarkPaid(id string, paidAt time.Time, paidBy string, notes *string) (*models.PaymentRecord, error)
	// Cancel atomically transitions PENDING -> CANCELLED. A nil notes
	// pointer retains the existing notes. Fails with ErrNotPending otherwise.
	Cancel(id string, notes *string) (*models.PaymentRecord, error)
	// List retrieves records matching the filter.
	List(filter Filter) ([]models.PaymentRecord, error)
}
