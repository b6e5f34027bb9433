package models

import "time"

// Payment settlement states. PENDING may move to PAID or CANCELLED; both of
// those are terminal and mutually exclusive.
const (
	PaymentPending   = "PENDING"
	PaymentPaid      = "PAID"
	PaymentCancelled = "CANCELLED"
)

// PaymentRecord is an aggregated payout covering one tasker's closed
// sessions in a date period. Amounts are derived sums over the session
// ledger, rounded to cents; they are regenerated, never edited.
type PaymentRecord struct {
	ID          string     `bson:"id" json:"id"`
	TaskerID    string     `bson:"taskerId" json:"taskerId"`
	PeriodStart time.Time  `bson:"periodStart" json:"periodStart"`
	PeriodEnd   time.Time  `bson:"periodEnd" json:"periodEnd"`
	TotalHours  float64    `bson:"totalHours" json:"totalHours"`
	TotalAmount float64    `bson:"totalAmount" json:"totalAmount"`
	Status      string     `bson:"status" json:"status"`
	PaidAt      *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	PaidBy      string     `bson:"paidBy,omitempty" json:"paidBy,omitempty"`
	Notes       string     `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`

	Tasker *UserRef `bson:"-" json:"tasker,omitempty"`
	Payer  *UserRef `bson:"-" json:"payer,omitempty"`
}

// ValidPaymentStatus reports whether s is a known settlement state.
func ValidPaymentStatus(s string) bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentCancelled
}

// PaymentTotals is the rolled-up footer returned with payment listings.
type PaymentTotals struct {
	TotalHours    float64 `json:"totalHours"`
	TotalAmount   float64 `json:"totalAmount"`
	PendingAmount float64 `json:"pendingAmount"`
	PaidAmount    float64 `json:"paidAmount"`
}
