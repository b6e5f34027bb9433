package models

import "time"

// Submission review states. A submission is reviewed exactly once.
const (
	SubmissionPending  = "PENDING"
	SubmissionApproved = "APPROVED"
	SubmissionRejected = "REJECTED"
)

// TaskSubmission is task evidence uploaded by a tasker for a HANDSHAKE
// account, reviewed by a manager. It reads account and tasker identity but
// never touches billing numbers.
type TaskSubmission struct {
	ID            string     `bson:"id" json:"id"`
	AccountID     string     `bson:"accountId" json:"accountId"`
	TaskerID      string     `bson:"taskerId" json:"taskerId"`
	TaskID        string     `bson:"taskId" json:"taskId"`
	ScreenshotURL string     `bson:"screenshotUrl" json:"screenshotUrl"`
	Notes         string     `bson:"notes,omitempty" json:"notes,omitempty"`
	Status        string     `bson:"status" json:"status"`
	SubmittedAt   time.Time  `bson:"submittedAt" json:"submittedAt"`
	ReviewedAt    *time.Time `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	ReviewedBy    string     `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewNotes   string     `bson:"reviewNotes,omitempty" json:"reviewNotes,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`

	Account  *AccountRef `bson:"-" json:"account,omitempty"`
	Tasker   *UserRef    `bson:"-" json:"tasker,omitempty"`
	Reviewer *UserRef    `bson:"-" json:"reviewer,omitempty"`
}

// ValidSubmissionStatus reports whether s is a known review state.
func ValidSubmissionStatus(s string) bool {
	return s == SubmissionPending || s == SubmissionApproved || s == SubmissionRejected
}
