package models

import "time"

// WorkSession is one open/closed interval of billable time against an
// account. EndTime nil means the session is still running; TotalHours and
// TotalPayment are computed exactly once, when the session is stopped.
//
// Open mirrors EndTime == nil and exists so the storage layer can hang a
// partial unique index off it: at most one open session per account.
type WorkSession struct {
	ID           string     `bson:"id" json:"id"`
	AccountID    string     `bson:"accountId" json:"accountId"`
	TaskerID     string     `bson:"taskerId" json:"taskerId"`
	StartTime    time.Time  `bson:"startTime" json:"startTime"`
	EndTime      *time.Time `bson:"endTime,omitempty" json:"endTime,omitempty"`
	HourlyRate   float64    `bson:"hourlyRate" json:"hourlyRate"`
	TotalHours   *float64   `bson:"totalHours,omitempty" json:"totalHours,omitempty"`
	TotalPayment *float64   `bson:"totalPayment,omitempty" json:"totalPayment,omitempty"`
	Open         bool       `bson:"open" json:"-"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`

	Account *AccountRef `bson:"-" json:"account,omitempty"`
	Tasker  *UserRef    `bson:"-" json:"tasker,omitempty"`
}

// AccountRef is the slim account projection embedded in session and
// submission responses.
type AccountRef struct {
	ID          string `bson:"id" json:"id"`
	AccountName string `bson:"accountName" json:"accountName"`
	AccountType string `bson:"accountType" json:"accountType"`
	BrowserType string `bson:"browserType,omitempty" json:"browserType,omitempty"`
}

// Ref returns the embeddable projection of the account.
func (a *Account) Ref() *AccountRef {
	if a == nil {
		return nil
	}
	return &AccountRef{
		ID:          a.ID,
		AccountName: a.AccountName,
		AccountType: a.AccountType,
		BrowserType: a.BrowserType,
	}
}

// SessionTotals is the rolled-up footer returned with session listings.
type SessionTotals struct {
	TotalHours   float64 `json:"totalHours"`
	TotalPayment float64 `json:"totalPayment"`
}
