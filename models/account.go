package models

import "time"

// Account types: OUTLIER accounts bill AI-training style work, HANDSHAKE
// accounts bill hourly task work and additionally require task submissions.
const (
	AccountTypeOutlier   = "OUTLIER"
	AccountTypeHandshake = "HANDSHAKE"
)

// Supported anti-detect browser profiles.
const (
	BrowserIXBrowser = "IX_BROWSER"
	BrowserGoLogin   = "GOLOGIN"
	BrowserMoreLogin = "MORELOGIN"
)

// Account is a named browser-automation work identity. Accounts are
// deactivated, never deleted; sessions keep referencing them afterwards.
type Account struct {
	ID          string    `bson:"id" json:"id"`
	AccountName string    `bson:"accountName" json:"accountName"`
	AccountType string    `bson:"accountType" json:"accountType"`
	BrowserType string    `bson:"browserType" json:"browserType"`
	HourlyRate  float64   `bson:"hourlyRate" json:"hourlyRate"`
	IsActive    bool      `bson:"isActive" json:"isActive"`
	TaskerID    string    `bson:"taskerId,omitempty" json:"taskerId,omitempty"`
	CreatedBy   string    `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`

	Tasker *UserRef `bson:"-" json:"tasker,omitempty"`
}

// ValidAccountType reports whether t is a known account type.
func ValidAccountType(t string) bool {
	return t == AccountTypeOutlier || t == AccountTypeHandshake
}

// ValidBrowserType reports whether b is a known browser profile.
func ValidBrowserType(b string) bool {
	return b == BrowserIXBrowser || b == BrowserGoLogin || b == BrowserMoreLogin
}
