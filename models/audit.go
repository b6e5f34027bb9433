package models

import "time"

// AuditEntry is one append-only record of a mutating action: who did what to
// which entity, with the values relevant to the change.
type AuditEntry struct {
	ID         string         `bson:"id" json:"id"`
	UserID     string         `bson:"userId" json:"userId"`
	Action     string         `bson:"action" json:"action"`
	EntityType string         `bson:"entityType" json:"entityType"`
	EntityID   string         `bson:"entityId" json:"entityId"`
	Changes    map[string]any `bson:"changes,omitempty" json:"changes,omitempty"`
	IPAddress  string         `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent  string         `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	CreatedAt  time.Time      `bson:"createdAt" json:"createdAt"`
}
