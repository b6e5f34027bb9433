// Package audit emits the append-only trail of mutating actions. Writers
// never fail their caller: a completed mutation must not be rolled back
// because the trail insert misfired.
package audit

import (
	auditRepo "taskpilot/database/repository/audit"
	"taskpilot/models"
	"taskpilot/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder records audit entries for mutating service operations.
type Recorder interface {
	Record(actor models.Actor, action, entityType, entityID string, changes map[string]any)
}

// DefaultRecorder persists entries through the audit repository.
type DefaultRecorder struct {
	Repo auditRepo.AuditRepository
}

// Trail reads back the recorded audit entries.
type Trail interface {
	List(actor models.Actor, userID, entityType string, limit int64) ([]models.AuditEntry, error)
}

// List retrieves audit entries, newest first. Managers only.
func (r *DefaultRecorder) List(actor models.Actor, userID, entityType string, limit int64) ([]models.AuditEntry, error) {
	if !actor.IsManager() {
		return nil, utils.Forbiddenf("only managers can view the audit log")
	}
	entries, err := r.Repo.List(auditRepo.Filter{
		UserID:     userID,
		EntityType: entityType,
		Limit:      limit,
	})
	if err != nil {
		return nil, utils.Internalf(err, "failed to list audit entries")
	}
	return entries, nil
}

// Record appends one audit entry. Failures are logged and swallowed.
func (r *DefaultRecorder) Record(actor models.Actor, action, entityType, entityID string, changes map[string]any) {
	entry := &models.AuditEntry{
		ID:         uuid.New().String(),
		UserID:     actor.ID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
	if err := r.Repo.Insert(entry); err != nil {
		utils.GetLogger().Error("Failed to write audit entry",
			zap.String("action", action),
			zap.String("entityId", entityID),
			zap.Error(err))
	}
}
