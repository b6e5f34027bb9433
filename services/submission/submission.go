package submission

import (
	"context"
	"errors"
	"strings"
	"time"

	submissionRepo "taskpilot/database/repository/submission"
	"taskpilot/models"
	"taskpilot/utils"

	"github.com/google/uuid"
)

const screenshotFolder = "task-submissions"

// Create uploads the screenshot and records a PENDING submission. Only
// HANDSHAKE accounts take submissions; OUTLIER work is billed by session
// time alone.
func (s *DefaultSubmissionService) Create(ctx context.Context, actor models.Actor, input CreateInput) (*models.TaskSubmission, error) {
	if !actor.IsTasker() {
		return nil, utils.Forbiddenf("only taskers can create task submissions")
	}
	if strings.TrimSpace(input.TaskID) == "" {
		return nil, utils.InvalidInputf("task id is required")
	}
	if input.Screenshot == nil {
		return nil, utils.InvalidInputf("screenshot is required")
	}

	account, err := s.Accounts.GetByID(input.AccountID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load account")
	}
	if account == nil {
		return nil, utils.NotFoundf("account not found")
	}
	if account.TaskerID != actor.ID {
		return nil, utils.Forbiddenf("you can only submit tasks for your assigned accounts")
	}
	if account.AccountType != models.AccountTypeHandshake {
		return nil, utils.InvalidStatef("only Handshake accounts require task submissions")
	}
	if !account.IsActive {
		return nil, utils.InvalidStatef("cannot submit tasks for inactive account")
	}

	url, err := s.Storage.UploadFile(ctx, input.Screenshot, screenshotFolder)
	if err != nil {
		return nil, utils.Internalf(err, "failed to upload screenshot")
	}

	now := time.Now()
	sub := &models.TaskSubmission{
		ID:            uuid.New().String(),
		AccountID:     input.AccountID,
		TaskerID:      actor.ID,
		TaskID:        strings.TrimSpace(input.TaskID),
		ScreenshotURL: url,
		Notes:         input.Notes,
		Status:        models.SubmissionPending,
		SubmittedAt:   now,
	}
	if err := s.Submissions.Create(sub); err != nil {
		return nil, utils.Internalf(err, "failed to create submission")
	}

	s.Audit.Record(actor, "task_submitted", "task_submission", sub.ID, map[string]any{
		"accountId": input.AccountID,
		"taskId":    sub.TaskID,
	})

	sub.Account = account.Ref()
	s.attachRefs([]*models.TaskSubmission{sub})
	return sub, nil
}

// Review approves or rejects a PENDING submission. The status check and the
// update are one conditional write, so a submission is reviewed exactly once
// even under concurrent reviewers.
func (s *DefaultSubmissionService) Review(actor models.Actor, submissionID string, input ReviewInput) (*models.TaskSubmission, error) {
	if !actor.IsManager() {
		return nil, utils.Forbiddenf("only managers can review submissions")
	}
	status := strings.ToUpper(input.Status)
	if status != models.SubmissionApproved && status != models.SubmissionRejected {
		return nil, utils.InvalidInputf("status must be APPROVED or REJECTED")
	}

	sub, err := s.Submissions.GetByID(submissionID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load submission")
	}
	if sub == nil {
		return nil, utils.NotFoundf("submission not found")
	}
	if sub.Status != models.SubmissionPending {
		return nil, utils.InvalidStatef("submission has already been reviewed")
	}

	updated, err := s.Submissions.Review(submissionID, status, actor.ID, input.ReviewNotes, time.Now())
	if err != nil {
		if errors.Is(err, submissionRepo.ErrAlreadyReviewed) {
			return nil, utils.InvalidStatef("submission has already been reviewed")
		}
		return nil, utils.Internalf(err, "failed to review submission")
	}

	s.Audit.Record(actor, "task_submission_reviewed", "task_submission", submissionID, map[string]any{
		"status":      status,
		"reviewNotes": input.ReviewNotes,
	})

	title := "Task approved"
	body := "Your task submission " + updated.TaskID + " was approved."
	if status == models.SubmissionRejected {
		title = "Task rejected"
		body = "Your task submission " + updated.TaskID + " was rejected."
	}
	s.Notifier.Notify(models.PushPayload{
		UserID: updated.TaskerID,
		Title:  title,
		Body:   body,
		Data:   map[string]string{"submissionId": updated.ID},
	})

	s.attachRefs([]*models.TaskSubmission{updated})
	return updated, nil
}

// GetByID returns one submission. Taskers may only view their own.
func (s *DefaultSubmissionService) GetByID(actor models.Actor, submissionID string) (*models.TaskSubmission, error) {
	sub, err := s.Submissions.GetByID(submissionID)
	if err != nil {
		return nil, utils.Internalf(err, "failed to load submission")
	}
	if sub == nil {
		return nil, utils.NotFoundf("submission not found")
	}
	if actor.IsTasker() && sub.TaskerID != actor.ID {
		return nil, utils.Forbiddenf("access denied")
	}
	s.attachRefs([]*models.TaskSubmission{sub})
	return sub, nil
}

// List returns submissions matching the query, role-scoped.
func (s *DefaultSubmissionService) List(actor models.Actor, query ListQuery) ([]models.TaskSubmission, error) {
	filter := submissionRepo.Filter{
		AccountID: query.AccountID,
		TaskerID:  query.TaskerID,
		Status:    query.Status,
		From:      query.From,
		To:        query.To,
	}
	if actor.IsTasker() {
		filter.TaskerID = actor.ID
	}

	subs, err := s.Submissions.List(filter)
	if err != nil {
		return nil, utils.Internalf(err, "failed to list submissions")
	}

	ptrs := make([]*models.TaskSubmission, len(subs))
	for i := range subs {
		ptrs[i] = &subs[i]
	}
	s.attachRefs(ptrs)
	return subs, nil
}

// attachRefs decorates submissions with slim account, tasker and reviewer
// projections. Lookup failures are ignored.
func (s *DefaultSubmissionService) attachRefs(subs []*models.TaskSubmission) {
	users := map[string]*models.UserRef{}
	lookupUser := func(id string) *models.UserRef {
		if id == "" {
			return nil
		}
		ref, ok := users[id]
		if !ok {
			if u, err := s.Users.GetByID(id); err == nil && u != nil {
				ref = u.Ref()
			}
			users[id] = ref
		}
		return ref
	}
	accounts := map[string]*models.AccountRef{}
	for _, sub := range subs {
		if sub.Account == nil {
			ref, ok := accounts[sub.AccountID]
			if !ok {
				if a, err := s.Accounts.GetByID(sub.AccountID); err == nil && a != nil {
					ref = a.Ref()
				}
				accounts[sub.AccountID] = ref
			}
			sub.Account = ref
		}
		sub.Tasker = lookupUser(sub.TaskerID)
		sub.Reviewer = lookupUser(sub.ReviewedBy)
	}
}
