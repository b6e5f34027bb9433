// Package notification delivers best-effort FCM pushes to taskers when
// payroll or review state changes. Delivery runs on the async worker; the
// request path only enqueues.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"taskpilot/config"
	userRepo "taskpilot/database/repository/user"
	"taskpilot/models"
	"taskpilot/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypePushSend is the asynq task type for queued pushes.
const TypePushSend = "push:send"

// Notifier enqueues a push for background delivery.
type Notifier interface {
	Notify(payload models.PushPayload)
}

// QueueNotifier enqueues pushes onto the Redis-backed asynq queue.
type QueueNotifier struct {
	client *asynq.Client
}

// NewQueueNotifier creates a notifier backed by the shared Redis queue.
func NewQueueNotifier() *QueueNotifier {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPass,
		DB:       config.AppConfig.RedisQueueDB,
	})
	return &QueueNotifier{client: client}
}

// Notify enqueues the push. Failures are logged and swallowed; a lost push
// never fails the mutation that triggered it.
func (n *QueueNotifier) Notify(payload models.PushPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		utils.GetLogger().Warn("Failed to marshal push payload", zap.Error(err))
		return
	}
	if _, err := n.client.Enqueue(asynq.NewTask(TypePushSend, body)); err != nil {
		utils.GetLogger().Warn("Failed to enqueue push",
			zap.String("userId", payload.UserID),
			zap.Error(err))
	}
}

// FCMSender delivers a queued push via Firebase Cloud Messaging.
type FCMSender struct {
	Users userRepo.UserRepository
}

// Send looks up the recipient's FCM token and sends the push.
func (s *FCMSender) Send(ctx context.Context, payload models.PushPayload) error {
	u, err := s.Users.GetByID(payload.UserID)
	if err != nil {
		return fmt.Errorf("push: could not load user %s: %w", payload.UserID, err)
	}
	if u == nil || u.FCMToken == "" {
		// Recipient never registered a device; nothing to deliver.
		return nil
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("push: failed to send to user %s: %w", payload.UserID, err)
	}
	return nil
}
