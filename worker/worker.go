package worker

import (
	"context"
	"encoding/json"
	"time"

	"taskpilot/config"
	"taskpilot/models"
	"taskpilot/services/notification"
	"taskpilot/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitPushWorker runs the async push-delivery worker in background.
func InitPushWorker(sender *notification.FCMSender) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPass,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypePushSend, handlePushTask(sender))

	go func() {
		logger := utils.GetLogger()
		logger.Info("Starting push worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				break
			}
			logger.Error("Push worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("Push worker exhausted retry attempts")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

func handlePushTask(sender *notification.FCMSender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.PushPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("Invalid push payload", zap.Error(err))
			return err
		}

		if err := sender.Send(ctx, p); err != nil {
			utils.GetLogger().Warn("Push delivery failed",
				zap.String("userId", p.UserID),
				zap.Error(err))
			return err
		}
		return nil
	}
}
