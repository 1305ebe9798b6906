package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"fixly/config"
	"fixly/models"
	"fixly/services/tasks"
	"fixly/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
)

// InitPushWorker runs the async push-delivery worker in background.
func InitPushWorker() *asynq.Server {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
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
	mux.HandleFunc(tasks.TypePushSend, handlePushTask)

	go func() {
		log.Println("[PushWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[PushWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[PushWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	return srv
}

// handlePushTask delivers one queued push message to one FCM endpoint.
func handlePushTask(ctx context.Context, task *asynq.Task) error {
	var msg models.PushMessage
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		log.Printf("[PushWorker] invalid payload: %v", err)
		return err
	}

	fcmMsg := &messaging.Message{
		Token: msg.Endpoint,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: map[string]string{
			"type":        msg.Kind,
			"bookingId":   msg.BookingID,
			"serviceType": msg.ServiceType,
			"district":    msg.District,
		},
	}

	if _, err := utils.FCMClient.Send(ctx, fcmMsg); err != nil {
		log.Printf("[PushWorker] failed to send push to endpoint %s: %v", msg.Endpoint, err)
		return err
	}
	return nil
}
