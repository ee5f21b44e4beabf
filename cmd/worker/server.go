package main

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"novelhub-backend/internal/shared"
	"novelhub-backend/pkg/container"
	"novelhub-backend/pkg/logger"
)

// asynqServer wraps asynq.Server with additional functionality
type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer creates and configures the Asynq server
func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		c.RedisOpt(),
		asynq.Config{
			// subscription renew trừ coin nên ưu tiên cao nhất
			Queues: map[string]int{
				shared.QueueCritical: 20,
				shared.QueueDefault:  10,
				shared.QueueLow:      5,
			},
			Concurrency: 20,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.ErrorWithFields("Task failed", err, map[string]interface{}{
					"type": task.Type(),
				})
			}),
		},
	)

	go func() {
		log.Println("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Worker] Failed: %v", err)
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown dừng nhận task mới và chờ task đang chạy (asynq ShutdownTimeout mặc định 8s)
func (s *asynqServer) Shutdown() {
	start := time.Now()
	log.Println("[Worker] Shutting down...")
	s.Server.Shutdown()
	log.Printf("[Worker] ✓ Gracefully stopped in %s", time.Since(start).Round(time.Millisecond))
}
