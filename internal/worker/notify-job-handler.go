package worker

import (
	"context"
	"fmt"

	"github.com/Pasiduchamod/QBox-Backend/internal/queue"
	worker_handler "github.com/Pasiduchamod/QBox-Backend/internal/worker/worker-handler"
)

func (wp *WorkerPool) handleJob(ctx context.Context, job queue.Job) error {
	workerHandler := worker_handler.NewWorkerHandler(ctx, wp.Redis, wp.ws, wp.notifier)
	switch job.Type {
	case queue.JobTypeRoomClosedSummary:
		return workerHandler.HandleRoomClosedSummary(job.Payload)
	case queue.JobTypeWelcomeEmail:
		return workerHandler.HandleWelcomeEmail(job.Payload)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}
