package worker_handler

import (
	"context"

	"github.com/Pasiduchamod/QBox-Backend/internal/notifier"
	"github.com/Pasiduchamod/QBox-Backend/internal/websocket"
	"github.com/redis/go-redis/v9"
)

type WorkerHandler struct {
	Ctx      context.Context
	Redis    *redis.Client
	Ws       *websocket.Hub
	Notifier notifier.Notifier
}

func NewWorkerHandler(ctx context.Context, redis *redis.Client, ws *websocket.Hub, n notifier.Notifier) *WorkerHandler {
	return &WorkerHandler{
		Ctx:      ctx,
		Redis:    redis,
		Ws:       ws,
		Notifier: n,
	}
}
