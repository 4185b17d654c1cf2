package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	QueueKey    = "notify_queue"
	QueueDLQKey = "notify_queue_dlq"
)

type Producer interface {
	Enqueue(ctx context.Context, job Job) error
}

type RedisProducer struct {
	Redis *redis.Client
}

func NewProducer(redis *redis.Client) Producer {
	return &RedisProducer{Redis: redis}
}

func (p *RedisProducer) Enqueue(ctx context.Context, job Job) error {
	if job.CreatedAt == 0 {
		job.CreatedAt = time.Now().Unix()
	}

	jobBytes, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return p.Redis.ZAdd(ctx, QueueKey, redis.Z{
		Score:  Score(job),
		Member: jobBytes,
	}).Err()
}

// Score orders the queue by readiness. The pool polls with Max=now, so
// the score must not exceed the unix second a job becomes eligible at;
// the fractional offset lets more urgent (lower) priorities pop first
// among jobs ready in the same second.
func Score(job Job) float64 {
	return float64(job.CreatedAt) - 1/float64(job.Priority+2)
}
