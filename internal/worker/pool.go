package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"modecoach-backend/internal/services"
)

// Pool drains the webhook queue. Deliveries are fire-and-forget: one
// attempt, failures logged and dropped.
type Pool struct {
	redis       *redis.Client
	webhooks    *services.WebhookService
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, webhooks *services.WebhookService, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		webhooks:    webhooks,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d webhook worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Webhook worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, services.WebhookQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}
		if len(result) < 2 {
			continue
		}

		var job services.WebhookJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Webhook worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Guard against double delivery when the queue is shared
		lockKey := fmt.Sprintf("webhook_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 5*time.Minute).Result()
		if err != nil || !locked {
			continue
		}

		deliverCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := p.webhooks.Deliver(deliverCtx, &job); err != nil {
			log.Printf("Webhook worker %d: delivery of %s failed: %v", id, job.ID, err)
		}
		cancel()

		p.redis.Del(ctx, lockKey)
	}
}
