package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const QueueName = "urlvetter:scan_tasks"

var Client *redis.Client

// Task is one queued scan. Enrichment payloads are optional raw JSON from
// the external semantic/threat-intel providers; absent means the source
// was unavailable or disabled for this scan.
type Task struct {
	JobID       string          `json:"job_id"`
	URL         string          `json:"url"`
	Semantic    json.RawMessage `json:"semantic,omitempty"`
	ThreatIntel json.RawMessage `json:"threat_intel,omitempty"`
}

// Init connects to Redis and pings it to ensure it's alive.
func Init(addr string) error {
	Client = redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    "", // No password for local docker
		DB:          0,  // Default DB
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

// Enqueue pushes a scan task onto the worker queue.
func Enqueue(ctx context.Context, task Task) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshaling task: %w", err)
	}
	if err := Client.RPush(ctx, QueueName, raw).Err(); err != nil {
		return fmt.Errorf("enqueuing task: %w", err)
	}
	return nil
}

// Dequeue blocks until a task is available.
func Dequeue(ctx context.Context) (Task, error) {
	var task Task

	// BLPOP returns [queue_name, value].
	result, err := Client.BLPop(ctx, 0*time.Second, QueueName).Result()
	if err != nil {
		return task, fmt.Errorf("dequeue: %w", err)
	}
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return task, fmt.Errorf("malformed task %q: %w", result[1], err)
	}
	return task, nil
}
