package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	HeartbeatPrefix = "shopify:worker:heartbeat" // Keys: shopify:worker:heartbeat:{worker_id}
	heartbeatTTL    = 60 * time.Second
)

// WorkerHeartbeat represents the heartbeat data for a dispatch worker
type WorkerHeartbeat struct {
	WorkerID      string    `json:"worker_id"`
	Status        string    `json:"status"` // "idle", "processing"
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Heartbeat stores or updates a worker's heartbeat in Redis
// The heartbeat key has a TTL of 60 seconds - if a worker doesn't send a heartbeat
// within that time, it's considered inactive
func (r *Repository) Heartbeat(ctx context.Context, workerID, status string) error {
	heartbeat := WorkerHeartbeat{
		WorkerID:      workerID,
		Status:        status,
		LastHeartbeat: time.Now(),
	}

	data, err := json.Marshal(heartbeat)
	if err != nil {
		return fmt.Errorf("marshaling heartbeat: %w", err)
	}

	key := fmt.Sprintf("%s:%s", HeartbeatPrefix, workerID)
	if err := r.client.Set(ctx, key, data, heartbeatTTL).Err(); err != nil {
		return fmt.Errorf("setting heartbeat: %w", err)
	}

	return nil
}
