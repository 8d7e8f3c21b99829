// internal/mqtt/health.go

package mqtt

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Connected: c.connected && c.client.IsConnected(),
		Broker:    fmt.Sprintf("%s:%d", c.cfg.Broker, c.cfg.Port),
	}

	return status, nil
}

func (c *Client) WaitForConnection(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if c.IsConnected() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("connection timeout after %v", timeout)
}
