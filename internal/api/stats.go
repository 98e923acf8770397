package api

import (
	"context"
	"fmt"

	"github.com/drivesight/console/internal/model"
)

// GetStats fetches the full dashboard statistics record.
func (c *Client) GetStats(ctx context.Context) (*model.Stats, error) {
	var stats model.Stats
	if err := c.get(ctx, "/stats", nil, &stats); err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}

	return &stats, nil
}
