package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetHeatmap fetches the aggregated heat map for the given lookback
// window in hours.
func (c *Client) GetHeatmap(ctx context.Context, hours int) (*HeatmapResponse, error) {
	query := url.Values{}
	if hours > 0 {
		query.Set("hours", strconv.Itoa(hours))
	}

	var resp HeatmapResponse
	if err := c.get(ctx, "/heatmap", query, &resp); err != nil {
		return nil, fmt.Errorf("get heatmap: %w", err)
	}

	return &resp, nil
}
