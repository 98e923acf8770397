package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetAlertsOptions filters the alert snapshot.
type GetAlertsOptions struct {
	ActiveOnly bool
}

// GetAlerts fetches the alert snapshot.
func (c *Client) GetAlerts(ctx context.Context, opts GetAlertsOptions) (*AlertsResponse, error) {
	query := url.Values{}
	query.Set("active", strconv.FormatBool(opts.ActiveOnly))

	var resp AlertsResponse
	if err := c.get(ctx, "/alerts", query, &resp); err != nil {
		return nil, fmt.Errorf("get alerts: %w", err)
	}

	return &resp, nil
}
