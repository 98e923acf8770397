package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetIncidentsOptions filters the incident snapshot.
type GetIncidentsOptions struct {
	Hours    int    // Lookback window (default 24 server-side)
	Limit    int    // Max results (server caps at 1000)
	Severity string // Optional severity filter
	Type     string // Optional incident type filter
}

// GetIncidents fetches recent incidents within the lookback window.
func (c *Client) GetIncidents(ctx context.Context, opts GetIncidentsOptions) (*IncidentsResponse, error) {
	query := url.Values{}

	if opts.Hours > 0 {
		query.Set("hours", strconv.Itoa(opts.Hours))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Severity != "" {
		query.Set("severity", opts.Severity)
	}
	if opts.Type != "" {
		query.Set("type", opts.Type)
	}

	var resp IncidentsResponse
	if err := c.get(ctx, "/incidents", query, &resp); err != nil {
		return nil, fmt.Errorf("get incidents: %w", err)
	}

	return &resp, nil
}

// AcknowledgeIncident marks an incident as acknowledged and resolves
// any linked alert.
func (c *Client) AcknowledgeIncident(ctx context.Context, incidentID int64) error {
	path := fmt.Sprintf("/incidents/%d/acknowledge", incidentID)

	var resp AcknowledgeResponse
	if err := c.post(ctx, path, nil, &resp); err != nil {
		return fmt.Errorf("acknowledge incident %d: %w", incidentID, err)
	}

	return nil
}
