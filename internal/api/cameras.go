package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetCamerasOptions filters the camera roster.
type GetCamerasOptions struct {
	ActiveOnly bool
	District   string
	Route      string
}

// GetCameras fetches the camera roster.
func (c *Client) GetCameras(ctx context.Context, opts GetCamerasOptions) (*CamerasResponse, error) {
	query := url.Values{}
	query.Set("active", strconv.FormatBool(opts.ActiveOnly))
	if opts.District != "" {
		query.Set("district", opts.District)
	}
	if opts.Route != "" {
		query.Set("route", opts.Route)
	}

	var resp CamerasResponse
	if err := c.get(ctx, "/cameras", query, &resp); err != nil {
		return nil, fmt.Errorf("get cameras: %w", err)
	}

	return &resp, nil
}

// GetCamera fetches a single camera with its recent incidents.
func (c *Client) GetCamera(ctx context.Context, cameraID int64) (*CameraDetailResponse, error) {
	var resp CameraDetailResponse
	if err := c.get(ctx, "/cameras/"+strconv.FormatInt(cameraID, 10), nil, &resp); err != nil {
		return nil, fmt.Errorf("get camera %d: %w", cameraID, err)
	}

	return &resp, nil
}
