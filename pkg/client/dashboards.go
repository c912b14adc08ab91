package client

import (
	"context"
	"net/http"
	"net/url"

	"askdb/pkg/cache"
	"askdb/pkg/models"
)

// Dashboard fetches the per-user dashboard document.
func (c *Client) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	v, err := c.cache.Do(ctx, cache.Key("dashboard", c.userID), dashboardTTL, func() (any, error) {
		var d models.Dashboard
		if err := c.call(ctx, "GET /dashboard", http.MethodGet, "/dashboard?user_id="+url.QueryEscape(c.userID), nil, &d); err != nil {
			return nil, err
		}
		return &d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Dashboard), nil
}

// SaveDashboard creates or replaces the user's dashboard and drops the
// cached copy.
func (c *Client) SaveDashboard(ctx context.Context, d models.Dashboard) error {
	if d.UserID == "" {
		d.UserID = c.userID
	}
	if err := c.call(ctx, "POST /dashboard", http.MethodPost, "/dashboard", d, nil); err != nil {
		return err
	}
	c.cache.Invalidate("dashboard:")
	return nil
}
