package client

import (
	"context"
	"net/http"
	"net/url"

	"askdb/pkg/cache"
	"askdb/pkg/models"
)

// AITable fetches a folder document by id.
func (c *Client) AITable(ctx context.Context, id string) (*models.AITableDoc, error) {
	v, err := c.cache.Do(ctx, cache.Key("ai_table", id), tableTTL, func() (any, error) {
		var doc models.AITableDoc
		if err := c.call(ctx, "GET /ai-tables/{id}", http.MethodGet, "/ai-tables/"+url.PathEscape(id), nil, &doc); err != nil {
			return nil, err
		}
		return &doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.AITableDoc), nil
}

// ListAITables lists the user's folders.
func (c *Client) ListAITables(ctx context.Context) ([]models.AITableInfo, error) {
	v, err := c.cache.Do(ctx, cache.Key("ai_tables", c.userID), tableTTL, func() (any, error) {
		var items []models.AITableInfo
		if err := c.call(ctx, "GET /ai-tables", http.MethodGet, "/ai-tables?user_id="+url.QueryEscape(c.userID), nil, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.AITableInfo), nil
}
