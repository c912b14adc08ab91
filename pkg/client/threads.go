package client

import (
	"context"
	"net/http"
	"net/url"

	"askdb/pkg/cache"
	"askdb/pkg/models"
)

// Thread fetches a conversation document by id.
func (c *Client) Thread(ctx context.Context, id string) (*models.ThreadDoc, error) {
	v, err := c.cache.Do(ctx, cache.Key("thread", id), threadTTL, func() (any, error) {
		var doc models.ThreadDoc
		if err := c.call(ctx, "GET /threads/{id}", http.MethodGet, "/threads/"+url.PathEscape(id), nil, &doc); err != nil {
			return nil, err
		}
		return &doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ThreadDoc), nil
}

// Query fetches a single exchange unit by id.
func (c *Client) Query(ctx context.Context, id string) (*models.QueryDoc, error) {
	v, err := c.cache.Do(ctx, cache.Key("query", id), queryTTL, func() (any, error) {
		var doc models.QueryDoc
		if err := c.call(ctx, "GET /queries/{id}", http.MethodGet, "/queries/"+url.PathEscape(id), nil, &doc); err != nil {
			return nil, err
		}
		return &doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.QueryDoc), nil
}

// History lists the user's threads, newest first. The listing churns
// with every exchange, hence the shortest cache window.
func (c *Client) History(ctx context.Context) ([]models.HistoryItem, error) {
	v, err := c.cache.Do(ctx, cache.Key("history", c.userID), historyTTL, func() (any, error) {
		var items []models.HistoryItem
		if err := c.call(ctx, "GET /history", http.MethodGet, "/history?user_id="+url.QueryEscape(c.userID), nil, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.HistoryItem), nil
}

// RenameThread updates a thread title and drops the affected cache
// entries.
func (c *Client) RenameThread(ctx context.Context, id, name string) error {
	body := map[string]string{"name": name}
	if err := c.call(ctx, "POST /threads/{id}/rename", http.MethodPost, "/threads/"+url.PathEscape(id)+"/rename", body, nil); err != nil {
		return err
	}
	c.cache.Invalidate("thread:")
	c.cache.Invalidate("history:")
	return nil
}

// DeleteThread removes a thread and drops the affected cache entries.
func (c *Client) DeleteThread(ctx context.Context, id string) error {
	if err := c.call(ctx, "DELETE /threads/{id}", http.MethodDelete, "/threads/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate("thread:")
	c.cache.Invalidate("history:")
	return nil
}
