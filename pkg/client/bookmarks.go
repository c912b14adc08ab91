package client

import (
	"context"
	"net/http"
	"net/url"

	"askdb/pkg/cache"
	"askdb/pkg/models"
)

// Bookmarks lists the user's bookmarks.
func (c *Client) Bookmarks(ctx context.Context) ([]models.Bookmark, error) {
	v, err := c.cache.Do(ctx, cache.Key("bookmarks", c.userID), bookmarksTTL, func() (any, error) {
		var items []models.Bookmark
		if err := c.call(ctx, "GET /bookmarks", http.MethodGet, "/bookmarks?user_id="+url.QueryEscape(c.userID), nil, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Bookmark), nil
}

// CreateBookmark names a new collection over the given query ids.
func (c *Client) CreateBookmark(ctx context.Context, name string, queryIDs []string) (*models.Bookmark, error) {
	body := map[string]any{"user_id": c.userID, "bookmarkname": name, "query_ids": queryIDs}
	var bm models.Bookmark
	if err := c.call(ctx, "POST /bookmarks", http.MethodPost, "/bookmarks", body, &bm); err != nil {
		return nil, err
	}
	c.cache.Invalidate("bookmarks:")
	return &bm, nil
}

// UpdateBookmark replaces a bookmark's name and query set.
func (c *Client) UpdateBookmark(ctx context.Context, id, name string, queryIDs []string) error {
	body := map[string]any{"bookmarkname": name, "query_ids": queryIDs}
	if err := c.call(ctx, "PUT /bookmarks/{id}", http.MethodPut, "/bookmarks/"+url.PathEscape(id), body, nil); err != nil {
		return err
	}
	c.cache.Invalidate("bookmarks:")
	return nil
}

// DeleteBookmark removes a bookmark.
func (c *Client) DeleteBookmark(ctx context.Context, id string) error {
	if err := c.call(ctx, "DELETE /bookmarks/{id}", http.MethodDelete, "/bookmarks/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate("bookmarks:")
	return nil
}
