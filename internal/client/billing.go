package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"socialbot-gateway/pkg/models"
)

func (c *Client) ListNotifications(ctx context.Context, p models.NotificationListParams) ([]models.Notification, *models.Pagination, error) {
	q := pageQuery(p.Page, p.PerPage)
	if p.UnreadOnly {
		q.Set("unread", "true")
	}
	var out []models.Notification
	page, err := c.do(ctx, http.MethodGet, "/notifications", q, nil, &out)
	return out, page, err
}

func (c *Client) UnreadNotifications(ctx context.Context) (int64, error) {
	var out struct {
		Unread int64 `json:"unread"`
	}
	_, err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &out)
	return out.Unread, err
}

func (c *Client) MarkNotificationsRead(ctx context.Context, ids []uint) (int64, error) {
	var out struct {
		Updated int64 `json:"updated"`
	}
	_, err := c.do(ctx, http.MethodPatch, "/notifications/mark-read", nil, models.MarkReadRequest{IDs: ids}, &out)
	return out.Updated, err
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	var out struct {
		Updated int64 `json:"updated"`
	}
	_, err := c.do(ctx, http.MethodPatch, "/notifications/mark-all-read", nil, nil, &out)
	return out.Updated, err
}

func (c *Client) CreditBalance(ctx context.Context) (models.CreditBalance, error) {
	var out models.CreditBalance
	_, err := c.do(ctx, http.MethodGet, "/credits/balance", nil, nil, &out)
	return out, err
}

func (c *Client) CreditTransactions(ctx context.Context, p models.TransactionListParams) ([]models.CreditTransaction, *models.Pagination, error) {
	q := pageQuery(p.Page, p.PerPage)
	if p.Type != "" {
		q.Set("type", string(p.Type))
	}
	var out []models.CreditTransaction
	page, err := c.do(ctx, http.MethodGet, "/credits/transactions", q, nil, &out)
	return out, page, err
}

func (c *Client) CreditUsage(ctx context.Context, days int) (models.CreditUsage, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", fmt.Sprint(days))
	}
	var out models.CreditUsage
	_, err := c.do(ctx, http.MethodGet, "/credits/usage", q, nil, &out)
	return out, err
}

func (c *Client) Pricing(ctx context.Context) (models.Pricing, error) {
	var out models.Pricing
	_, err := c.do(ctx, http.MethodGet, "/credits/pricing", nil, nil, &out)
	return out, err
}
