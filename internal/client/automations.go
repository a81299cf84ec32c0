package client

import (
	"context"
	"net/http"
	"net/url"

	"socialbot-gateway/pkg/models"
)

func (c *Client) ListAutomations(ctx context.Context, p models.AutomationListParams) ([]models.Automation, *models.Pagination, error) {
	q := pageQuery(p.Page, p.PerPage)
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	var out []models.Automation
	page, err := c.do(ctx, http.MethodGet, "/automations", q, nil, &out)
	return out, page, err
}

func (c *Client) GetAutomation(ctx context.Context, id string) (models.Automation, error) {
	var out models.Automation
	_, err := c.do(ctx, http.MethodGet, "/automations/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateAutomation(ctx context.Context, req models.CreateAutomationRequest) (models.Automation, error) {
	var out models.Automation
	_, err := c.do(ctx, http.MethodPost, "/automations", nil, req, &out)
	return out, err
}

func (c *Client) UpdateAutomation(ctx context.Context, id string, req models.UpdateAutomationRequest) (models.Automation, error) {
	var out models.Automation
	_, err := c.do(ctx, http.MethodPatch, "/automations/"+url.PathEscape(id), nil, req, &out)
	return out, err
}

// SetAutomationStatus is the PATCH the dashboard toggle sends.
func (c *Client) SetAutomationStatus(ctx context.Context, id string, status models.AutomationStatus) (models.Automation, error) {
	return c.UpdateAutomation(ctx, id, models.UpdateAutomationRequest{Status: &status})
}

func (c *Client) DeleteAutomation(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/automations/"+url.PathEscape(id), nil, nil, nil)
	return err
}

func (c *Client) EstimateCredits(ctx context.Context, req models.CreditEstimateRequest) (models.CreditEstimate, error) {
	var out models.CreditEstimate
	_, err := c.do(ctx, http.MethodPost, "/automations/estimate", nil, req, &out)
	return out, err
}

func (c *Client) ListSocialAccounts(ctx context.Context, platform models.Platform) ([]models.SocialAccount, error) {
	q := url.Values{}
	if platform != "" {
		q.Set("platform", string(platform))
	}
	var out []models.SocialAccount
	_, err := c.do(ctx, http.MethodGet, "/social-accounts", q, nil, &out)
	return out, err
}

func (c *Client) CreateSocialAccount(ctx context.Context, req models.SocialAccountRequest) (models.SocialAccount, error) {
	var out models.SocialAccount
	_, err := c.do(ctx, http.MethodPost, "/social-accounts", nil, req, &out)
	return out, err
}

func (c *Client) DeleteSocialAccount(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/social-accounts/"+url.PathEscape(id), nil, nil, nil)
	return err
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var out models.User
	_, err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out)
	return out, err
}
