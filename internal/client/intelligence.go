package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"socialbot-gateway/pkg/models"
)

func (c *Client) ListBots(ctx context.Context) ([]models.Bot, error) {
	var out []models.Bot
	_, err := c.do(ctx, http.MethodGet, "/intelligence/bots", nil, nil, &out)
	return out, err
}

func (c *Client) CreateBot(ctx context.Context, req models.BotRequest) (models.Bot, error) {
	var out models.Bot
	_, err := c.do(ctx, http.MethodPost, "/intelligence/bots", nil, req, &out)
	return out, err
}

func (c *Client) ListBrandVoices(ctx context.Context) ([]models.BrandVoice, error) {
	var out []models.BrandVoice
	_, err := c.do(ctx, http.MethodGet, "/intelligence/brand-voices", nil, nil, &out)
	return out, err
}

func (c *Client) ListKnowledgeSources(ctx context.Context, botID string) ([]models.KnowledgeSource, error) {
	q := url.Values{}
	if botID != "" {
		q.Set("bot_id", botID)
	}
	var out []models.KnowledgeSource
	_, err := c.do(ctx, http.MethodGet, "/intelligence/knowledge", q, nil, &out)
	return out, err
}

func (c *Client) CreateKnowledgeSource(ctx context.Context, req models.KnowledgeSourceRequest) (models.KnowledgeSource, error) {
	var out models.KnowledgeSource
	_, err := c.do(ctx, http.MethodPost, "/intelligence/knowledge", nil, req, &out)
	return out, err
}

func (c *Client) LLMConfig(ctx context.Context) (models.LLMConfig, error) {
	var out models.LLMConfig
	_, err := c.do(ctx, http.MethodGet, "/intelligence/llm-config", nil, nil, &out)
	return out, err
}

func (c *Client) SaveLLMConfig(ctx context.Context, req models.LLMConfigRequest) (models.LLMConfig, error) {
	var out models.LLMConfig
	_, err := c.do(ctx, http.MethodPut, "/intelligence/llm-config", nil, req, &out)
	return out, err
}

func (c *Client) ListFlaggedReplies(ctx context.Context, status models.FlaggedReplyStatus) ([]models.FlaggedReply, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	var out []models.FlaggedReply
	_, err := c.do(ctx, http.MethodGet, "/intelligence/flagged-replies", q, nil, &out)
	return out, err
}

func (c *Client) ModerateReply(ctx context.Context, id string, req models.ModerateReplyRequest) (models.FlaggedReply, error) {
	var out models.FlaggedReply
	_, err := c.do(ctx, http.MethodPost, "/intelligence/flagged-replies/"+url.PathEscape(id)+"/moderate", nil, req, &out)
	return out, err
}

func (c *Client) AutoInferVoiceDNA(ctx context.Context, req models.AutoInferRequest) (models.VoiceDNAProfile, error) {
	var out models.VoiceDNAProfile
	_, err := c.do(ctx, http.MethodPost, "/intelligence/voice-dna/auto-infer", nil, req, &out)
	return out, err
}

func (c *Client) VoiceDNAStatus(ctx context.Context, id string) (models.VoiceDNAProfile, error) {
	var out models.VoiceDNAProfile
	_, err := c.do(ctx, http.MethodGet, "/intelligence/voice-dna/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) VoiceDNAReview(ctx context.Context, id string) (models.VoiceDNAReview, error) {
	var out models.VoiceDNAReview
	_, err := c.do(ctx, http.MethodGet, "/intelligence/voice-dna/"+url.PathEscape(id)+"/review", nil, nil, &out)
	return out, err
}

func (c *Client) VoiceDNAFeedback(ctx context.Context, id string, req models.VoiceDNAFeedbackRequest) (models.VoiceDNAFeedback, error) {
	var out models.VoiceDNAFeedback
	_, err := c.do(ctx, http.MethodPost, "/intelligence/voice-dna/"+url.PathEscape(id)+"/feedback", nil, req, &out)
	return out, err
}

func (c *Client) AdjustVoiceDNA(ctx context.Context, id string, req models.VoiceDNAAdjustRequest) (models.VoiceDNAProfile, error) {
	var out models.VoiceDNAProfile
	_, err := c.do(ctx, http.MethodPost, "/intelligence/voice-dna/"+url.PathEscape(id)+"/adjust", nil, req, &out)
	return out, err
}

func memoryPath(botID, suffix string) string {
	return "/intelligence/bots/" + url.PathEscape(botID) + "/memory/" + suffix
}

func (c *Client) MemoryStats(ctx context.Context, botID string) (models.MemoryStats, error) {
	var out models.MemoryStats
	_, err := c.do(ctx, http.MethodGet, memoryPath(botID, "stats"), nil, nil, &out)
	return out, err
}

func (c *Client) MemoryUsers(ctx context.Context, p models.MemoryListParams) ([]models.MemoryUser, *models.Pagination, error) {
	q := pageQuery(p.Page, p.PerPage)
	if p.Stage != "" {
		q.Set("stage", string(p.Stage))
	}
	var out []models.MemoryUser
	page, err := c.do(ctx, http.MethodGet, memoryPath(p.BotID, "users"), q, nil, &out)
	return out, page, err
}

func (c *Client) MemoryUser(ctx context.Context, botID, userID string) (models.MemoryUser, error) {
	var out models.MemoryUser
	_, err := c.do(ctx, http.MethodGet, memoryPath(botID, "users/"+url.PathEscape(userID)), nil, nil, &out)
	return out, err
}

func (c *Client) SearchMemory(ctx context.Context, botID, query string, limit int) ([]models.MemorySearchResult, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	var out []models.MemorySearchResult
	_, err := c.do(ctx, http.MethodGet, memoryPath(botID, "search"), q, nil, &out)
	return out, err
}
