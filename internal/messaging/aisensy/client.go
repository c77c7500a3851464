package aisensy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://backend.aisensy.com/campaign/t1/api/v2"
	defaultUserAgent = "serene-minds-messaging/0.1"
)

var (
	errMissingCampaign    = errors.New("aisensy: campaign name required")
	errMissingDestination = errors.New("aisensy: destination phone required")
)

// Config controls how the AiSensy client behaves.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	UserAgent  string
}

// Client wraps the AiSensy campaign REST endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("aisensy: API key is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
		userAgent:  userAgent,
	}, nil
}

// SendCampaign submits one campaign message. Non-2xx responses are returned
// as errors carrying the gateway's body for diagnosis.
func (c *Client) SendCampaign(ctx context.Context, req CampaignRequest) (*CampaignResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	req.APIKey = c.apiKey

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("aisensy: marshal campaign body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("aisensy: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("aisensy: send campaign %q: %w", req.CampaignName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("aisensy: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("aisensy rejected campaign",
			"campaign", req.CampaignName,
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return nil, fmt.Errorf("aisensy: campaign %q rejected: status %d: %s", req.CampaignName, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out CampaignResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &out); err != nil {
			// The gateway has been observed returning bare strings on success.
			out = CampaignResponse{Success: true}
		}
	}
	return &out, nil
}
