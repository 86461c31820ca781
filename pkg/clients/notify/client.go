package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/ceqc/internal/config"
)

// Client delivers finished reports to an external endpoint.
type Client interface {
	SendReport(ctx context.Context, req ReportMessage) error
}

// WebhookClient is a resty-backed implementation of Client that posts JSON
// to a single webhook URL.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.NotifyConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

// ReportMessage is the webhook payload for one generated report.
type ReportMessage struct {
	Title     string   `json:"title"`
	Range     string   `json:"range"`
	Summary   []string `json:"summary"`
	Location  string   `json:"location,omitempty"`
	Generated string   `json:"generatedAt"`
}

// webhookError is the error body most chat webhooks answer with.
type webhookError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SendReport posts the message; any non-2xx answer is an error.
func (c *WebhookClient) SendReport(ctx context.Context, req ReportMessage) error {
	apiErr := new(webhookError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post report webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		if message == "" {
			message = resp.Status()
		}
		return fmt.Errorf("report webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}
	return nil
}
