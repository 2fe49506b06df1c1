package cdn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	errs "emojiscraper/pkg/errors"
	"emojiscraper/pkg/logger"
	"emojiscraper/pkg/models"
)

// DefaultURLTemplate is the Discord emoji endpoint. {id} is replaced by the
// emoji id.
const DefaultURLTemplate = "https://cdn.discordapp.com/emojis/{id}.webp?size=96&quality=lossless"

// maxImageBytes caps a single response body.
const maxImageBytes = 8 << 20

// Client downloads emoji images
type Client struct {
	httpClient  *http.Client
	headers     map[string]string
	urlTemplate string
	logger      logger.Logger
}

// NewClient creates a client for urlTemplate, which must contain {id}.
func NewClient(urlTemplate string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			"Accept":     "image/webp,image/apng,image/*,*/*;q=0.8",
		},
		urlTemplate: urlTemplate,
		logger:      log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// URLFor returns the image URL of an emoji.
func (c *Client) URLFor(id string) string {
	return strings.ReplaceAll(c.urlTemplate, "{id}", url.PathEscape(id))
}

// Fetch downloads the raw image of an emoji. Failures are *errors.Error
// values typed by status code, so the caller can decide what to retry.
func (c *Client) Fetch(ctx context.Context, id string) ([]byte, error) {
	if err := models.ValidateEmojiID(id); err != nil {
		return nil, &errs.Error{Type: errs.ErrorTypeParsing, Message: err.Error()}
	}
	target := c.URLFor(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":   target,
			"error": err.Error(),
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      target,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if resp.StatusCode != http.StatusOK {
		return nil, errs.FromStatusCode(resp.StatusCode, fmt.Sprintf("emoji %s: %s", id, http.StatusText(resp.StatusCode)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read emoji %s: %v", id, err),
		}
	}
	return data, nil
}
