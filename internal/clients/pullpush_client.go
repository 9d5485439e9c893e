package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/maternoscope/pipeline/internal/models"
)

const (
	PULLPUSH_API_URL       = "https://api.pullpush.io/reddit/search/submission"
	pullPushRequestTimeout = 30 * time.Second
)

// PullPushClient talks to the PullPush (formerly Pushshift) search API, the
// reliable path for historical posts from specific dates.
type PullPushClient struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

func NewPullPushClient(userAgent string) *PullPushClient {
	return &PullPushClient{
		client:    &http.Client{Timeout: pullPushRequestTimeout},
		baseURL:   PULLPUSH_API_URL,
		userAgent: userAgent,
	}
}

// FetchPage requests one page of submissions created in [after, before),
// sorted ascending by creation time. PullPush's own ordering breaks ties for
// items sharing a timestamp.
func (c *PullPushClient) FetchPage(ctx context.Context, subreddit string, after, before int64, size int) ([]models.PullPushSubmission, error) {
	parsedURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("[PullPushClient] Failed to parse URL: %w", err)
	}
	queryParams := parsedURL.Query()
	queryParams.Add("subreddit", subreddit)
	queryParams.Add("after", strconv.FormatInt(after, 10))
	queryParams.Add("before", strconv.FormatInt(before, 10))
	queryParams.Add("size", strconv.Itoa(size))
	queryParams.Add("sort", "asc")
	queryParams.Add("sort_type", "created_utc")
	parsedURL.RawQuery = queryParams.Encode()

	slog.Debug("[PullPushClient] Making API request", slog.String("url", parsedURL.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[PullPushClient] Request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("[PullPushClient] Failed to read response body: %w", err)
		}
		var response models.PullPushResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("[PullPushClient] Unexpected API response format: %w", err)
		}
		return response.Data, nil
	case http.StatusTooManyRequests:
		return nil, errors.New("[PullPushClient] Rate limit exceeded")
	default:
		return nil, fmt.Errorf("[PullPushClient] Unexpected status code %d", resp.StatusCode)
	}
}
