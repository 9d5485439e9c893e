package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/maternoscope/pipeline/config"
	"github.com/maternoscope/pipeline/internal/models"
)

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"

	redditMaxRetries     = 5
	redditInitialBackoff = 1 * time.Second
	redditMaxBackoff     = 32 * time.Second
	redditPageLimit      = 100
)

// RedditClient is the live-API client used when historical search is not
// available. Authenticates with client credentials and refreshes the token
// transparently on 401.
type RedditClient struct {
	conf      *clientcredentials.Config
	client    *http.Client
	userAgent string
	mu        sync.Mutex
}

func NewRedditClient(cfg config.RedditConfig) *RedditClient {
	oauthConf := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     REDDIT_AUTH_URL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	return &RedditClient{
		conf:      oauthConf,
		client:    oauthConf.Client(context.Background()),
		userAgent: cfg.UserAgent,
	}
}

func (rc *RedditClient) refreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.client = rc.conf.Client(context.Background())
}

// FetchListing returns one page of a subreddit listing ("new" or "hot"),
// already time-ordered descending for "new", plus the cursor for the next
// page. An empty cursor means the listing is exhausted.
func (rc *RedditClient) FetchListing(ctx context.Context, subreddit, listing, after string) ([]models.RedditSubmission, string, error) {
	endpoint := fmt.Sprintf("%s/r/%s/%s", REDDIT_API_URL, subreddit, listing)
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", redditPageLimit))
	if after != "" {
		params.Set("after", after)
	}
	return rc.fetchPage(ctx, endpoint, params, 0)
}

// FetchTop returns one page of the subreddit's top listing for a relative
// time filter (hour, day, week, month, year, all).
func (rc *RedditClient) FetchTop(ctx context.Context, subreddit, timeFilter, after string) ([]models.RedditSubmission, string, error) {
	endpoint := fmt.Sprintf("%s/r/%s/top", REDDIT_API_URL, subreddit)
	params := url.Values{}
	params.Set("t", timeFilter)
	params.Set("limit", fmt.Sprintf("%d", redditPageLimit))
	if after != "" {
		params.Set("after", after)
	}
	return rc.fetchPage(ctx, endpoint, params, 0)
}

func (rc *RedditClient) fetchPage(ctx context.Context, endpoint string, params url.Values, attempt int) ([]models.RedditSubmission, string, error) {
	requestURL := endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := rc.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("[RedditClient] Request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, "", fmt.Errorf("[RedditClient] Failed to read response body: %w", err)
		}
		var response models.RedditAPIResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, "", fmt.Errorf("[RedditClient] Failed to parse JSON response: %w", err)
		}
		items := make([]models.RedditSubmission, 0, len(response.Data.Children))
		for _, child := range response.Data.Children {
			items = append(items, child.Data)
		}
		return items, response.Data.After, nil

	case http.StatusUnauthorized:
		if attempt >= redditMaxRetries {
			return nil, "", fmt.Errorf("[RedditClient] Still unauthorized after token refresh")
		}
		slog.Warn("[RedditClient] Token expired - Refreshing and Retrying...")
		rc.refreshClient()
		return rc.fetchPage(ctx, endpoint, params, attempt+1)

	case http.StatusTooManyRequests:
		if attempt >= redditMaxRetries {
			return nil, "", fmt.Errorf("[RedditClient] Max retries reached, request failed")
		}
		backoff := redditInitialBackoff << attempt
		if backoff > redditMaxBackoff {
			backoff = redditMaxBackoff
		}
		slog.Warn("[RedditClient] 429 Too Many Requests - Retrying with backoff",
			slog.Int("attempt", attempt+1), slog.Duration("backoff", backoff))

		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(backoff):
		}
		return rc.fetchPage(ctx, endpoint, params, attempt+1)

	default:
		return nil, "", fmt.Errorf("[RedditClient] Unexpected status code %d", resp.StatusCode)
	}
}
