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

	"github.com/spacesedan/redditwatch/internal/models"
	"github.com/spacesedan/redditwatch/internal/watch"
)

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"
)

// RedditClient is the authenticated handle to the listing feed. Construct it
// once and pass it by reference into every watcher; it is safe for concurrent
// use and there should never be more than one per set of credentials.
type RedditClient struct {
	config *clientcredentials.Config
	client *http.Client
	mu     sync.Mutex
}

func NewRedditClient(clientID, clientSecret string) *RedditClient {
	oauthConf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     REDDIT_AUTH_URL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	return &RedditClient{
		config: oauthConf,
		client: oauthConf.Client(context.Background()),
	}
}

func (rc *RedditClient) refreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.client = rc.config.Client(context.Background())
}

func (rc *RedditClient) httpClient() *http.Client {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.client
}

// FetchNewSubmissions returns the newest submissions in an entity, newest
// first, plus the fullname of the newest one for use as the next poll's
// "before" anchor.
func (rc *RedditClient) FetchNewSubmissions(ctx context.Context, entity, before string) ([]models.Submission, string, error) {
	body, err := rc.fetchListing(ctx, entity, "new", before, 0)
	if err != nil {
		return nil, "", err
	}

	var listing models.SubmissionListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, "", fmt.Errorf("[RedditClient] Failed to decode submission listing: %w", err)
	}

	submissions := make([]models.Submission, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		submissions = append(submissions, child.Data)
	}

	newest := ""
	if len(submissions) > 0 {
		newest = submissions[0].Name
	}
	return submissions, newest, nil
}

// FetchNewComments returns the newest comments in an entity, newest first,
// plus the fullname of the newest one.
func (rc *RedditClient) FetchNewComments(ctx context.Context, entity, before string) ([]models.Comment, string, error) {
	body, err := rc.fetchListing(ctx, entity, "comments", before, 0)
	if err != nil {
		return nil, "", err
	}

	var listing models.CommentListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, "", fmt.Errorf("[RedditClient] Failed to decode comment listing: %w", err)
	}

	comments := make([]models.Comment, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		comments = append(comments, child.Data)
	}

	newest := ""
	if len(comments) > 0 {
		newest = comments[0].Name
	}
	return comments, newest, nil
}

func (rc *RedditClient) fetchListing(ctx context.Context, entity, listing, before string, attempt int) ([]byte, error) {
	parsedUrl, err := url.Parse(fmt.Sprintf("%s/r/%s/%s.json", REDDIT_API_URL, entity, listing))
	if err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to parse URL: %w", err)
	}
	queryParams := parsedUrl.Query()
	queryParams.Add("limit", "100")
	queryParams.Add("raw_json", "1")
	if before != "" {
		queryParams.Add("before", before)
	}
	parsedUrl.RawQuery = queryParams.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedUrl.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := rc.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusUnauthorized:
		if attempt >= 1 {
			return nil, fmt.Errorf("[RedditClient] Token refresh did not restore access: %w", watch.ErrAuthRevoked)
		}
		slog.Warn("[RedditClient] Token expired - Refreshing and retrying...",
			slog.String("entity", entity))
		rc.refreshClient()
		return rc.fetchListing(ctx, entity, listing, before, attempt+1)
	case http.StatusForbidden:
		return nil, fmt.Errorf("[RedditClient] Access to %q denied: %w", entity, watch.ErrAuthRevoked)
	case http.StatusNotFound:
		return nil, fmt.Errorf("[RedditClient] Entity %q not found: %w", entity, watch.ErrEntityGone)
	case http.StatusTooManyRequests:
		return rc.retryWithBackoff(ctx, entity, listing, before)
	}
	return nil, fmt.Errorf("[RedditClient] Unexpected status %d for %q", resp.StatusCode, entity)
}

func (rc *RedditClient) retryWithBackoff(ctx context.Context, entity, listing, before string) ([]byte, error) {
	backoff := INITIAL_BACKOFF
	for i := 1; i < MAX_RETRIES; i++ {
		slog.Warn("[RedditClient] 429 Too Many Requests - Retrying with backoff",
			slog.Int("attempt", i), slog.Duration("backoff", backoff))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}

		data, err := rc.fetchListing(ctx, entity, listing, before, 1)
		if err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("[RedditClient] Max retries reached, request failed")
}
