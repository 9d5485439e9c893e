package collector

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/maternoscope/pipeline/internal/models"
)

// SubmissionSearcher is the historical-search source: one page of submissions
// created in [after, before), ascending by creation time.
type SubmissionSearcher interface {
	FetchPage(ctx context.Context, subreddit string, after, before int64, size int) ([]models.PullPushSubmission, error)
}

const (
	defaultPageSize = 100
	defaultPace     = 1 * time.Second
)

// CursorCollector exhaustively walks a bounded time window by advancing a
// lower-bound cursor to the last item's timestamp. This is the only strategy
// that can be proven complete for a window; prefer it wherever the source
// offers it.
type CursorCollector struct {
	Source  SubmissionSearcher
	Extract Extractor

	PageSize int
	Pace     time.Duration
	// Sleep is injectable for tests; defaults to time.Sleep.
	Sleep func(time.Duration)
}

func (c *CursorCollector) pageSize() int {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return defaultPageSize
}

func (c *CursorCollector) pace() {
	sleep := c.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	pace := c.Pace
	if pace == 0 {
		pace = defaultPace
	}
	sleep(pace)
}

// Collect returns every post in the window, deduplicated by post_id and
// sorted ascending by creation time, capped at maxPosts when positive. A page
// failure ends the walk and returns what was collected so far; an empty
// result means "no data", which is indistinguishable from total source
// failure at this layer.
func (c *CursorCollector) Collect(ctx context.Context, subreddit string, window Window, maxPosts int) []models.CanonicalPost {
	slog.Info("[CursorCollector] Fetching posts",
		slog.String("subreddit", subreddit),
		slog.Time("start", window.Start),
		slog.Time("end", window.End))

	var posts []models.CanonicalPost
	seen := make(map[string]struct{})
	after := window.Start.Unix()
	before := window.End.Unix()

	for {
		size := c.pageSize()
		if maxPosts > 0 && maxPosts-len(posts) < size {
			size = maxPosts - len(posts)
		}

		page, err := c.Source.FetchPage(ctx, subreddit, after, before, size)
		if err != nil {
			slog.Error("[CursorCollector] API request failed", slog.String("error", err.Error()))
			break
		}
		if len(page) == 0 {
			slog.Info("[CursorCollector] No more posts found")
			break
		}
		slog.Debug("[CursorCollector] Retrieved posts from API", slog.Int("count", len(page)))

		for _, item := range page {
			if maxPosts > 0 && len(posts) >= maxPosts {
				break
			}
			post := c.Extract.FromPullPush(item)
			if post == nil {
				continue
			}
			// A cursor anchored on a timestamp can re-serve the boundary
			// item; duplicates are discarded, never overwritten.
			if _, dup := seen[post.PostID]; dup {
				continue
			}
			seen[post.PostID] = struct{}{}
			posts = append(posts, *post)

			if len(posts)%50 == 0 {
				slog.Info("[CursorCollector] Collected posts so far...", slog.Int("count", len(posts)))
			}
		}

		if maxPosts > 0 && len(posts) >= maxPosts {
			break
		}
		// A short page means the source has no more data for the window.
		if len(page) < size {
			slog.Info("[CursorCollector] Reached end of available posts")
			break
		}

		after = int64(page[len(page)-1].CreatedUTC)
		c.pace()
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PostDate.Before(posts[j].PostDate)
	})

	slog.Info("[CursorCollector] Successfully collected posts",
		slog.String("subreddit", subreddit), slog.Int("count", len(posts)))

	if len(posts) == 0 {
		slog.Warn("[CursorCollector] No posts found for the requested window")
		slog.Info("This could be due to:")
		slog.Info("1. No posts were made in that window")
		slog.Info("2. Subreddit doesn't exist or is private")
		slog.Info("3. PullPush API is down or rate limited")
		slog.Info("4. Date is too far in the past or future")
	}

	return posts
}
