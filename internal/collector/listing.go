package collector

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/maternoscope/pipeline/internal/models"
)

// ListingFetcher is the live-API source: one page of a subreddit listing plus
// the cursor for the next page (empty when exhausted).
type ListingFetcher interface {
	FetchListing(ctx context.Context, subreddit, listing, after string) ([]models.RedditSubmission, string, error)
	FetchTop(ctx context.Context, subreddit, timeFilter, after string) ([]models.RedditSubmission, string, error)
}

// topListingCap bounds the top-listing walk, matching the live API's own
// listing depth limit.
const topListingCap = 1000

// ListingCollector covers a window by merging the "hot" and "new" listing
// views. Because "hot" is not strictly time-ordered this is best-effort and
// may under-collect; callers must treat its output as a lower bound. Used
// only when historical search is unavailable.
type ListingCollector struct {
	Source  ListingFetcher
	Extract Extractor

	Pace  time.Duration
	Sleep func(time.Duration)
}

func (l *ListingCollector) pace() {
	sleep := l.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	pace := l.Pace
	if pace == 0 {
		pace = defaultPace
	}
	sleep(pace)
}

// Collect walks the hot and new listings, keeping items inside the window,
// deduplicated across listings by post_id (first seen wins), sorted ascending
// by creation time. A listing's failure terminates only that listing's walk.
func (l *ListingCollector) Collect(ctx context.Context, subreddit string, window Window, maxPosts int) []models.CanonicalPost {
	slog.Info("[ListingCollector] Fetching posts",
		slog.String("subreddit", subreddit),
		slog.Time("start", window.Start),
		slog.Time("end", window.End))

	var posts []models.CanonicalPost
	seen := make(map[string]struct{})

	for i, listing := range []string{"hot", "new"} {
		if maxPosts > 0 && len(posts) >= maxPosts {
			break
		}
		// Pace between listings, not after the last one.
		if i > 0 {
			l.pace()
		}
		posts = l.walkListing(ctx, subreddit, listing, window, maxPosts, seen, posts)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PostDate.Before(posts[j].PostDate)
	})

	slog.Info("[ListingCollector] Successfully collected posts",
		slog.String("subreddit", subreddit), slog.Int("count", len(posts)))
	return posts
}

func (l *ListingCollector) walkListing(ctx context.Context, subreddit, listing string, window Window, maxPosts int, seen map[string]struct{}, posts []models.CanonicalPost) []models.CanonicalPost {
	after := ""
	for {
		items, nextAfter, err := l.Source.FetchListing(ctx, subreddit, listing, after)
		if err != nil {
			slog.Warn("[ListingCollector] Error fetching listing, ending this walk",
				slog.String("listing", listing), slog.String("error", err.Error()))
			return posts
		}

		for _, item := range items {
			if maxPosts > 0 && len(posts) >= maxPosts {
				return posts
			}

			created := time.Unix(int64(item.CreatedUTC), 0).UTC()
			// Listings are walked newest-first; passing the window's start
			// means everything after it is older still.
			if created.Before(window.Start) {
				return posts
			}
			if !window.Contains(created) {
				continue
			}

			if _, dup := seen[item.ID]; dup {
				slog.Debug("[ListingCollector] Skipping duplicate post",
					slog.String("post_id", item.ID), slog.String("listing", listing))
				continue
			}

			post := l.Extract.FromReddit(item)
			if post == nil {
				continue
			}
			seen[item.ID] = struct{}{}
			posts = append(posts, *post)

			if len(posts)%100 == 0 {
				slog.Info("[ListingCollector] Collected posts so far...", slog.Int("count", len(posts)))
			}
		}

		if nextAfter == "" {
			return posts
		}
		after = nextAfter
		l.pace()
	}
}

// CollectTop walks the subreddit's top listing for a relative time filter,
// with an optional case-insensitive flair substring filter. Output keeps the
// listing's own ranking.
func (l *ListingCollector) CollectTop(ctx context.Context, subreddit, timeFilter string, maxPosts int, flairFilter string) []models.CanonicalPost {
	slog.Info("[ListingCollector] Fetching top posts",
		slog.String("subreddit", subreddit),
		slog.String("time_filter", timeFilter))
	if flairFilter != "" {
		slog.Info("[ListingCollector] Filtering by flair", slog.String("flair", flairFilter))
	}

	var posts []models.CanonicalPost
	seen := make(map[string]struct{})
	after := ""
	fetched := 0

	for {
		items, nextAfter, err := l.Source.FetchTop(ctx, subreddit, timeFilter, after)
		if err != nil {
			slog.Error("[ListingCollector] Error fetching top posts", slog.String("error", err.Error()))
			break
		}

		for _, item := range items {
			if maxPosts > 0 && len(posts) >= maxPosts {
				return posts
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			if flairFilter != "" {
				if item.LinkFlairText == "" ||
					!strings.Contains(strings.ToLower(item.LinkFlairText), strings.ToLower(flairFilter)) {
					continue
				}
			}

			post := l.Extract.FromReddit(item)
			if post == nil {
				continue
			}
			seen[item.ID] = struct{}{}
			posts = append(posts, *post)

			if len(posts)%50 == 0 {
				slog.Info("[ListingCollector] Collected posts so far...", slog.Int("count", len(posts)))
			}
		}

		fetched += len(items)
		if nextAfter == "" || fetched >= topListingCap {
			break
		}
		after = nextAfter
		l.pace()
	}

	slog.Info("[ListingCollector] Successfully collected top posts",
		slog.String("subreddit", subreddit), slog.Int("count", len(posts)))
	return posts
}
