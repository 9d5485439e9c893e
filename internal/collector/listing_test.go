package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maternoscope/pipeline/internal/models"
)

type listingPage struct {
	items []models.RedditSubmission
	after string
	err   error
}

type fakeListings struct {
	// pages keyed by listing name ("hot", "new", or the top time filter).
	pages map[string][]listingPage
	// next call index per listing.
	cursor map[string]int
}

func (f *fakeListings) next(key string) ([]models.RedditSubmission, string, error) {
	if f.cursor == nil {
		f.cursor = make(map[string]int)
	}
	i := f.cursor[key]
	f.cursor[key] = i + 1
	pages := f.pages[key]
	if i >= len(pages) {
		return nil, "", nil
	}
	p := pages[i]
	return p.items, p.after, p.err
}

func (f *fakeListings) FetchListing(ctx context.Context, subreddit, listing, after string) ([]models.RedditSubmission, string, error) {
	return f.next(listing)
}

func (f *fakeListings) FetchTop(ctx context.Context, subreddit, timeFilter, after string) ([]models.RedditSubmission, string, error) {
	return f.next(timeFilter)
}

func redditItem(id string, created int64, flair string) models.RedditSubmission {
	return models.RedditSubmission{
		ID:            id,
		CreatedUTC:    float64(created),
		Title:         "title " + id,
		Selftext:      "body " + id,
		Permalink:     "/r/test/comments/" + id + "/",
		LinkFlairText: flair,
		Subreddit:     "test",
	}
}

func TestListingCollectorMergesAndDeduplicates(t *testing.T) {
	w := testWindow(t)
	base := w.Start.Unix()

	src := &fakeListings{pages: map[string][]listingPage{
		// Hot is not time-ordered: in-window items interleaved with an
		// out-of-window one that must be skipped, not treated as a stop.
		"hot": {{items: []models.RedditSubmission{
			redditItem("h1", base+500, ""),
			redditItem("x1", w.End.Unix()+100, ""),
			redditItem("h2", base+100, ""),
		}}},
		// New is newest-first; "h2" reappears and must be kept once.
		"new": {{items: []models.RedditSubmission{
			redditItem("n1", base+900, ""),
			redditItem("h2", base+100, ""),
		}}},
	}}

	lc := &ListingCollector{Source: src, Sleep: func(time.Duration) {}}
	posts := lc.Collect(context.Background(), "test", w, 0)

	require.Len(t, posts, 3)
	ids := []string{posts[0].PostID, posts[1].PostID, posts[2].PostID}
	assert.Equal(t, []string{"h2", "h1", "n1"}, ids, "expected ascending creation order")
}

func TestListingCollectorStopsAtOlderThanWindow(t *testing.T) {
	w := testWindow(t)
	base := w.Start.Unix()

	src := &fakeListings{pages: map[string][]listingPage{
		"new": {
			{items: []models.RedditSubmission{
				redditItem("n1", base+100, ""),
				redditItem("old", base-100, ""),
				redditItem("n2", base+200, ""), // never reached
			}, after: "t3_next"},
			// A follow-up request would be a test failure: the walk must stop
			// at the first pre-window item.
			{err: errors.New("walk should have stopped")},
		},
	}}

	lc := &ListingCollector{Source: src, Sleep: func(time.Duration) {}}
	posts := lc.Collect(context.Background(), "test", w, 0)

	require.Len(t, posts, 1)
	assert.Equal(t, "n1", posts[0].PostID)
	assert.Equal(t, 1, src.cursor["new"])
}

func TestListingCollectorOneListingFailureDoesNotAbort(t *testing.T) {
	w := testWindow(t)
	base := w.Start.Unix()

	src := &fakeListings{pages: map[string][]listingPage{
		"hot": {{err: errors.New("upstream 500")}},
		"new": {{items: []models.RedditSubmission{redditItem("n1", base+100, "")}}},
	}}

	lc := &ListingCollector{Source: src, Sleep: func(time.Duration) {}}
	posts := lc.Collect(context.Background(), "test", w, 0)

	require.Len(t, posts, 1)
	assert.Equal(t, "n1", posts[0].PostID)
}

func TestListingCollectorPacesOnlyBetweenListings(t *testing.T) {
	w := testWindow(t)
	base := w.Start.Unix()

	src := &fakeListings{pages: map[string][]listingPage{
		"hot": {{items: []models.RedditSubmission{redditItem("h1", base+100, "")}}},
		"new": {{items: []models.RedditSubmission{redditItem("n1", base+200, "")}}},
	}}

	sleeps := 0
	lc := &ListingCollector{Source: src, Sleep: func(time.Duration) { sleeps++ }}
	posts := lc.Collect(context.Background(), "test", w, 0)

	require.Len(t, posts, 2)
	// One delay between hot and new; nothing trailing the final listing.
	assert.Equal(t, 1, sleeps)
}

func TestCollectTopFollowsCursorAndFiltersFlair(t *testing.T) {
	base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).Unix()

	src := &fakeListings{pages: map[string][]listingPage{
		"week": {
			{items: []models.RedditSubmission{
				redditItem("t1", base+300, "Question"),
				redditItem("t2", base+200, "Discussion"),
			}, after: "t3_t2"},
			{items: []models.RedditSubmission{
				redditItem("t3", base+100, "question about sleep"),
			}},
		},
	}}

	lc := &ListingCollector{Source: src, Sleep: func(time.Duration) {}}
	posts := lc.CollectTop(context.Background(), "test", "week", 0, "question")

	// Flair match is a case-insensitive substring; ranking order is kept.
	require.Len(t, posts, 2)
	assert.Equal(t, "t1", posts[0].PostID)
	assert.Equal(t, "t3", posts[1].PostID)
}

func TestCollectTopHonorsMaxPosts(t *testing.T) {
	base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).Unix()
	src := &fakeListings{pages: map[string][]listingPage{
		"day": {{items: []models.RedditSubmission{
			redditItem("t1", base+300, ""),
			redditItem("t2", base+200, ""),
			redditItem("t3", base+100, ""),
		}, after: "t3_t3"}},
	}}

	lc := &ListingCollector{Source: src, Sleep: func(time.Duration) {}}
	posts := lc.CollectTop(context.Background(), "test", "day", 2, "")

	assert.Len(t, posts, 2)
}
