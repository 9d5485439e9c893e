package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maternoscope/pipeline/internal/models"
)

type fakeSearcher struct {
	pages    [][]models.PullPushSubmission
	calls    []searchCall
	errAfter int // return an error on call index errAfter; -1 disables
}

type searchCall struct {
	after, before int64
	size          int
}

func (f *fakeSearcher) FetchPage(ctx context.Context, subreddit string, after, before int64, size int) ([]models.PullPushSubmission, error) {
	call := len(f.calls)
	f.calls = append(f.calls, searchCall{after: after, before: before, size: size})
	if f.errAfter >= 0 && call == f.errAfter {
		return nil, errors.New("boom")
	}
	if call >= len(f.pages) {
		return nil, nil
	}
	return f.pages[call], nil
}

func pullPushItem(id string, created int64) models.PullPushSubmission {
	return models.PullPushSubmission{
		ID:         id,
		CreatedUTC: float64(created),
		Title:      "title " + id,
		Selftext:   "body " + id,
		Permalink:  "/r/test/comments/" + id + "/",
		Subreddit:  "test",
	}
}

func testWindow(t *testing.T) Window {
	t.Helper()
	w, err := DayWindow("2024-03-15")
	require.NoError(t, err)
	return w
}

func makePage(start int64, prefix string, n int) []models.PullPushSubmission {
	page := make([]models.PullPushSubmission, n)
	for i := range page {
		page[i] = pullPushItem(fmt.Sprintf("%s%03d", prefix, i), start+int64(i))
	}
	return page
}

func TestCursorCollectorFullPageTriggersFollowUp(t *testing.T) {
	w := testWindow(t)
	base := w.Start.Unix()

	src := &fakeSearcher{
		pages: [][]models.PullPushSubmission{
			makePage(base, "a", 100),
			makePage(base+200, "b", 37),
		},
		errAfter: -1,
	}
	cc := &CursorCollector{Source: src, Sleep: func(time.Duration) {}}

	posts := cc.Collect(context.Background(), "test", w, 0)

	// A full page means more data may exist; a short page ends the walk.
	require.Len(t, src.calls, 2)
	assert.Len(t, posts, 137)

	// The follow-up request's lower bound is the last item's timestamp.
	assert.Equal(t, base+99, src.calls[1].after)
	assert.Equal(t, w.End.Unix(), src.calls[1].before)
}

func TestCursorCollectorEmptyPageStops(t *testing.T) {
	w := testWindow(t)
	src := &fakeSearcher{pages: nil, errAfter: -1}
	cc := &CursorCollector{Source: src, Sleep: func(time.Duration) {}}

	posts := cc.Collect(context.Background(), "test", w, 0)

	assert.Empty(t, posts)
	assert.Len(t, src.calls, 1)
}

func TestCursorCollectorOutputSortedAndUnique(t *testing.T) {
	w := testWindow(t)
	base := w.Start.Unix()

	// The boundary item gets re-served by the timestamp cursor; it must be
	// discarded, not duplicated.
	page1 := makePage(base, "a", 100)
	page2 := append([]models.PullPushSubmission{page1[99]}, makePage(base+150, "b", 10)...)

	src := &fakeSearcher{pages: [][]models.PullPushSubmission{page1, page2}, errAfter: -1}
	cc := &CursorCollector{Source: src, Sleep: func(time.Duration) {}}

	posts := cc.Collect(context.Background(), "test", w, 0)

	require.Len(t, posts, 110)
	seen := make(map[string]bool)
	for i, p := range posts {
		assert.False(t, seen[p.PostID], "duplicate post_id %s", p.PostID)
		seen[p.PostID] = true
		if i > 0 {
			assert.False(t, p.PostDate.Before(posts[i-1].PostDate), "output not ascending at %d", i)
		}
	}
}

func TestCursorCollectorPageErrorReturnsPartial(t *testing.T) {
	w := testWindow(t)
	src := &fakeSearcher{
		pages:    [][]models.PullPushSubmission{makePage(w.Start.Unix(), "a", 100)},
		errAfter: 1,
	}
	cc := &CursorCollector{Source: src, Sleep: func(time.Duration) {}}

	posts := cc.Collect(context.Background(), "test", w, 0)

	// The failed follow-up terminates the walk; the first page survives.
	assert.Len(t, posts, 100)
}

func TestCursorCollectorMaxPostsShrinksRequestSize(t *testing.T) {
	w := testWindow(t)
	src := &fakeSearcher{
		pages:    [][]models.PullPushSubmission{makePage(w.Start.Unix(), "a", 30)},
		errAfter: -1,
	}
	cc := &CursorCollector{Source: src, Sleep: func(time.Duration) {}}

	posts := cc.Collect(context.Background(), "test", w, 30)

	assert.Len(t, posts, 30)
	require.Len(t, src.calls, 1)
	assert.Equal(t, 30, src.calls[0].size)
}

func TestCursorCollectorPacesBetweenPages(t *testing.T) {
	w := testWindow(t)
	base := w.Start.Unix()
	src := &fakeSearcher{
		pages: [][]models.PullPushSubmission{
			makePage(base, "a", 100),
			makePage(base+200, "b", 100),
			makePage(base+400, "c", 5),
		},
		errAfter: -1,
	}

	var slept []time.Duration
	cc := &CursorCollector{Source: src, Sleep: func(d time.Duration) { slept = append(slept, d) }}

	cc.Collect(context.Background(), "test", w, 0)

	// One delay after each full page.
	require.Len(t, slept, 2)
	assert.Equal(t, time.Second, slept[0])
}
