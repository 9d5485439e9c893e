package collector

import (
	"log/slog"
	"time"

	"github.com/maternoscope/pipeline/internal/models"
)

// Extractor maps raw source items to CanonicalPost records. It never panics
// past this boundary: a malformed item yields nil and the batch continues.
type Extractor struct {
	// Now stamps scraped_at; defaults to time.Now.
	Now func() time.Time
}

func (e Extractor) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

// FromPullPush extracts one PullPush submission.
func (e Extractor) FromPullPush(item models.PullPushSubmission) *models.CanonicalPost {
	return e.extract(item.ID, item.CreatedUTC, item.Selftext, item.URL,
		item.Permalink, item.LinkFlairText, item.Title, item.Score,
		item.NumComments, item.Subreddit)
}

// FromReddit extracts one live-API submission.
func (e Extractor) FromReddit(item models.RedditSubmission) *models.CanonicalPost {
	return e.extract(item.ID, item.CreatedUTC, item.Selftext, item.URL,
		item.Permalink, item.LinkFlairText, item.Title, item.Score,
		item.NumComments, item.Subreddit)
}

func (e Extractor) extract(id string, createdUTC float64, selftext, rawURL, permalink, flair, title string, score, numComments int, subreddit string) *models.CanonicalPost {
	if id == "" {
		slog.Warn("[Extractor] Skipping item with missing post id",
			slog.String("title", title))
		return nil
	}

	// Text posts carry their body; link posts fall back to the external URL.
	content := selftext
	if content == "" {
		content = rawURL
	}

	// Canonical post URL is rebuilt from the permalink, not taken verbatim.
	postURL := rawURL
	if permalink != "" {
		postURL = "https://reddit.com" + permalink
	}

	ts := int64(createdUTC)
	return &models.CanonicalPost{
		PostID:        id,
		PostDate:      time.Unix(ts, 0).UTC(),
		PostTimestamp: ts,
		PostFlair:     flair,
		Title:         title,
		URL:           postURL,
		Content:       content,
		Score:         score,
		NumComments:   numComments,
		Subreddit:     subreddit,
		ScrapedAt:     e.now(),
	}
}
