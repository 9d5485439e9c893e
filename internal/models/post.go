package models

import "time"

// CanonicalPost is the normalized post representation, independent of which
// source API produced it. Keyed by PostID, immutable once extracted.
type CanonicalPost struct {
	PostID        string    `json:"post_id"`
	PostDate      time.Time `json:"post_date"`
	PostTimestamp int64     `json:"post_timestamp"`
	PostFlair     string    `json:"post_flair,omitempty"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	Content       string    `json:"content"`
	Score         int       `json:"score"`
	NumComments   int       `json:"num_comments"`
	Subreddit     string    `json:"subreddit"`
	ScrapedAt     time.Time `json:"scraped_at"`
}

// PostColumns is the canonical column order used by the CSV sink and the
// warehouse posts table.
var PostColumns = []string{
	"post_id", "post_date", "post_timestamp", "post_flair", "title",
	"url", "content", "score", "num_comments", "subreddit", "scraped_at",
}

// PullPushSubmission is one submission as returned by the PullPush search API.
type PullPushSubmission struct {
	ID            string  `json:"id"`
	CreatedUTC    float64 `json:"created_utc"`
	Selftext      string  `json:"selftext"`
	URL           string  `json:"url"`
	Permalink     string  `json:"permalink"`
	LinkFlairText string  `json:"link_flair_text"`
	Title         string  `json:"title"`
	Score         int     `json:"score"`
	NumComments   int     `json:"num_comments"`
	Subreddit     string  `json:"subreddit"`
}

type PullPushResponse struct {
	Data []PullPushSubmission `json:"data"`
}

// Reddit listing envelope for the live API (oauth.reddit.com).
type RedditAPIResponse struct {
	Data RedditAPIData `json:"data"`
}

type RedditAPIData struct {
	After    string           `json:"after"`
	Children []RedditAPIChild `json:"children"`
}

type RedditAPIChild struct {
	Data RedditSubmission `json:"data"`
}

type RedditSubmission struct {
	ID            string  `json:"id"`
	CreatedUTC    float64 `json:"created_utc"`
	Selftext      string  `json:"selftext"`
	URL           string  `json:"url"`
	Permalink     string  `json:"permalink"`
	LinkFlairText string  `json:"link_flair_text"`
	Title         string  `json:"title"`
	Score         int     `json:"score"`
	NumComments   int     `json:"num_comments"`
	Subreddit     string  `json:"subreddit"`
}
