package sinks

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maternoscope/pipeline/internal/models"
)

func samplePosts() []models.CanonicalPost {
	scraped := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	return []models.CanonicalPost{
		{
			PostID:        "abc123",
			PostDate:      time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
			PostTimestamp: 1710489600,
			PostFlair:     "Question",
			Title:         "First trimester, \"weird\" symptoms?",
			URL:           "https://reddit.com/r/pregnant/comments/abc123/first_trimester/",
			Content:       "Has anyone else felt this,\nor is it just me?",
			Score:         42,
			NumComments:   7,
			Subreddit:     "pregnant",
			ScrapedAt:     scraped,
		},
		{
			PostID:        "def456",
			PostDate:      time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
			PostTimestamp: 1710493200,
			Title:         "Link post",
			URL:           "https://reddit.com/r/pregnant/comments/def456/link_post/",
			Content:       "https://example.com/article?a=1&b=2",
			Subreddit:     "pregnant",
			ScrapedAt:     scraped,
		},
	}
}

func TestBaseName(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 30, 45, 0, time.UTC)

	assert.Equal(t, "pullpush_posts_pregnant_2024-03-15_20240315_123045",
		BaseName("pullpush_posts", "pregnant", "2024-03-15", "", now))

	// Flair spaces become underscores so the name stays shell-friendly.
	assert.Equal(t, "top_posts_pregnant_week_Birth_Story_20240315_123045",
		BaseName("top_posts", "pregnant", "week", "Birth Story", now))
}

func TestWritePostsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.csv")
	posts := samplePosts()

	require.NoError(t, WritePostsCSV(path, posts))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, models.PostColumns, rows[0])
	assert.Equal(t, "abc123", rows[1][0])
	assert.Equal(t, "2024-03-15T08:00:00Z", rows[1][1])
	assert.Equal(t, "Question", rows[1][3])
	// Embedded quotes and newlines survive the CSV layer.
	assert.Equal(t, posts[0].Title, rows[1][4])
	assert.Equal(t, posts[0].Content, rows[1][6])
	assert.Equal(t, "42", rows[1][7])
}

func TestWritePostsCSVOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.csv")

	require.NoError(t, WritePostsCSV(path, samplePosts()))
	require.NoError(t, WritePostsCSV(path, samplePosts()[:1]))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 2, "second write must replace, not append")
}

func TestWritePostsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	posts := samplePosts()

	require.NoError(t, WritePostsJSON(path, posts))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []models.CanonicalPost
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, posts[0].PostID, decoded[0].PostID)
	assert.Equal(t, posts[0].Content, decoded[0].Content)

	// URLs must not be HTML-escaped.
	assert.Contains(t, string(raw), "a=1&b=2")
	// Empty flair is omitted rather than serialized as "".
	assert.NotContains(t, string(raw), `"post_flair": ""`)
}

func TestWriteAnnotationsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.csv")
	records := []models.AnnotationRecord{{
		PostID:          "abc123",
		PrimaryGroup:    "clinical",
		PrimaryTopic:    "symptoms_body_changes",
		SecondaryTopics: []string{"anxiety_fear_uncertainty"},
		Trimester:       "first",
		Sentiment:       "negative",
		Urgency:         1,
		Keywords:        []string{"nausea", "fatigue", "morning sickness", "first trimester", "symptoms"},
		SafetyFlags:     []string{},
		PostSummary:     "A short summary.",
		CareResponse:    "A short care response.",
		ModelName:       "gpt-4o-mini",
		ModelVersion:    "1.0.0",
		PromptHash:      "0123456789abcdef",
		InputTokens:     512,
		OutputTokens:    128,
		AnnotatedAt:     time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC),
	}}

	require.NoError(t, WriteAnnotationsCSV(path, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, annotationColumns, rows[0])
	row := rows[1]
	assert.Equal(t, "abc123", row[0])
	assert.Equal(t, `["anxiety_fear_uncertainty"]`, row[3])
	assert.Equal(t, "1", row[6])

	var keywords []string
	require.NoError(t, json.Unmarshal([]byte(row[7]), &keywords))
	assert.Len(t, keywords, 5)
	assert.Equal(t, "[]", row[8])
	assert.Equal(t, "2024-03-15T13:00:00Z", row[16])
}
