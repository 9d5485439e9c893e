package sinks

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/maternoscope/pipeline/internal/models"
)

// BaseName builds the deterministic file name used by both file sinks and
// the duplication guard: {prefix}_{unit}_{label}[_{flair}]_{timestamp}.
func BaseName(prefix, subreddit, label, flair string, now time.Time) string {
	flairSuffix := ""
	if flair != "" {
		flairSuffix = "_" + strings.ReplaceAll(flair, " ", "_")
	}
	return fmt.Sprintf("%s_%s_%s%s_%s",
		prefix, subreddit, label, flairSuffix, now.Format("20060102_150405"))
}

// WritePostsCSV writes the whole batch to a self-contained CSV file,
// overwriting any previous file at the path.
func WritePostsCSV(path string, posts []models.CanonicalPost) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[Sinks] Failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.PostColumns); err != nil {
		return fmt.Errorf("[Sinks] Failed to write CSV header: %w", err)
	}
	for _, p := range posts {
		record := []string{
			p.PostID,
			p.PostDate.UTC().Format(time.RFC3339),
			strconv.FormatInt(p.PostTimestamp, 10),
			p.PostFlair,
			p.Title,
			p.URL,
			p.Content,
			strconv.Itoa(p.Score),
			strconv.Itoa(p.NumComments),
			p.Subreddit,
			p.ScrapedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("[Sinks] Failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("[Sinks] Failed to flush CSV: %w", err)
	}

	slog.Info("[Sinks] Data saved to CSV", slog.String("path", path), slog.Int("rows", len(posts)))
	return nil
}

// WritePostsJSON writes the whole batch as an indented JSON array.
func WritePostsJSON(path string, posts []models.CanonicalPost) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[Sinks] Failed to create JSON file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("[Sinks] Failed to write JSON: %w", err)
	}

	slog.Info("[Sinks] Data saved to JSON", slog.String("path", path), slog.Int("rows", len(posts)))
	return nil
}

var annotationColumns = []string{
	"post_id", "primary_group", "primary_topic", "secondary_topics",
	"trimester", "sentiment", "urgency_0_3", "keywords", "safety_flags",
	"post_summary", "care_response", "model_name", "model_version",
	"prompt_hash", "input_tokens", "output_tokens", "annotated_at",
}

// WriteAnnotationsCSV writes flushed annotation records to a CSV file.
// List-valued fields are serialized as JSON strings inside their cells.
func WriteAnnotationsCSV(path string, records []models.AnnotationRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[Sinks] Failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(annotationColumns); err != nil {
		return fmt.Errorf("[Sinks] Failed to write CSV header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.PostID,
			rec.PrimaryGroup,
			rec.PrimaryTopic,
			jsonCell(rec.SecondaryTopics),
			rec.Trimester,
			rec.Sentiment,
			strconv.Itoa(rec.Urgency),
			jsonCell(rec.Keywords),
			jsonCell(rec.SafetyFlags),
			rec.PostSummary,
			rec.CareResponse,
			rec.ModelName,
			rec.ModelVersion,
			rec.PromptHash,
			strconv.Itoa(rec.InputTokens),
			strconv.Itoa(rec.OutputTokens),
			rec.AnnotatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("[Sinks] Failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("[Sinks] Failed to flush CSV: %w", err)
	}

	slog.Info("[Sinks] Annotations saved to CSV", slog.String("path", path), slog.Int("rows", len(records)))
	return nil
}

func jsonCell(values []string) string {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}
