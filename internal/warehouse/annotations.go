package warehouse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/maternoscope/pipeline/internal/models"
)

const (
	AnnotationSchema = "ANALYTICS_ML"
	AnnotationTable  = "ANALYTICS_ML.REDDIT_POSTS_ANNOTATED"
	StagingTable     = "ANALYTICS_BRONZE.STG_REDDIT_POSTS_PII"
)

// EnsureAnnotationTable creates the ML schema and annotation table if absent.
func (w *Warehouse) EnsureAnnotationTable(ctx context.Context) error {
	if _, err := w.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+AnnotationSchema); err != nil {
		return fmt.Errorf("[Warehouse] Failed to create schema %s: %w", AnnotationSchema, err)
	}
	slog.Info("[Warehouse] Schema created or already exists", slog.String("schema", AnnotationSchema))

	createSQL := `CREATE TABLE IF NOT EXISTS ` + AnnotationTable + ` (
		POST_ID VARCHAR(255) PRIMARY KEY,
		PRIMARY_GROUP VARCHAR(50),
		PRIMARY_TOPIC VARCHAR(100),
		SECONDARY_TOPICS ARRAY,
		TRIMESTER VARCHAR(20),
		SENTIMENT VARCHAR(20),
		URGENCY_0_3 INTEGER,
		KEYWORDS ARRAY,
		SAFETY_FLAGS ARRAY,
		POST_SUMMARY VARCHAR(1000),
		CARE_RESPONSE VARCHAR(2000),
		MODEL_NAME VARCHAR(100),
		MODEL_VERSION VARCHAR(50),
		PROMPT_HASH VARCHAR(50),
		INPUT_TOKENS INTEGER,
		OUTPUT_TOKENS INTEGER,
		ANNOTATED_AT TIMESTAMP_TZ
	)`
	if _, err := w.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("[Warehouse] Failed to create annotation table: %w", err)
	}
	slog.Info("[Warehouse] Annotation table created or already exists")
	return nil
}

// FetchUnannotated selects posts flagged for annotation whose post_id is
// absent from the annotation table. limit <= 0 means no cap.
func (w *Warehouse) FetchUnannotated(ctx context.Context, limit int) ([]models.PostForAnnotation, error) {
	query := `SELECT post_id, text_for_llm, text_raw
	FROM ` + StagingTable + `
	WHERE needs_annotation = TRUE
	AND post_id NOT IN (
		SELECT DISTINCT post_id FROM ` + AnnotationTable + `
	)`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("[Warehouse] Failed to fetch posts to annotate: %w", err)
	}
	defer rows.Close()

	var posts []models.PostForAnnotation
	for rows.Next() {
		var p models.PostForAnnotation
		if err := rows.Scan(&p.PostID, &p.TextForLLM, &p.TextRaw); err != nil {
			return nil, fmt.Errorf("[Warehouse] Failed to scan staging row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[Warehouse] Failed reading staging rows: %w", err)
	}

	slog.Info("[Warehouse] Found posts to annotate", slog.Int("count", len(posts)))
	return posts, nil
}

// InsertAnnotations appends one row per record. Array-typed columns go
// through PARSE_JSON since the driver cannot bind arrays directly.
func (w *Warehouse) InsertAnnotations(ctx context.Context, records []models.AnnotationRecord) error {
	if len(records) == 0 {
		slog.Warn("[Warehouse] No annotations to save")
		return nil
	}

	insertSQL := `INSERT INTO ` + AnnotationTable + ` (
		POST_ID, PRIMARY_GROUP, PRIMARY_TOPIC, SECONDARY_TOPICS, TRIMESTER,
		SENTIMENT, URGENCY_0_3, KEYWORDS, SAFETY_FLAGS, POST_SUMMARY,
		CARE_RESPONSE, MODEL_NAME, MODEL_VERSION, PROMPT_HASH,
		INPUT_TOKENS, OUTPUT_TOKENS, ANNOTATED_AT
	) SELECT ?, ?, ?, PARSE_JSON(?), ?, ?, ?, PARSE_JSON(?), PARSE_JSON(?), ?, ?, ?, ?, ?, ?, ?, ?`

	for _, rec := range records {
		secondary, err := json.Marshal(rec.SecondaryTopics)
		if err != nil {
			return fmt.Errorf("[Warehouse] Failed to encode secondary_topics: %w", err)
		}
		keywords, err := json.Marshal(rec.Keywords)
		if err != nil {
			return fmt.Errorf("[Warehouse] Failed to encode keywords: %w", err)
		}
		flags, err := json.Marshal(rec.SafetyFlags)
		if err != nil {
			return fmt.Errorf("[Warehouse] Failed to encode safety_flags: %w", err)
		}

		_, err = w.db.ExecContext(ctx, insertSQL,
			rec.PostID, rec.PrimaryGroup, rec.PrimaryTopic, string(secondary),
			rec.Trimester, rec.Sentiment, rec.Urgency, string(keywords),
			string(flags), rec.PostSummary, rec.CareResponse, rec.ModelName,
			rec.ModelVersion, rec.PromptHash, rec.InputTokens,
			rec.OutputTokens, rec.AnnotatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("[Warehouse] Failed to insert annotation for %s: %w", rec.PostID, err)
		}
	}

	slog.Info("[Warehouse] Saved annotations to Snowflake", slog.Int("count", len(records)))
	return nil
}
