package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maternoscope/pipeline/internal/models"
)

// EnsurePostsTable issues the idempotent schema statement for a posts table.
// withTimeFilter adds the TIME_FILTER column used by top-posts collections,
// backfilling it onto older tables that predate the column.
func (w *Warehouse) EnsurePostsTable(ctx context.Context, table string, withTimeFilter bool) error {
	createSQL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		POST_ID VARCHAR(255) PRIMARY KEY,
		POST_DATE TIMESTAMP_TZ,
		POST_TIMESTAMP NUMBER,
		POST_FLAIR VARCHAR(500),
		TITLE VARCHAR(2000),
		URL VARCHAR(2000),
		CONTENT VARCHAR(16777216),
		SCORE NUMBER,
		NUM_COMMENTS NUMBER,
		SUBREDDIT VARCHAR(255),
		SCRAPED_AT TIMESTAMP_TZ
	)`, table)

	if _, err := w.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("[Warehouse] Failed to create table %s: %w", table, err)
	}
	slog.Info("[Warehouse] Table created or already exists", slog.String("table", table))

	if !withTimeFilter {
		return nil
	}

	exists, err := w.columnExists(ctx, table, "TIME_FILTER")
	if err != nil {
		slog.Warn("[Warehouse] Could not check TIME_FILTER column", slog.String("error", err.Error()))
		return nil
	}
	if !exists {
		slog.Info("[Warehouse] Adding TIME_FILTER column", slog.String("table", table))
		alterSQL := fmt.Sprintf("ALTER TABLE %s ADD COLUMN TIME_FILTER VARCHAR(50)", table)
		if _, err := w.db.ExecContext(ctx, alterSQL); err != nil {
			slog.Warn("[Warehouse] Could not add TIME_FILTER column", slog.String("error", err.Error()))
		}
	}
	return nil
}

// InsertPostsSQL builds the append-only bulk insert statement. Exposed for
// tests; column names are upper-cased to match warehouse conventions.
func InsertPostsSQL(table string, withTimeFilter bool, rows int) string {
	cols := make([]string, 0, len(models.PostColumns)+1)
	for _, c := range models.PostColumns {
		cols = append(cols, strings.ToUpper(c))
	}
	if withTimeFilter {
		cols = append(cols, "TIME_FILTER")
	}

	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"
	values := make([]string, rows)
	for i := range values {
		values[i] = placeholder
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(cols, ", "), strings.Join(values, ", "))
}

// InsertPosts appends a batch of posts. No upsert: re-running a job whose
// output was already inserted creates duplicate rows unless the duplication
// guard prevented the re-run. Timestamps are normalized to UTC.
func (w *Warehouse) InsertPosts(ctx context.Context, table string, posts []models.CanonicalPost, timeFilter string) error {
	if len(posts) == 0 {
		slog.Warn("[Warehouse] No data to save")
		return nil
	}

	withTimeFilter := timeFilter != ""
	if err := w.EnsurePostsTable(ctx, table, withTimeFilter); err != nil {
		return err
	}

	args := make([]any, 0, len(posts)*(len(models.PostColumns)+1))
	for _, p := range posts {
		args = append(args,
			p.PostID,
			p.PostDate.UTC(),
			p.PostTimestamp,
			nullable(p.PostFlair),
			p.Title,
			p.URL,
			p.Content,
			p.Score,
			p.NumComments,
			p.Subreddit,
			p.ScrapedAt.UTC(),
		)
		if withTimeFilter {
			args = append(args, timeFilter)
		}
	}

	if _, err := w.db.ExecContext(ctx, InsertPostsSQL(table, withTimeFilter, len(posts)), args...); err != nil {
		return fmt.Errorf("[Warehouse] Failed to insert posts into %s: %w", table, err)
	}

	slog.Info("[Warehouse] Successfully saved rows",
		slog.Int("rows", len(posts)), slog.String("table", table))
	return nil
}

// CountPostsByDate reports existing rows for (subreddit, date). A missing
// table means no match, not an error.
func (w *Warehouse) CountPostsByDate(ctx context.Context, table, subreddit, date string) (int, error) {
	exists, err := w.TableExists(ctx, table)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE UPPER(SUBREDDIT) = UPPER(?) AND DATE(POST_DATE) = ?`, table)
	var count int
	if err := w.db.QueryRowContext(ctx, query, subreddit, date).Scan(&count); err != nil {
		return 0, fmt.Errorf("[Warehouse] Failed to count existing rows: %w", err)
	}
	return count, nil
}

// CountPostsByTimeFilter reports existing rows for (subreddit, time_filter).
func (w *Warehouse) CountPostsByTimeFilter(ctx context.Context, table, subreddit, timeFilter string) (int, error) {
	exists, err := w.TableExists(ctx, table)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE SUBREDDIT = ? AND TIME_FILTER = ?`, table)
	var count int
	if err := w.db.QueryRowContext(ctx, query, subreddit, timeFilter).Scan(&count); err != nil {
		return 0, fmt.Errorf("[Warehouse] Failed to count existing rows: %w", err)
	}
	return count, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
