package annotate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maternoscope/pipeline/internal/models"
)

const defaultBatchSize = 10

// Store is the warehouse slice the batcher needs: anti-join selection of
// unannotated posts and append-only persistence of finished annotations.
type Store interface {
	FetchUnannotated(ctx context.Context, limit int) ([]models.PostForAnnotation, error)
	InsertAnnotations(ctx context.Context, records []models.AnnotationRecord) error
}

// Batcher drives the FETCH -> ANNOTATE -> ACCUMULATE -> FLUSH loop. Records
// are processed sequentially; a single record's failure drops that record and
// the run continues. Because selection excludes already-annotated ids,
// re-running after a partial run resumes without re-processing anything that
// reached durable storage.
type Batcher struct {
	Store     Store
	Annotator Annotator
	BatchSize int
}

// RunResult summarizes one batcher run. Flushed holds every record that
// reached the warehouse, in flush order, for the optional CSV sink.
type RunResult struct {
	Selected int
	Dropped  int
	Flushed  []models.AnnotationRecord
}

func (b *Batcher) batchSize() int {
	if b.BatchSize > 0 {
		return b.BatchSize
	}
	return defaultBatchSize
}

// Run annotates up to limit selected posts. A flush failure aborts the run:
// everything already flushed stays durable, everything in the buffer is lost
// and will be re-selected next run.
func (b *Batcher) Run(ctx context.Context, limit int) (*RunResult, error) {
	posts, err := b.Store.FetchUnannotated(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Selected: len(posts)}
	if len(posts) == 0 {
		slog.Info("[Batcher] No posts to annotate")
		return result, nil
	}

	buffer := newBatchBuffer[models.AnnotationRecord](b.batchSize())

	for i, post := range posts {
		slog.Info("[Batcher] Annotating post",
			slog.Int("current", i+1),
			slog.Int("total", len(posts)),
			slog.String("post_id", post.PostID))

		record, err := b.Annotator.Annotate(ctx, post.PostID, post.TextForLLM)
		if err != nil {
			slog.Error("[Batcher] Error annotating post, dropping record",
				slog.String("post_id", post.PostID),
				slog.String("error", err.Error()))
			result.Dropped++
			continue
		}
		buffer.Add(*record)

		if buffer.Size() >= b.batchSize() {
			if err := b.flush(ctx, buffer, result); err != nil {
				return result, err
			}
		}
	}

	// Final flush of any remainder.
	if err := b.flush(ctx, buffer, result); err != nil {
		return result, err
	}

	slog.Info("[Batcher] Annotation complete",
		slog.Int("selected", result.Selected),
		slog.Int("flushed", len(result.Flushed)),
		slog.Int("dropped", result.Dropped))
	return result, nil
}

func (b *Batcher) flush(ctx context.Context, buffer *batchBuffer[models.AnnotationRecord], result *RunResult) error {
	batch := buffer.GetAndClear()
	if len(batch) == 0 {
		return nil
	}

	slog.Info("[Batcher] Flushing batch", slog.Int("batch_size", len(batch)))
	if err := b.Store.InsertAnnotations(ctx, batch); err != nil {
		return fmt.Errorf("[Batcher] Failed to flush batch: %w", err)
	}
	result.Flushed = append(result.Flushed, batch...)
	return nil
}
