package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/maternoscope/pipeline/internal/annotate"
	"github.com/maternoscope/pipeline/internal/clients"
	"github.com/maternoscope/pipeline/internal/logging"
	"github.com/maternoscope/pipeline/internal/sinks"
	"github.com/maternoscope/pipeline/internal/warehouse"
)

var (
	annotateLimit     int
	annotateBatchSize int
	annotateDryRun    bool
	annotateSaveCSV   bool
	annotateCSVDir    string
	annotateSaveLogs  bool
	annotateLogDir    string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Annotate collected posts against the clinical taxonomy using an LLM",
	RunE:  runAnnotate,
}

func init() {
	annotateCmd.Flags().IntVar(&annotateLimit, "limit", 10, "maximum number of posts to annotate")
	annotateCmd.Flags().IntVar(&annotateBatchSize, "batch-size", 10, "number of posts to process before saving")
	annotateCmd.Flags().BoolVar(&annotateDryRun, "dry-run", false, "fetch and display posts without annotating")
	annotateCmd.Flags().BoolVar(&annotateSaveCSV, "save-csv", false, "save annotations to a timestamped CSV file")
	annotateCmd.Flags().StringVar(&annotateCSVDir, "csv-dir", "data/processed", "directory to save CSV files")
	annotateCmd.Flags().BoolVar(&annotateSaveLogs, "save-logs", false, "save logs and errors to files")
	annotateCmd.Flags().StringVar(&annotateLogDir, "log-dir", "logs/llm", "directory to save log files")
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if annotateSaveLogs {
		closeLogs, err := logging.InitLoggerWithFiles(annotateLogDir, verbose)
		if err != nil {
			return err
		}
		defer closeLogs()
	}

	slog.Info("[Annotate] Starting annotation run",
		slog.Int("limit", annotateLimit),
		slog.Int("batch_size", annotateBatchSize))

	// Warehouse and LLM client construction failures are fatal; everything
	// past this point degrades per-record instead.
	wh, err := warehouse.Connect(cfg.Snowflake)
	if err != nil {
		return err
	}
	defer wh.Close()

	if err := wh.EnsureAnnotationTable(ctx); err != nil {
		return err
	}

	if annotateDryRun {
		posts, err := wh.FetchUnannotated(ctx, annotateLimit)
		if err != nil {
			return err
		}
		slog.Info("[Annotate] DRY RUN: would annotate these posts", slog.Int("count", len(posts)))
		out := cmd.OutOrStdout()
		for _, p := range posts {
			text := annotate.Truncate(p.TextForLLM, 80)
			if text != p.TextForLLM {
				text += "..."
			}
			fmt.Fprintf(out, "%s\t%s\n", p.PostID, text)
		}
		return nil
	}

	oc, err := clients.NewOpenAIClient(cfg.OpenAI)
	if err != nil {
		return err
	}

	batcher := &annotate.Batcher{
		Store:     wh,
		Annotator: annotate.NewOpenAIAnnotator(oc),
		BatchSize: annotateBatchSize,
	}
	result, runErr := batcher.Run(ctx, annotateLimit)

	// Flushed records are durable even when the run ended early; the CSV
	// mirror covers exactly those.
	if annotateSaveCSV && result != nil && len(result.Flushed) > 0 {
		if err := os.MkdirAll(annotateCSVDir, 0o755); err != nil {
			slog.Error("[Annotate] Failed to create CSV directory", slog.String("error", err.Error()))
		} else {
			stamp := time.Now().UTC().Format("20060102_150405")
			path := filepath.Join(annotateCSVDir, "annotations_"+stamp+".csv")
			if err := sinks.WriteAnnotationsCSV(path, result.Flushed); err != nil {
				slog.Error("[Annotate] Failed to save annotations CSV", slog.String("error", err.Error()))
			}
		}
	}

	if runErr != nil {
		return runErr
	}
	slog.Info("[Annotate] Annotation complete!")
	return nil
}
