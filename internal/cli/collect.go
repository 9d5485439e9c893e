package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/maternoscope/pipeline/internal/clients"
	"github.com/maternoscope/pipeline/internal/collector"
	"github.com/maternoscope/pipeline/internal/sinks"
	"github.com/maternoscope/pipeline/internal/warehouse"
)

const collectFilePrefix = "pullpush_posts"

var (
	collectMaxPosts   int
	collectOutputCSV  string
	collectOutputJSON string
	collectOutputDir  string
	collectCheckDupes bool
	collectWarehouse  bool
	collectTable      string
)

var collectCmd = &cobra.Command{
	Use:   "collect <subreddit> <date>",
	Short: "Collect posts from a subreddit for a specific date via the PullPush API",
	Args:  cobra.ExactArgs(2),
	RunE:  runCollect,
}

func init() {
	collectCmd.Flags().IntVar(&collectMaxPosts, "max-posts", 0, "maximum number of posts to retrieve (0 for all)")
	collectCmd.Flags().StringVar(&collectOutputCSV, "output-csv", "", "output CSV filename")
	collectCmd.Flags().StringVar(&collectOutputJSON, "output-json", "", "output JSON filename")
	collectCmd.Flags().StringVar(&collectOutputDir, "output-dir", ".", "output directory for CSV/JSON files")
	collectCmd.Flags().BoolVar(&collectCheckDupes, "check-duplicates", false, "check for existing data before scraping")
	collectCmd.Flags().BoolVar(&collectWarehouse, "save-to-warehouse", false, "save data to the warehouse table")
	collectCmd.Flags().StringVar(&collectTable, "warehouse-table", "reddit_posts", "warehouse table name")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	subreddit, date := args[0], args[1]
	ctx := cmd.Context()

	// Date validation happens before any I/O.
	window, err := collector.DayWindow(date)
	if err != nil {
		return err
	}

	if collectCheckDupes {
		slog.Info("Checking for existing data...")
		guard := collector.Guard{OutputDir: collectOutputDir, FilePrefix: collectFilePrefix}
		csvExists := guard.FileExists(subreddit, date)

		warehouseExists := false
		if collectWarehouse {
			wh, err := warehouse.Connect(cfg.Snowflake)
			if err != nil {
				slog.Warn("Could not check warehouse for existing data", slog.String("error", err.Error()))
			} else {
				warehouseExists = collector.WarehouseHasDate(ctx, wh, collectTable, subreddit, date)
				wh.Close()
			}
		}

		if csvExists || warehouseExists {
			slog.Warn("Existing data found!")
			if csvExists {
				slog.Warn("  - CSV files exist")
			}
			if warehouseExists {
				slog.Warn("  - Warehouse data exists")
			}
			if !confirmProceed(cmd.InOrStdin(), cmd.OutOrStdout()) {
				slog.Info("Scraping cancelled by user.")
				return nil
			}
			slog.Info("Continuing with scraping...")
		}
	}

	cc := &collector.CursorCollector{
		Source:  clients.NewPullPushClient(cfg.Reddit.UserAgent),
		Extract: collector.Extractor{},
	}
	posts := cc.Collect(ctx, subreddit, window, collectMaxPosts)

	fileSinkCount := 0
	if collectOutputCSV != "" {
		fileSinkCount++
	}
	if collectOutputJSON != "" {
		fileSinkCount++
	}
	soleSink := fileSinkCount == 1 && !collectWarehouse

	if len(posts) > 0 {
		if collectOutputCSV != "" {
			if err := sinks.WritePostsCSV(collectOutputCSV, posts); err != nil {
				if soleSink {
					return err
				}
				slog.Error("Failed to save CSV", slog.String("error", err.Error()))
			}
		}
		if collectOutputJSON != "" {
			if err := sinks.WritePostsJSON(collectOutputJSON, posts); err != nil {
				if soleSink {
					return err
				}
				slog.Error("Failed to save JSON", slog.String("error", err.Error()))
			}
		}

		if collectWarehouse {
			// Warehouse failure must not undo file sinks already on disk.
			if wh, err := warehouse.Connect(cfg.Snowflake); err != nil {
				slog.Error("Failed to save to warehouse", slog.String("error", err.Error()))
			} else {
				if err := wh.InsertPosts(ctx, collectTable, posts, ""); err != nil {
					slog.Error("Failed to save to warehouse", slog.String("error", err.Error()))
				}
				wh.Close()
			}
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nSummary:")
	fmt.Fprintf(out, "Subreddit: r/%s\n", subreddit)
	fmt.Fprintf(out, "Date: %s\n", date)
	fmt.Fprintf(out, "Posts collected: %d\n", len(posts))
	if collectOutputCSV != "" {
		fmt.Fprintf(out, "CSV file: %s\n", collectOutputCSV)
	}
	if collectOutputJSON != "" {
		fmt.Fprintf(out, "JSON file: %s\n", collectOutputJSON)
	}
	if collectWarehouse {
		fmt.Fprintf(out, "Warehouse table: %s\n", collectTable)
	}
	return nil
}
