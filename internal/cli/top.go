package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/maternoscope/pipeline/internal/clients"
	"github.com/maternoscope/pipeline/internal/collector"
	"github.com/maternoscope/pipeline/internal/sinks"
	"github.com/maternoscope/pipeline/internal/warehouse"
)

const topFilePrefix = "top_posts"

var (
	topMaxPosts   int
	topFlair      string
	topOutputCSV  string
	topOutputJSON string
	topOutputDir  string
	topCheckDupes bool
	topWarehouse  bool
	topTable      string
)

var topCmd = &cobra.Command{
	Use:   "top <subreddit> <time_filter>",
	Short: "Collect top posts from a subreddit for a relative time period via the live API",
	Long: `Collect top posts for one of the live API's relative time filters:
hour, day, week, month, year, all. Best-effort: the top listing is ranked,
not time-ordered, so this is a lower bound on the period's posts.`,
	Args: cobra.ExactArgs(2),
	RunE: runTop,
}

func init() {
	topCmd.Flags().IntVar(&topMaxPosts, "max-posts", 0, "maximum number of posts to retrieve (0 for all)")
	topCmd.Flags().StringVar(&topFlair, "flair", "", "filter posts by flair (substring match)")
	topCmd.Flags().StringVar(&topOutputCSV, "output-csv", "", "output CSV filename")
	topCmd.Flags().StringVar(&topOutputJSON, "output-json", "", "output JSON filename")
	topCmd.Flags().StringVar(&topOutputDir, "output-dir", ".", "output directory for CSV/JSON files")
	topCmd.Flags().BoolVar(&topCheckDupes, "check-duplicates", false, "check for existing data before scraping")
	topCmd.Flags().BoolVar(&topWarehouse, "save-to-warehouse", false, "save data to the warehouse table")
	topCmd.Flags().StringVar(&topTable, "warehouse-table", "top_reddit_posts", "warehouse table name")
	rootCmd.AddCommand(topCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	subreddit, timeFilter := args[0], args[1]
	ctx := cmd.Context()

	if !collector.ValidTimeFilter(timeFilter) {
		return fmt.Errorf("invalid time filter %q, expected one of: %s",
			timeFilter, strings.Join(collector.TimeFilters, ", "))
	}

	if topCheckDupes {
		slog.Info("Checking for existing data...")
		guard := collector.Guard{OutputDir: topOutputDir, FilePrefix: topFilePrefix}
		csvExists := guard.FileExists(subreddit, timeFilter)

		warehouseExists := false
		if topWarehouse {
			wh, err := warehouse.Connect(cfg.Snowflake)
			if err != nil {
				slog.Warn("Could not check warehouse for existing data", slog.String("error", err.Error()))
			} else {
				warehouseExists = collector.WarehouseHasTimeFilter(ctx, wh, topTable, subreddit, timeFilter)
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

	lc := &collector.ListingCollector{
		Source:  clients.NewRedditClient(cfg.Reddit),
		Extract: collector.Extractor{},
	}
	posts := lc.CollectTop(ctx, subreddit, timeFilter, topMaxPosts, topFlair)

	if len(posts) == 0 {
		slog.Warn("No posts found",
			slog.String("subreddit", subreddit),
			slog.String("time_filter", timeFilter))
		if topFlair != "" {
			slog.Warn("with flair filter", slog.String("flair", topFlair))
		}
	}

	// Default filenames when neither output path was given.
	if topOutputCSV == "" && topOutputJSON == "" && len(posts) > 0 {
		base := sinks.BaseName(topFilePrefix, subreddit, timeFilter, topFlair, time.Now())
		topOutputCSV = filepath.Join(topOutputDir, base+".csv")
		topOutputJSON = filepath.Join(topOutputDir, base+".json")
	}

	if len(posts) > 0 {
		if topOutputCSV != "" {
			if err := sinks.WritePostsCSV(topOutputCSV, posts); err != nil {
				slog.Error("Failed to save CSV", slog.String("error", err.Error()))
			}
		}
		if topOutputJSON != "" {
			if err := sinks.WritePostsJSON(topOutputJSON, posts); err != nil {
				slog.Error("Failed to save JSON", slog.String("error", err.Error()))
			}
		}

		if topWarehouse {
			if wh, err := warehouse.Connect(cfg.Snowflake); err != nil {
				slog.Error("Failed to save to warehouse", slog.String("error", err.Error()))
			} else {
				if err := wh.InsertPosts(ctx, topTable, posts, timeFilter); err != nil {
					slog.Error("Failed to save to warehouse", slog.String("error", err.Error()))
				}
				wh.Close()
			}
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nSummary:")
	fmt.Fprintf(out, "Subreddit: r/%s\n", subreddit)
	fmt.Fprintf(out, "Time filter: %s\n", timeFilter)
	if topFlair != "" {
		fmt.Fprintf(out, "Flair filter: %s\n", topFlair)
	}
	fmt.Fprintf(out, "Posts collected: %d\n", len(posts))
	if topOutputCSV != "" {
		fmt.Fprintf(out, "CSV file: %s\n", topOutputCSV)
	}
	if topOutputJSON != "" {
		fmt.Fprintf(out, "JSON file: %s\n", topOutputJSON)
	}
	if topWarehouse {
		fmt.Fprintf(out, "Warehouse table: %s\n", topTable)
	}
	return nil
}
