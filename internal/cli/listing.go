package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/maternoscope/pipeline/internal/clients"
	"github.com/maternoscope/pipeline/internal/collector"
	"github.com/maternoscope/pipeline/internal/sinks"
	"github.com/maternoscope/pipeline/internal/warehouse"
)

const listingFilePrefix = "reddit_posts"

var (
	listingMaxPosts   int
	listingOutputCSV  string
	listingOutputJSON string
	listingOutputDir  string
	listingCheckDupes bool
	listingWarehouse  bool
	listingTable      string
)

var listingCmd = &cobra.Command{
	Use:   "listing <subreddit> <date>",
	Short: "Collect posts for a specific date via the live API's hot and new listings",
	Long: `Collect posts created on a date by merging the subreddit's hot and new
listings, deduplicated by post id. Best-effort: listings only reach back so
far, so this is a lower bound on the day's posts. Prefer "collect" (historical
search) when PullPush is available; use this as the fallback when it is not.`,
	Args: cobra.ExactArgs(2),
	RunE: runListing,
}

func init() {
	listingCmd.Flags().IntVar(&listingMaxPosts, "max-posts", 0, "maximum number of posts to retrieve (0 for all)")
	listingCmd.Flags().StringVar(&listingOutputCSV, "output-csv", "", "output CSV filename")
	listingCmd.Flags().StringVar(&listingOutputJSON, "output-json", "", "output JSON filename")
	listingCmd.Flags().StringVar(&listingOutputDir, "output-dir", ".", "output directory for CSV/JSON files")
	listingCmd.Flags().BoolVar(&listingCheckDupes, "check-duplicates", false, "check for existing data before scraping")
	listingCmd.Flags().BoolVar(&listingWarehouse, "save-to-warehouse", false, "save data to the warehouse table")
	listingCmd.Flags().StringVar(&listingTable, "warehouse-table", "reddit_posts", "warehouse table name")
	rootCmd.AddCommand(listingCmd)
}

func runListing(cmd *cobra.Command, args []string) error {
	subreddit, date := args[0], args[1]
	ctx := cmd.Context()

	// Date validation happens before any I/O.
	window, err := collector.DayWindow(date)
	if err != nil {
		return err
	}

	if listingCheckDupes {
		slog.Info("Checking for existing data...")
		guard := collector.Guard{OutputDir: listingOutputDir, FilePrefix: listingFilePrefix}
		csvExists := guard.FileExists(subreddit, date)

		warehouseExists := false
		if listingWarehouse {
			wh, err := warehouse.Connect(cfg.Snowflake)
			if err != nil {
				slog.Warn("Could not check warehouse for existing data", slog.String("error", err.Error()))
			} else {
				warehouseExists = collector.WarehouseHasDate(ctx, wh, listingTable, subreddit, date)
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
	posts := lc.Collect(ctx, subreddit, window, listingMaxPosts)

	if len(posts) == 0 {
		slog.Warn("No posts found via listings; the date may be out of listing reach",
			slog.String("subreddit", subreddit),
			slog.String("date", date))
	}

	// Default filenames when neither output path was given.
	if listingOutputCSV == "" && listingOutputJSON == "" && len(posts) > 0 {
		base := sinks.BaseName(listingFilePrefix, subreddit, date, "", time.Now())
		listingOutputCSV = filepath.Join(listingOutputDir, base+".csv")
		listingOutputJSON = filepath.Join(listingOutputDir, base+".json")
	}

	if len(posts) > 0 {
		if listingOutputCSV != "" {
			if err := sinks.WritePostsCSV(listingOutputCSV, posts); err != nil {
				slog.Error("Failed to save CSV", slog.String("error", err.Error()))
			}
		}
		if listingOutputJSON != "" {
			if err := sinks.WritePostsJSON(listingOutputJSON, posts); err != nil {
				slog.Error("Failed to save JSON", slog.String("error", err.Error()))
			}
		}

		if listingWarehouse {
			// Warehouse failure must not undo file sinks already on disk.
			if wh, err := warehouse.Connect(cfg.Snowflake); err != nil {
				slog.Error("Failed to save to warehouse", slog.String("error", err.Error()))
			} else {
				if err := wh.InsertPosts(ctx, listingTable, posts, ""); err != nil {
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
	if listingOutputCSV != "" {
		fmt.Fprintf(out, "CSV file: %s\n", listingOutputCSV)
	}
	if listingOutputJSON != "" {
		fmt.Fprintf(out, "JSON file: %s\n", listingOutputJSON)
	}
	if listingWarehouse {
		fmt.Fprintf(out, "Warehouse table: %s\n", listingTable)
	}
	return nil
}
