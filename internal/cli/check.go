package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/maternoscope/pipeline/internal/collector"
	"github.com/maternoscope/pipeline/internal/warehouse"
)

var (
	checkCSV        bool
	checkWarehouse  bool
	checkOutputDir  string
	checkTable      string
	checkFilePrefix string
)

// checkCmd is the one command with a meaningful exit-code contract: 0 means
// data exists in an enabled sink, 1 means it does not. Used by batch scripts
// to skip already-collected days.
var checkCmd = &cobra.Command{
	Use:   "check <subreddit> <date>",
	Short: "Check whether data already exists for a subreddit and date",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkCSV, "check-csv", false, "check CSV files")
	checkCmd.Flags().BoolVar(&checkWarehouse, "check-warehouse", false, "check the warehouse")
	checkCmd.Flags().StringVar(&checkOutputDir, "output-dir", ".", "output directory holding CSV files")
	checkCmd.Flags().StringVar(&checkTable, "warehouse-table", "reddit_posts", "warehouse table name")
	checkCmd.Flags().StringVar(&checkFilePrefix, "file-prefix", collectFilePrefix, "file name prefix to glob for")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	subreddit, date := args[0], args[1]
	ctx := cmd.Context()

	if _, err := collector.DayWindow(date); err != nil {
		return err
	}

	csvExists := false
	warehouseExists := false

	if checkCSV {
		guard := collector.Guard{OutputDir: checkOutputDir, FilePrefix: checkFilePrefix}
		csvExists = guard.FileExists(subreddit, date)
	}

	if checkWarehouse {
		wh, err := warehouse.Connect(cfg.Snowflake)
		if err != nil {
			slog.Warn("Error checking warehouse", slog.String("error", err.Error()))
		} else {
			warehouseExists = collector.WarehouseHasDate(ctx, wh, checkTable, subreddit, date)
			wh.Close()
		}
	}

	if csvExists || warehouseExists {
		fmt.Fprintln(cmd.OutOrStdout(), "EXISTS")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "NOT_EXISTS")
	os.Exit(1)
	return nil
}
