// Package cli contains the maternoscope commands.
package cli

import (
	"bufio"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maternoscope/pipeline/config"
	"github.com/maternoscope/pipeline/internal/logging"
)

var (
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "maternoscope",
	Short: "Reddit maternal-care collection and annotation pipeline",
	Long: `maternoscope collects Reddit posts about pregnancy and maternal care,
normalizes them into a canonical schema, persists them to CSV/JSON files and
a Snowflake warehouse, and annotates them against a clinical taxonomy using
an LLM.

Example usage:
  maternoscope collect BabyBumps 2024-03-15 --output-csv posts.csv
  maternoscope listing BabyBumps 2024-03-15
  maternoscope top pregnant week --save-to-warehouse
  maternoscope check BabyBumps 2024-03-15 --check-csv
  maternoscope annotate --limit 50 --batch-size 10`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.InitLogger(verbose)
		var err error
		cfg, err = config.Load()
		return err
	},
}

// Execute runs the root command; the caller owns process exit.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// confirmProceed asks the user whether to continue after the duplication
// guard found existing data. Default is no.
func confirmProceed(in io.Reader, out io.Writer) bool {
	io.WriteString(out, "Do you want to continue scraping anyway? (y/N): ")
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
