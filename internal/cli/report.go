package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anvik-1/spacetime-crawler/internal/report"
)

var (
	reportSaveFile  string
	reportPageStore string
	reportOutput    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the post-crawl completion report",
	Long: `report reads the frontier store and the page store of a finished (or
interrupted) crawl and produces a Markdown completion report: frontier
status, per-domain page counts, longest page, and the most common words
across all saved pages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		generator := report.NewGenerator(reportSaveFile, reportPageStore)

		summary, err := generator.Summarize()
		if err != nil {
			return err
		}

		if reportOutput != "" {
			if err := generator.Write(summary, reportOutput); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", reportOutput)
			return nil
		}

		rendered, err := generator.Render(summary)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(rendered)
		return err
	},
	SilenceUsage: true,
}

func init() {
	reportCmd.Flags().StringVar(&reportSaveFile, "save-file", "frontier.db", "path of the durable frontier store")
	reportCmd.Flags().StringVar(&reportPageStore, "page-store-dir", "crawl_data", "directory of saved page records")
	reportCmd.Flags().StringVar(&reportOutput, "output", "", "write the report to this file instead of stdout")
}
