package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/ceqc/internal/service/query"
	"github.com/mamadbah2/ceqc/internal/service/reporting"
)

var (
	reportFrom string
	reportTo   string
	reportDay  string
	reportOut  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a report for a day or a date range",
	Long: `Builds the report from one snapshot of the record store and writes the
charts (PNG), the text summary, the JSON numbers and a printable HTML page
into <out>/<day> or <out>/<from>_<to>.

Example:
  ceqc report --day 2024-05-14
  ceqc report --from 2024-05-01 --to 2024-05-31 --out monthly`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "first day (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "last day (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportDay, "day", "", "single day (YYYY-MM-DD), overrides --from/--to")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output root (default REPORT_OUTPUT_DIR)")
}

func runReport(cmd *cobra.Command, args []string) error {
	r := query.Range{From: reportFrom, To: reportTo}
	if reportDay != "" {
		r = query.Day(reportDay)
	}
	out := reportOut
	if out == "" {
		out = cfg.Reporting.OutputDir
	}

	report, err := application.Reports.Build(cmd.Context(), r)
	if err != nil {
		return err
	}
	dir, err := reporting.Save(report, out)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, line := range report.Summary {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\nWritten to %s\n", dir)
	return nil
}
