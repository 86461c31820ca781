package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every record as JSON (backup) or XLSX",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Merge a JSON backup into the record store",
	Long: `Imports a JSON backup produced by "ceqc export". Every imported record
receives a new id; existing records are never replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json or xlsx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "output file, - for stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "-" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutput, err)
		}
		defer f.Close()
		w = f
	}

	switch exportFormat {
	case "json":
		return application.Exchange.WriteJSON(cmd.Context(), w)
	case "xlsx":
		data, err := application.Exchange.Workbook(cmd.Context())
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q, use json or xlsx", exportFormat)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	res, err := application.Exchange.Import(cmd.Context(), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records (%d slump, %d strength, %d bolting)\n",
		res.Total(), res.Slump, res.Resist, res.Pernos)
	return nil
}
