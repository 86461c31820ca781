package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/ceqc/internal/domain/models"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear [slump|resist|pernos|all]",
	Short: "Delete every record of a collection",
	Long: `Deletes every record of one collection, or of all three with "all".
This cannot be undone; export a backup first.

Example:
  ceqc clear pernos --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm the deletion")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		return errors.New("refusing to clear without --yes")
	}
	if args[0] == "all" {
		if err := application.Records.ClearAll(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All collections cleared")
		return nil
	}

	coll, err := models.ParseCollection(args[0])
	if err != nil {
		return err
	}
	if err := application.Records.Clear(cmd.Context(), coll); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Collection %s cleared\n", coll)
	return nil
}
