package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/app"
	"github.com/mamadbah2/ceqc/internal/config"
	"github.com/mamadbah2/ceqc/pkg/logger"
)

var (
	envFile string
	verbose bool

	cfg         *config.Config
	log         *zap.Logger
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "ceqc",
	Short: "Offline concrete QC logger: reports, backups and maintenance",
	Long: `ceqc works directly on the local record database used by the server.

It renders reports for a day or a date range, exports and imports backups
and clears collections.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log, err = logger.New(verbose || cfg.Log.Debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		application, err = app.New(cmd.Context(), cfg, log)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			if err := application.Close(); err != nil {
				log.Error("failed to close record store", zap.Error(err))
			}
		}
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to a .env file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(reportCmd, exportCmd, importCmd, clearCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
