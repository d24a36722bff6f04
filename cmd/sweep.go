package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/opfleet/fleethealth/app"
	"github.com/opfleet/fleethealth/infra/logger"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one health status sweep and exit",
	RunE:  sweepOnce,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func sweepOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// The sweep does not need the broker consumer.
	cfg.Ingest.Enabled = false

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("sweep").Errorf("service close: %v", err)
		}
	}()

	changed, err := svc.SweepOnce(context.Background())
	if err != nil {
		return err
	}
	logger.New("sweep").Infof("sweep complete, %d status change(s)", changed)
	return nil
}
