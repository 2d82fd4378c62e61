package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gallery/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var jsonOutput bool
	var logLevel string

	cmd := &cobra.Command{
		Use:           "gallery",
		Short:         "Gallery is a local photo and video library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newMigrateCmd(cfg, &jsonOutput),
		newAlbumCmd(cfg, &jsonOutput),
		newMediaCmd(cfg, &jsonOutput),
		newImportCmd(cfg, &jsonOutput),
		newSearchCmd(cfg, &jsonOutput),
		newStatsCmd(cfg, &jsonOutput),
		newDashboardCmd(cfg, &jsonOutput),
		newInfoCmd(cfg, &jsonOutput),
		newGCCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
		newAdminCmd(cfg, &jsonOutput),
	)

	return cmd
}
