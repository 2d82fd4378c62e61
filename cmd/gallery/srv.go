package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gallery/internal/auth"
	"gallery/internal/config"
	"gallery/internal/server"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the gallery API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			env, err := openLibrary(cfg, logger)
			if err != nil {
				return err
			}
			defer env.Close()

			srv := server.New(addr, env.lib, env.store, server.Options{
				LibraryPath: cfg.LibraryPath,
				Credentials: auth.Credentials{
					Username:     cfg.Admin.Username,
					PasswordHash: cfg.Admin.PasswordHash,
				},
				MultipartMaxMemory: cfg.Media.MultipartMaxMemory,
				Logger:             logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}
}
