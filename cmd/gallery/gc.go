package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gallery/internal/config"
)

func newGCCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var apply bool
	var vacuum bool
	var batchSize int

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Find and delete stored bytes no media item references",
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize < 0 {
				return fmt.Errorf("--batch-size must be >= 0")
			}
			return withLibrary(cfg, func(env *libraryEnv) error {
				result, err := env.lib.GCBlobs(cmd.Context(), batchSize, apply)
				if err != nil {
					return err
				}
				if apply && vacuum {
					if err := env.store.Vacuum(cmd.Context()); err != nil {
						return fmt.Errorf("vacuum: %w", err)
					}
				}
				if *jsonOutput {
					return writeJSON(result)
				}
				if result.DryRun {
					return writePlain("%d unreferenced blobs; rerun with --apply to delete them\n", result.CandidateCount)
				}
				return writePlain("deleted %d of %d unreferenced blobs (%d failed), reclaimed %s\n",
					result.DeletedCount, result.CandidateCount, result.FailedCount, formatSize(result.ReclaimedBytes))
			})
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "delete candidates instead of only reporting them")
	cmd.Flags().BoolVar(&vacuum, "vacuum", false, "compact the database after deleting")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "candidates per pass (default from media.gc_batch_size)")
	return cmd
}
