package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gallery/internal/api"
	"gallery/internal/config"
	"gallery/internal/models"
)

func newSearchCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find media by file name",
		Args:  requireAtLeastArgs(1, "search query is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withLibrary(cfg, func(env *libraryEnv) error {
				results, err := env.lib.SearchMedia(cmd.Context(), query)
				if err != nil {
					return err
				}
				if results == nil {
					results = []models.MediaItem{}
				}
				if *jsonOutput {
					return writeJSON(api.SearchResponse{Query: query, Results: results})
				}
				return writeMediaList(results)
			})
		},
	}
}

func newStatsCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show storage usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cfg, func(env *libraryEnv) error {
				stats, err := env.lib.GetStorageStats(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(stats)
				}
				return writePlain("media: %d\ntotal size: %s\naverage size: %s\n",
					stats.TotalMedia, stats.FormattedSize, formatSize(stats.AverageSize))
			})
		},
	}
}

func newDashboardCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show library totals and recent uploads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cfg, func(env *libraryEnv) error {
				dashboard, err := env.lib.GetDashboard(cmd.Context())
				if err != nil {
					return err
				}
				if dashboard.Recent == nil {
					dashboard.Recent = []models.MediaItem{}
				}
				if *jsonOutput {
					return writeJSON(dashboard)
				}
				if err := writePlain("albums: %d\nmedia: %d\nsize: %s\ndownloads: %s\nviews: %s\n",
					dashboard.TotalAlbums, dashboard.TotalMedia, dashboard.FormattedSize,
					humanize.Comma(int64(dashboard.TotalDownloads)), humanize.Comma(int64(dashboard.TotalViews))); err != nil {
					return err
				}
				if len(dashboard.Recent) == 0 {
					return nil
				}
				if err := writePlain("\nrecent:\n"); err != nil {
					return err
				}
				return writeMediaList(dashboard.Recent)
			})
		},
	}
}

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show library location, schema version and limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cfg, func(env *libraryEnv) error {
				info, err := env.store.StoreInfo(cmd.Context())
				if err != nil {
					return err
				}
				resp := api.InfoResponse{
					LibraryPath:       cfg.LibraryPath,
					SchemaVersion:     info.SchemaVersion,
					TotalAlbums:       info.TotalAlbums,
					TotalMedia:        info.TotalMedia,
					MediaCounts:       info.MediaCounts,
					TotalBlobs:        info.TotalBlobs,
					BlobBytes:         info.BlobBytes,
					MaxUploadBytes:    env.lib.MaxUploadBytes(),
					AllowedMediaTypes: env.lib.AllowedMediaTypes(),
					ServerTime:        time.Now().UTC(),
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeInfo(resp)
			})
		},
	}
}

func writeInfo(info api.InfoResponse) error {
	lines := []string{
		fmt.Sprintf("library: %s", info.LibraryPath),
		fmt.Sprintf("schema_version: %d", info.SchemaVersion),
		fmt.Sprintf("albums: %d", info.TotalAlbums),
		fmt.Sprintf("media: %d", info.TotalMedia),
	}
	kinds := make([]string, 0, len(info.MediaCounts))
	for kind := range info.MediaCounts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		lines = append(lines, fmt.Sprintf("  %s: %d", kind, info.MediaCounts[kind]))
	}
	lines = append(lines,
		fmt.Sprintf("blobs: %d (%s)", info.TotalBlobs, formatSize(info.BlobBytes)),
		fmt.Sprintf("max_upload: %s", formatSize(info.MaxUploadBytes)),
		fmt.Sprintf("allowed_types: %s", strings.Join(info.AllowedMediaTypes, ", ")),
	)
	return writePlain("%s\n", strings.Join(lines, "\n"))
}
