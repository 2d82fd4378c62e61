package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gallery/internal/config"
	"gallery/internal/library"
)

func newAlbumExportCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <album-id>",
		Short: "Write an album and its manifest to a zip archive",
		Args:  requireAlbumID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cfg, func(env *libraryEnv) error {
				album, err := requireAlbum(env, cmd, args[0])
				if err != nil {
					return err
				}

				path := output
				if path == "" {
					path = library.ExportFilename(album.Name, time.Now().UTC())
				}
				if path == "-" {
					_, err := env.lib.ExportAlbum(cmd.Context(), album.ID, os.Stdout)
					return err
				}

				count, size, err := exportToFile(cmd, env, album.ID, path)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"album_id": album.ID, "path": path, "entries": count, "bytes": size})
				}
				return writePlain("exported %d media from %s to %s (%s)\n", count, album.ID, path, humanize.IBytes(uint64(size)))
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path, or - for stdout")
	return cmd
}

// exportToFile writes the archive beside path and renames it into place, so
// a failed export never leaves a truncated zip behind.
func exportToFile(cmd *cobra.Command, env *libraryEnv, albumID, path string) (int, int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".gallery-export-*.zip")
	if err != nil {
		return 0, 0, fmt.Errorf("create archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	count, err := env.lib.ExportAlbum(cmd.Context(), albumID, tmp)
	if err != nil {
		_ = tmp.Close()
		return 0, 0, err
	}
	info, err := tmp.Stat()
	if err != nil {
		_ = tmp.Close()
		return 0, 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, 0, fmt.Errorf("write archive: %w", err)
	}
	return count, info.Size(), nil
}
