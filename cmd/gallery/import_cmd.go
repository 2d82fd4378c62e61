package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gallery/internal/config"
	"gallery/internal/models"
)

type importAlbumResult struct {
	AlbumID  string              `json:"album_id,omitempty"`
	Name     string              `json:"name"`
	Reused   bool                `json:"reused"`
	Files    []string            `json:"files"`
	Items    []models.UploadItem `json:"items,omitempty"`
	Failed   int                 `json:"failed"`
	Uploaded int                 `json:"uploaded"`
}

func newImportCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var dryRun bool
	var reuse bool

	cmd := &cobra.Command{
		Use:   "import <manifest.yaml>",
		Short: "Create albums and upload files listed in a YAML manifest",
		Args:  requireExactlyArgs(1, "manifest path is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := loadImportManifest(args[0])
			if err != nil {
				return err
			}
			baseDir := filepath.Dir(args[0])

			return withLibrary(cfg, func(env *libraryEnv) error {
				results, runErr := runImport(cmd.Context(), env, manifest, baseDir, dryRun, reuse, *jsonOutput)
				if *jsonOutput {
					if err := writeJSON(map[string]any{"dry_run": dryRun, "albums": results}); err != nil {
						return err
					}
				} else if err := writeImportResults(results, dryRun); err != nil {
					return err
				}
				if runErr != nil {
					return runErr
				}
				failed := 0
				for _, r := range results {
					failed += r.Failed
				}
				if failed > 0 {
					return fmt.Errorf("%d files failed to import", failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve files without creating anything")
	cmd.Flags().BoolVar(&reuse, "reuse", false, "upload into an existing album with the same name")
	return cmd
}

func runImport(ctx context.Context, env *libraryEnv, manifest *importManifest, baseDir string, dryRun, reuse, quiet bool) ([]importAlbumResult, error) {
	existing := map[string]string{}
	if reuse {
		albums, err := env.lib.ListAlbums(ctx)
		if err != nil {
			return nil, err
		}
		for _, album := range albums {
			key := strings.ToLower(album.Name)
			if _, ok := existing[key]; !ok {
				existing[key] = album.ID
			}
		}
	}

	results := make([]importAlbumResult, 0, len(manifest.Albums))
	for _, entry := range manifest.Albums {
		files, err := entry.resolveFiles(baseDir)
		if err != nil {
			return results, err
		}
		result := importAlbumResult{Name: entry.Name, Files: files}
		if id, ok := existing[strings.ToLower(entry.Name)]; ok {
			result.AlbumID, result.Reused = id, true
		}
		if dryRun {
			results = append(results, result)
			continue
		}

		if result.AlbumID == "" {
			album, err := env.lib.CreateAlbum(ctx, entry.Name, entry.Description)
			if err != nil {
				return results, err
			}
			result.AlbumID = album.ID
		}

		items, runErr := uploadFiles(ctx, env.lib, result.AlbumID, files, quiet)
		result.Items = items
		result.Failed = countFailed(items)
		result.Uploaded = len(items) - result.Failed
		results = append(results, result)
		if runErr != nil {
			return results, runErr
		}
	}
	return results, nil
}

func writeImportResults(results []importAlbumResult, dryRun bool) error {
	for _, r := range results {
		if dryRun {
			action := "create"
			if r.Reused {
				action = "reuse " + r.AlbumID
			}
			if err := writePlain("%s: %s, %d files\n", r.Name, action, len(r.Files)); err != nil {
				return err
			}
			for _, f := range r.Files {
				if err := writePlain("  %s\n", f); err != nil {
					return err
				}
			}
			continue
		}
		if err := writePlain("%s (%s): %d uploaded, %d failed\n", r.Name, r.AlbumID, r.Uploaded, r.Failed); err != nil {
			return err
		}
	}
	return nil
}
