package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gallery/internal/config"
	"gallery/internal/library"
	"gallery/internal/models"
)

func newMediaCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Manage photos and videos",
	}
	cmd.AddCommand(
		newMediaAddCmd(cfg, jsonOutput),
		newMediaListCmd(cfg, jsonOutput),
		newMediaShowCmd(cfg, jsonOutput),
		newMediaRemoveCmd(cfg, jsonOutput),
		newMediaGetCmd(cfg, jsonOutput),
	)
	return cmd
}

func newMediaAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var albumID string

	cmd := &cobra.Command{
		Use:   "add <file>...",
		Short: "Upload files into an album",
		Args:  requireAtLeastArgs(1, "at least one file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if albumID == "" {
				return fmt.Errorf("--album is required")
			}
			return withLibrary(cfg, func(env *libraryEnv) error {
				if _, err := requireAlbum(env, cmd, albumID); err != nil {
					return err
				}

				items, runErr := uploadFiles(cmd.Context(), env.lib, albumID, args, *jsonOutput)
				if *jsonOutput {
					if err := writeJSON(map[string]any{"album_id": albumID, "items": items}); err != nil {
						return err
					}
				} else if err := writeUploadItems(items); err != nil {
					return err
				}
				if runErr != nil {
					return runErr
				}
				if failed := countFailed(items); failed > 0 {
					return fmt.Errorf("%d of %d uploads failed", failed, len(items))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&albumID, "album", "a", "", "target album id")
	return cmd
}

func newMediaListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var albumID, mediaType string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List media, newest first, or one album in upload order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cfg, func(env *libraryEnv) error {
				ctx := cmd.Context()
				var kind models.MediaType
				if mediaType != "" {
					parsed, err := models.ParseMediaType(mediaType)
					if err != nil {
						return err
					}
					kind = parsed
				}

				var items []models.MediaItem
				var err error
				switch {
				case albumID != "":
					if _, err := requireAlbum(env, cmd, albumID); err != nil {
						return err
					}
					items, err = env.lib.GetAlbumMediaByType(ctx, albumID, kind)
				case kind != "":
					items, err = env.lib.GetMediaByType(ctx, kind)
				default:
					items, err = env.lib.GetAllMedia(ctx)
				}
				if err != nil {
					return err
				}
				if items == nil {
					items = []models.MediaItem{}
				}
				if *jsonOutput {
					return writeJSON(items)
				}
				return writeMediaList(items)
			})
		},
	}

	cmd.Flags().StringVarP(&albumID, "album", "a", "", "only media in this album")
	cmd.Flags().StringVarP(&mediaType, "type", "t", "", "only photo or video")
	return cmd
}

func newMediaShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <media-id>",
		Short: "Show one media item",
		Args:  requireMediaID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cfg, func(env *libraryEnv) error {
				item, err := env.lib.GetMediaItem(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if item == nil {
					return mediaNotFound(args[0])
				}
				if *jsonOutput {
					return writeJSON(item)
				}
				return writeMediaDetail(*item)
			})
		},
	}
}

func newMediaRemoveCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <media-id>...",
		Aliases: []string{"delete"},
		Short:   "Delete media items",
		Args:    requireAtLeastArgs(1, "media id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cfg, func(env *libraryEnv) error {
				deleted := make([]string, 0, len(args))
				for _, id := range args {
					if err := env.lib.DeleteMedia(cmd.Context(), id); err != nil {
						return err
					}
					deleted = append(deleted, id)
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"deleted": deleted})
				}
				return writePlain("deleted %d media\n", len(deleted))
			})
		},
	}
}

func newMediaGetCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var output string
	var thumbnail bool

	cmd := &cobra.Command{
		Use:   "get <media-id>",
		Short: "Download a media payload or its thumbnail",
		Args:  requireMediaID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cfg, func(env *libraryEnv) error {
				var content *library.Content
				var err error
				if thumbnail {
					content, err = env.lib.OpenThumbnail(cmd.Context(), args[0])
				} else {
					content, err = env.lib.DownloadMedia(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}
				defer content.Reader.Close()

				path := output
				if path == "" {
					path = filepath.Base(content.Filename)
				}
				written, err := copyContent(path, content.Reader)
				if err != nil {
					return err
				}
				if path == "-" {
					return nil
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"id": args[0], "path": path, "mime_type": content.MimeType, "bytes": written})
				}
				return writePlain("wrote %s (%s)\n", path, formatSize(written))
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination path, or - for stdout")
	cmd.Flags().BoolVar(&thumbnail, "thumbnail", false, "fetch the preview instead of the original")
	return cmd
}

func copyContent(path string, r io.Reader) (int64, error) {
	if path == "-" {
		return io.Copy(os.Stdout, r)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
	}
	return n, err
}
