package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gallery/internal/config"
	"gallery/internal/library"
	"gallery/internal/models"
)

func newAlbumCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "album",
		Short: "Manage albums",
	}
	cmd.AddCommand(
		newAlbumCreateCmd(cfg, jsonOutput),
		newAlbumListCmd(cfg, jsonOutput),
		newAlbumShowCmd(cfg, jsonOutput),
		newAlbumUpdateCmd(cfg, jsonOutput),
		newAlbumRemoveCmd(cfg, jsonOutput),
		newAlbumRecountCmd(cfg, jsonOutput),
		newAlbumCoverCmd(cfg, jsonOutput),
		newAlbumExportCmd(cfg, jsonOutput),
	)
	return cmd
}

func newAlbumCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an album",
		Args:  requireAtLeastArgs(1, "album name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return withLibrary(cfg, func(env *libraryEnv) error {
				album, err := env.lib.CreateAlbum(cmd.Context(), name, description)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(album)
				}
				return writePlain("created album %s (%s)\n", album.Name, album.ID)
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "album description")
	return cmd
}

func newAlbumListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var sortBy string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List albums, newest first unless --sort says otherwise",
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := models.ParseAlbumSort(sortBy)
			if err != nil {
				return err
			}
			return withLibrary(cfg, func(env *libraryEnv) error {
				albums, err := env.lib.ListAlbumsSorted(cmd.Context(), order)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(albums)
				}
				return writeAlbumList(albums)
			})
		},
	}

	cmd.Flags().StringVarP(&sortBy, "sort", "s", string(models.AlbumSortDate), "order by date, name or size")
	return cmd
}

func newAlbumShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var countView bool

	cmd := &cobra.Command{
		Use:   "show <album-id>",
		Short: "Show an album and its media",
		Args:  requireAlbumID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cfg, func(env *libraryEnv) error {
				ctx := cmd.Context()
				album, err := requireAlbum(env, cmd, args[0])
				if err != nil {
					return err
				}
				if countView {
					if err := env.lib.IncrementAlbumViews(ctx, album.ID); err != nil {
						return err
					}
					album.Views++
				}
				media, err := env.lib.GetAlbumMedia(ctx, album.ID)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"album": album, "media": media})
				}
				return writeAlbumDetail(*album, media)
			})
		},
	}

	cmd.Flags().BoolVar(&countView, "view", false, "record one album view")
	return cmd
}

func newAlbumUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "update <album-id>",
		Short: "Rename an album or change its description",
		Args:  requireAlbumID,
		RunE: func(cmd *cobra.Command, args []string) error {
			var update models.AlbumUpdate
			if cmd.Flags().Changed("name") {
				update.Name = &name
			}
			if cmd.Flags().Changed("description") {
				update.Description = &description
			}
			if update.IsEmpty() {
				return fmt.Errorf("nothing to update; pass --name or --description")
			}

			return withLibrary(cfg, func(env *libraryEnv) error {
				album, err := env.lib.UpdateAlbum(cmd.Context(), args[0], update)
				if err != nil {
					return err
				}
				if album == nil {
					return albumNotFound(args[0])
				}
				if *jsonOutput {
					return writeJSON(album)
				}
				return writePlain("updated album %s\n", album.ID)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new album name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new album description")
	return cmd
}

func newAlbumRemoveCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <album-id>",
		Aliases: []string{"delete"},
		Short:   "Delete an album and all of its media",
		Args:    requireAlbumID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cfg, func(env *libraryEnv) error {
				album, err := requireAlbum(env, cmd, args[0])
				if err != nil {
					return err
				}
				if err := env.lib.DeleteAlbum(cmd.Context(), album.ID); err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"id": album.ID, "media_removed": album.MediaCount})
				}
				return writePlain("deleted album %s (%d media)\n", album.ID, album.MediaCount)
			})
		},
	}
}

func newAlbumRecountCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "recount <album-id>",
		Short: "Recompute an album's media count and cover",
		Args:  requireAlbumID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cfg, func(env *libraryEnv) error {
				album, err := env.lib.RecountAlbum(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if album == nil {
					return albumNotFound(args[0])
				}
				if *jsonOutput {
					return writeJSON(album)
				}
				return writePlain("album %s has %d media\n", album.ID, album.MediaCount)
			})
		},
	}
}

func newAlbumCoverCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "cover <album-id> <media-id>",
		Short: "Use one of the album's photos as its cover",
		Args:  requireExactlyArgs(2, "album id and media id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cfg, func(env *libraryEnv) error {
				album, err := env.lib.SetAlbumCover(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(album)
				}
				return writePlain("album %s cover set to %s\n", album.ID, args[1])
			})
		},
	}
}

// requireAlbum loads an album, turning an unknown id into a not-found error.
func requireAlbum(env *libraryEnv, cmd *cobra.Command, id string) (*models.Album, error) {
	album, err := env.lib.GetAlbum(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, albumNotFound(id)
	}
	return album, nil
}

func albumNotFound(id string) error {
	return &library.Error{Kind: library.ErrNotFound, Code: library.ErrCodeAlbumNotFound, Err: fmt.Errorf("album not found: %s", id)}
}

func mediaNotFound(id string) error {
	return &library.Error{Kind: library.ErrNotFound, Code: library.ErrCodeMediaNotFound, Err: fmt.Errorf("media not found: %s", id)}
}
