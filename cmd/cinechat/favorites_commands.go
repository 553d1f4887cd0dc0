package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cinechat/internal/favorites"
)

func newFavoritesCommand(ctx *commandContext) *cobra.Command {
	favoritesCmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage saved movies",
	}
	favoritesCmd.AddCommand(newFavoritesListCommand(ctx))
	favoritesCmd.AddCommand(newFavoritesAddCommand(ctx))
	favoritesCmd.AddCommand(newFavoritesRemoveCommand(ctx))
	favoritesCmd.AddCommand(newFavoritesClearCommand(ctx))
	return favoritesCmd
}

func newFavoritesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved movies, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withFavorites(func(store *favorites.Store) error {
				list, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string][]favorites.Favorite{"favorites": list})
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No favorites saved")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, fav := range list {
					rows = append(rows, []string{
						strconv.FormatInt(fav.MovieID, 10),
						fav.Title,
						fallback(fav.BackdropPath, "-"),
						fav.SavedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(out, renderTable(out, []string{"ID", "Title", "Backdrop", "Saved"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
				fmt.Fprintf(out, "%d of %d slots used\n", len(list), store.Capacity())
				return nil
			})
		},
	}
}

func newFavoritesAddCommand(ctx *commandContext) *cobra.Command {
	var backdrop string

	cmd := &cobra.Command{
		Use:   "add <movie-id> <title>",
		Short: "Save a movie",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			title := strings.Join(args[1:], " ")
			return ctx.withFavorites(func(store *favorites.Store) error {
				fav, evicted, err := store.Add(cmd.Context(), favorites.Favorite{
					MovieID:      id,
					Title:        title,
					BackdropPath: backdrop,
				})
				if err != nil {
					return userFacing(err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"favorite": fav, "evicted": evicted})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Saved %d (%s)\n", fav.MovieID, fav.Title)
				for _, old := range evicted {
					fmt.Fprintf(out, "Evicted %d to stay within %d favorites\n", old, store.Capacity())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&backdrop, "backdrop", "", "Backdrop image path from the catalog")
	return cmd
}

func newFavoritesRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <movie-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a saved movie",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return ctx.withFavorites(func(store *favorites.Store) error {
				removed, err := store.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("movie %d is not a favorite", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d\n", id)
				return nil
			})
		},
	}
}

func newFavoritesClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every saved movie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withFavorites(func(store *favorites.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d favorites\n", removed)
				return nil
			})
		},
	}
}

func parseMovieID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q", value)
	}
	return id, nil
}
