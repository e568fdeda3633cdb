package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/tabula/internal/movies"
)

func newFavoritesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage the favorite movies of users",
	}
	cmd.AddCommand(
		newFavoritesListCmd(a),
		newFavoritesAddCmd(a),
		newFavoritesRemoveCmd(a),
	)
	return cmd
}

func newFavoritesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <user-id>",
		Short: "List the favorite movies of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user id", args[0])
			if err != nil {
				return err
			}
			ms, err := a.catalog.FavoriteMovies(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return renderMovies(cmd.OutOrStdout(), a.cfg.Output, ms)
		},
	}
}

// favoriteArgs parses <user-id> <movie-id>.
func favoriteArgs(args []string) (userID, movieID int64, err error) {
	if userID, err = parseID("user id", args[0]); err != nil {
		return 0, 0, err
	}
	if movieID, err = parseID("movie id", args[1]); err != nil {
		return 0, 0, err
	}
	return userID, movieID, nil
}

func newFavoritesAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <user-id> <movie-id>",
		Short: "Bookmark a movie for a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, movieID, err := favoriteArgs(args)
			if err != nil {
				return err
			}
			f, err := a.catalog.AddFavorite(cmd.Context(), userID, movieID)
			if err != nil {
				return err
			}
			return renderFavorites(cmd.OutOrStdout(), a.cfg.Output, []*movies.Favorite{f})
		},
	}
}

func newFavoritesRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <user-id> <movie-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a bookmark",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, movieID, err := favoriteArgs(args)
			if err != nil {
				return err
			}
			if err := a.catalog.RemoveFavorite(cmd.Context(), userID, movieID); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed favorite: user %d movie %d\n", userID, movieID)
			return err
		},
	}
}
