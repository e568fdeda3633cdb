package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/syssam/tabula/internal/movies"
	"github.com/syssam/tabula/repository"
)

func newMoviesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "movies",
		Aliases: []string{"movie"},
		Short:   "List, search and edit movies",
	}
	cmd.AddCommand(
		newMoviesListCmd(a),
		newMoviesGetCmd(a),
		newMoviesSearchCmd(a),
		newMoviesCreateCmd(a),
		newMoviesUpdateCmd(a),
		newMoviesDeleteCmd(a),
	)
	return cmd
}

func newMoviesListCmd(a *app) *cobra.Command {
	var (
		top    int
		order  string
		search string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the best rated movies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var (
				ms  []*movies.Movie
				err error
			)
			switch {
			case search != "":
				ms, err = a.catalog.Browse(ctx, search)
			case order != "":
				ms, err = a.catalog.Movies.GetAll(ctx, repository.OrderBy(order), repository.Take(top))
			default:
				ms, err = a.catalog.TopRated(ctx, top)
			}
			if err != nil {
				return err
			}
			return renderMovies(cmd.OutOrStdout(), a.cfg.Output, ms)
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", movies.DefaultTop, "number of movies, 0 for all")
	cmd.Flags().StringVar(&order, "order", "", "field to sort by, descending (default KinopoiskRating)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "only movies whose title contains this text")
	return cmd
}

func newMoviesGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("movie id", args[0])
			if err != nil {
				return err
			}
			m, err := a.catalog.Movie(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderMovies(cmd.OutOrStdout(), a.cfg.Output, []*movies.Movie{m})
		},
	}
}

func newMoviesSearchCmd(a *app) *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Find movies whose title contains text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := a.catalog.Movies.SearchIn(cmd.Context(), field, args[0])
			if err != nil {
				return err
			}
			return renderMovies(cmd.OutOrStdout(), a.cfg.Output, ms)
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "string field to search instead of Title")
	return cmd
}

// movieFlags binds flags to the editable fields of a movie.
type movieFlags struct {
	fs *pflag.FlagSet
	m  movies.Movie
}

func bindMovieFlags(fs *pflag.FlagSet) *movieFlags {
	f := &movieFlags{fs: fs}
	fs.StringVar(&f.m.Title, "title", "", "title")
	fs.Float32Var(&f.m.KinopoiskRating, "rating", 0, "Kinopoisk rating")
	fs.IntVar(&f.m.KinopoiskVotes, "votes", 0, "Kinopoisk votes")
	fs.StringVar(&f.m.Lists, "lists", "", "lists the movie is part of")
	fs.StringVar(&f.m.ReleaseDate, "release-date", "", "release date")
	fs.StringVar(&f.m.Country, "country", "", "country")
	fs.StringVar(&f.m.Director, "director", "", "director")
	fs.StringVar(&f.m.Genre, "genre", "", "genre")
	fs.StringVar(&f.m.Quality, "quality", "", "video quality")
	fs.StringVar(&f.m.AgeRating, "age-rating", "", "age rating")
	fs.StringVar(&f.m.Duration, "duration", "", "duration")
	fs.StringVar(&f.m.Series, "series", "", "series the movie belongs to")
	fs.StringVar(&f.m.Description, "description", "", "description")
	fs.StringVar(&f.m.PosterUrl, "poster-url", "", "poster URL")
	fs.StringVar(&f.m.TrailerUrl, "trailer-url", "", "trailer URL")
	return f
}

// apply copies the changed flags onto m.
func (f *movieFlags) apply(m *movies.Movie) {
	set := map[string]func(){
		"title":        func() { m.Title = f.m.Title },
		"rating":       func() { m.KinopoiskRating = f.m.KinopoiskRating },
		"votes":        func() { m.KinopoiskVotes = f.m.KinopoiskVotes },
		"lists":        func() { m.Lists = f.m.Lists },
		"release-date": func() { m.ReleaseDate = f.m.ReleaseDate },
		"country":      func() { m.Country = f.m.Country },
		"director":     func() { m.Director = f.m.Director },
		"genre":        func() { m.Genre = f.m.Genre },
		"quality":      func() { m.Quality = f.m.Quality },
		"age-rating":   func() { m.AgeRating = f.m.AgeRating },
		"duration":     func() { m.Duration = f.m.Duration },
		"series":       func() { m.Series = f.m.Series },
		"description":  func() { m.Description = f.m.Description },
		"poster-url":   func() { m.PosterUrl = f.m.PosterUrl },
		"trailer-url":  func() { m.TrailerUrl = f.m.TrailerUrl },
	}
	f.fs.Visit(func(fl *pflag.Flag) {
		if fn, ok := set[fl.Name]; ok {
			fn()
		}
	})
}

func newMoviesCreateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create --title <title> [flags]",
		Short: "Add a movie",
		Args:  cobra.NoArgs,
	}
	f := bindMovieFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("title")
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		m := f.m
		m.Id = 0
		created, err := a.catalog.Movies.Create(cmd.Context(), &m)
		if err != nil {
			return err
		}
		return renderMovies(cmd.OutOrStdout(), a.cfg.Output, []*movies.Movie{created})
	}
	return cmd
}

func newMoviesUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id> [flags]",
		Short: "Change the fields of a movie given as flags",
		Args:  cobra.ExactArgs(1),
	}
	f := bindMovieFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID("movie id", args[0])
		if err != nil {
			return err
		}
		m, err := a.catalog.Movie(cmd.Context(), id)
		if err != nil {
			return err
		}
		f.apply(m)
		if err := a.catalog.Movies.Update(cmd.Context(), id, m); err != nil {
			return err
		}
		return renderMovies(cmd.OutOrStdout(), a.cfg.Output, []*movies.Movie{m})
	}
	return cmd
}

func newMoviesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("movie id", args[0])
			if err != nil {
				return err
			}
			if err := a.catalog.Movies.Delete(cmd.Context(), id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted movie %d\n", id)
			return nil
		},
	}
}

func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return id, nil
}
