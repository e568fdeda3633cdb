package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/syssam/tabula/internal/movies"
)

// render writes items in the given format. Tables show the columns returned
// by row under header.
func render[T any](w io.Writer, format string, items []T, header table.Row, row func(T) table.Row) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return err
		}
		return enc.Close()
	}
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	for _, it := range items {
		t.AppendRow(row(it))
	}
	t.Render()
	return nil
}

func renderMovies(w io.Writer, format string, ms []*movies.Movie) error {
	return render(w, format, ms,
		table.Row{"ID", "Title", "Rating", "Votes", "Released", "Country", "Genre"},
		func(m *movies.Movie) table.Row {
			return table.Row{m.Id, m.Title, strconv.FormatFloat(float64(m.KinopoiskRating), 'f', 2, 32), m.KinopoiskVotes, m.ReleaseDate, m.Country, m.Genre}
		})
}

func renderUsers(w io.Writer, format string, us []*movies.User) error {
	return render(w, format, us,
		table.Row{"ID", "Login", "Email", "Role"},
		func(u *movies.User) table.Row {
			return table.Row{u.Id, u.Login, u.Email, u.Role}
		})
}

func renderFavorites(w io.Writer, format string, fs []*movies.Favorite) error {
	return render(w, format, fs,
		table.Row{"ID", "User", "Movie"},
		func(f *movies.Favorite) table.Row {
			return table.Row{f.Id, f.UserId, f.MovieId}
		})
}
