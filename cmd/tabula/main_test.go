package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/syssam/tabula/internal/movies"
)

const testSchema = `
CREATE TABLE Movies (
	Id INTEGER PRIMARY KEY AUTOINCREMENT,
	Title TEXT NOT NULL,
	KinopoiskRating REAL, KinopoiskVotes INTEGER,
	Lists TEXT, ReleaseDate TEXT, Country TEXT, Director TEXT, Genre TEXT,
	Quality TEXT, AgeRating TEXT, Duration TEXT, Series TEXT,
	Description TEXT, PosterUrl TEXT, TrailerUrl TEXT
);
CREATE TABLE Users (
	Id INTEGER PRIMARY KEY AUTOINCREMENT,
	Email TEXT, Login TEXT NOT NULL UNIQUE, Password TEXT NOT NULL, Role TEXT NOT NULL
);
CREATE TABLE UserFavorites (
	Id INTEGER PRIMARY KEY AUTOINCREMENT,
	UserId INTEGER NOT NULL, MovieId INTEGER NOT NULL,
	UNIQUE (UserId, MovieId)
);`

// testDB creates a catalog database and returns its dsn. The working
// directory moves to an empty dir so no tabula.yaml is picked up.
func testDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	dsn := filepath.Join(dir, "catalog.db")
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return dsn
}

// run executes the command line against dsn and returns stdout.
func run(t *testing.T, dsn string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), append([]string{"--dsn", dsn}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func mustRun(t *testing.T, dsn string, args ...string) string {
	t.Helper()
	out, err := run(t, dsn, args...)
	require.NoError(t, err, "tabula %s", strings.Join(args, " "))
	return out
}

func createMovie(t *testing.T, dsn string, args ...string) *movies.Movie {
	t.Helper()
	out := mustRun(t, dsn, append([]string{"movies", "create", "-o", "json"}, args...)...)
	var ms []*movies.Movie
	require.NoError(t, json.Unmarshal([]byte(out), &ms))
	require.Len(t, ms, 1)
	require.NotZero(t, ms[0].Id)
	return ms[0]
}

func TestMoviesCommands(t *testing.T) {
	dsn := testDB(t)
	interstellar := createMovie(t, dsn, "--title", "Interstellar", "--rating", "8.6", "--votes", "900000", "--country", "USA")
	createMovie(t, dsn, "--title", "Inception", "--rating", "8.7", "--genre", "sci-fi")
	createMovie(t, dsn, "--title", "Amélie", "--rating", "7.9", "--country", "France")
	assert.Equal(t, float32(8.6), interstellar.KinopoiskRating)
	assert.Equal(t, "USA", interstellar.Country)

	t.Run("list", func(t *testing.T) {
		var ms []*movies.Movie
		require.NoError(t, json.Unmarshal([]byte(mustRun(t, dsn, "movies", "list", "-o", "json", "--top", "2")), &ms))
		require.Len(t, ms, 2)
		assert.Equal(t, "Inception", ms[0].Title)
		assert.Equal(t, "Interstellar", ms[1].Title)

		out := mustRun(t, dsn, "movies", "list")
		assert.Contains(t, out, "TITLE")
		assert.Contains(t, out, "Amélie")
		assert.Contains(t, out, "8.70")
	})

	t.Run("search", func(t *testing.T) {
		var ms []*movies.Movie
		require.NoError(t, json.Unmarshal([]byte(mustRun(t, dsn, "movies", "search", "In", "-o", "json")), &ms))
		assert.Len(t, ms, 2)

		require.NoError(t, json.Unmarshal([]byte(mustRun(t, dsn, "movies", "list", "--search", "Inter", "-o", "json")), &ms))
		require.Len(t, ms, 1)
		assert.Equal(t, interstellar.Id, ms[0].Id)

		require.NoError(t, json.Unmarshal([]byte(mustRun(t, dsn, "movies", "search", "France", "--field", "Country", "-o", "json")), &ms))
		require.Len(t, ms, 1)
		assert.Equal(t, "Amélie", ms[0].Title)

		assert.Equal(t, "(0 rows)\n", mustRun(t, dsn, "movies", "search", "Matrix"))
	})

	t.Run("update", func(t *testing.T) {
		id := strconv.Itoa(interstellar.Id)
		mustRun(t, dsn, "movies", "update", id, "--director", "Christopher Nolan")
		var got []*movies.Movie
		require.NoError(t, yaml.Unmarshal([]byte(mustRun(t, dsn, "movies", "get", id, "-o", "yaml")), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Christopher Nolan", got[0].Director)
		assert.Equal(t, "Interstellar", got[0].Title, "unset flags keep their values")
		assert.Equal(t, 900000, got[0].KinopoiskVotes)
	})

	t.Run("delete", func(t *testing.T) {
		id := strconv.Itoa(interstellar.Id)
		assert.Contains(t, mustRun(t, dsn, "movies", "delete", id), "deleted movie")
		_, err := run(t, dsn, "movies", "get", id)
		assert.ErrorIs(t, err, movies.ErrMovieNotFound)
		_, err = run(t, dsn, "movies", "delete", id)
		assert.Error(t, err)
	})

	t.Run("bad args", func(t *testing.T) {
		_, err := run(t, dsn, "movies", "get", "abc")
		assert.ErrorContains(t, err, `invalid movie id "abc"`)
		_, err = run(t, dsn, "movies", "create")
		assert.ErrorContains(t, err, "title")
	})
}

func TestUsersCommands(t *testing.T) {
	dsn := testDB(t)
	out := mustRun(t, dsn, "users", "signup", "--login", "neo", "--password", "trinity", "--email", "neo@example.com", "-o", "json")
	assert.NotContains(t, out, "trinity")
	var us []*movies.User
	require.NoError(t, json.Unmarshal([]byte(out), &us))
	require.Len(t, us, 1)
	assert.Equal(t, movies.RoleUser, us[0].Role)

	_, err := run(t, dsn, "users", "signup", "--login", "neo", "--password", "other")
	assert.ErrorIs(t, err, movies.ErrLoginTaken)

	out = mustRun(t, dsn, "users", "find", "neo")
	assert.Contains(t, out, "neo@example.com")
	_, err = run(t, dsn, "users", "find", "smith")
	assert.ErrorIs(t, err, movies.ErrUserNotFound)

	mustRun(t, dsn, "users", "signin", "--login", "neo", "--password", "trinity")
	_, err = run(t, dsn, "users", "signin", "--login", "neo", "--password", "wrong")
	assert.ErrorIs(t, err, movies.ErrInvalidCredentials)
}

func TestFavoritesCommands(t *testing.T) {
	dsn := testDB(t)
	m := createMovie(t, dsn, "--title", "Solaris", "--rating", "8.1")
	mid := strconv.Itoa(m.Id)

	out := mustRun(t, dsn, "favorites", "add", "1", mid)
	assert.Contains(t, out, "MOVIE")
	_, err := run(t, dsn, "favorites", "add", "1", mid)
	assert.ErrorIs(t, err, movies.ErrAlreadyFavorite)
	_, err = run(t, dsn, "favorites", "add", "1", "999")
	assert.ErrorIs(t, err, movies.ErrMovieNotFound)

	var ms []*movies.Movie
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, dsn, "favorites", "list", "1", "-o", "json")), &ms))
	require.Len(t, ms, 1)
	assert.Equal(t, "Solaris", ms[0].Title)

	assert.Contains(t, mustRun(t, dsn, "fav", "rm", "1", mid), "removed favorite")
	_, err = run(t, dsn, "favorites", "remove", "1", mid)
	assert.ErrorIs(t, err, movies.ErrNotFavorite)
}

func TestConfiguration(t *testing.T) {
	t.Run("missing dsn", func(t *testing.T) {
		t.Chdir(t.TempDir())
		var stdout, stderr bytes.Buffer
		err := execute(context.Background(), []string{"movies", "list"}, &stdout, &stderr)
		assert.ErrorContains(t, err, "database.dsn is required")
	})
	t.Run("bad output", func(t *testing.T) {
		dsn := testDB(t)
		_, err := run(t, dsn, "movies", "list", "-o", "xml")
		assert.ErrorContains(t, err, "output")
	})
	t.Run("custom table", func(t *testing.T) {
		dsn := testDB(t)
		db, err := sql.Open("sqlite", dsn)
		require.NoError(t, err)
		_, err = db.Exec(`CREATE TABLE Films AS SELECT * FROM Movies WHERE 0`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO Films (Id, Title, KinopoiskRating) VALUES (1, 'Stalker', 8.0)`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		t.Setenv("TABULA_TABLES__MOVIES", "Films")
		assert.Contains(t, mustRun(t, dsn, "movies", "list"), "Stalker")
	})
	t.Run("debug", func(t *testing.T) {
		dsn := testDB(t)
		var stdout, stderr bytes.Buffer
		err := execute(context.Background(), []string{"--dsn", dsn, "--debug", "--log-level", "debug", "movies", "list"}, &stdout, &stderr)
		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "SELECT")
		assert.Contains(t, stderr.String(), "query stats")
	})
}

func TestReadPassword(t *testing.T) {
	p, err := readPassword(strings.NewReader("secret\r\nmore"))
	require.NoError(t, err)
	assert.Equal(t, "secret", p)

	_, err = readPassword(strings.NewReader(""))
	assert.Error(t, err)
}

