package repository_test

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/dialect"
	"github.com/syssam/tabula/dialect/sql"
	"github.com/syssam/tabula/predicate"
	"github.com/syssam/tabula/repository"
)

const sqliteSchema = `
CREATE TABLE Movies (
	Id INTEGER PRIMARY KEY AUTOINCREMENT,
	Title TEXT NOT NULL,
	KinopoiskRating REAL,
	KinopoiskVotes INTEGER,
	Country TEXT
);
CREATE TABLE UserFavorites (
	Id INTEGER PRIMARY KEY AUTOINCREMENT,
	UserId INTEGER NOT NULL,
	MovieId INTEGER NOT NULL,
	UNIQUE (UserId, MovieId)
);`

// openSQLite returns a driver over a fresh database file.
func openSQLite(t *testing.T) *sql.Driver {
	t.Helper()
	drv, err := sql.Open(dialect.SQLite, "", filepath.Join(t.TempDir(), "movies.db"))
	require.NoError(t, err)
	t.Cleanup(func() { drv.Close() })
	_, err = drv.DB().Exec(sqliteSchema)
	require.NoError(t, err)
	return drv
}

func seed(t *testing.T, repo *repository.Strict[Movie, *Movie], movies ...*Movie) {
	t.Helper()
	for _, m := range movies {
		_, err := repo.Create(context.Background(), m)
		require.NoError(t, err)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	repo, err := repository.NewStrict[Movie](drv)
	require.NoError(t, err)

	in := []*Movie{
		{Title: "Interstellar", KinopoiskRating: 8.6, KinopoiskVotes: 900000, Country: "USA"},
		{Title: "Inception", KinopoiskRating: 8.7, KinopoiskVotes: 850000, Country: "USA"},
		{Title: "Amélie", KinopoiskRating: 7.9, KinopoiskVotes: 300000, Country: "France"},
	}
	for _, m := range in {
		want := *m
		got, err := repo.Create(ctx, m)
		require.NoError(t, err)
		require.NotZero(t, got.Id, "identity written back")

		back, err := repo.GetByID(ctx, int64(got.Id))
		require.NoError(t, err)
		want.Id = got.Id
		assert.Equal(t, &want, back)
	}
	assert.Zero(t, drv.DB().Stats().InUse)
}

func TestSQLiteTakeOrder(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	repo, err := repository.NewStrict[Movie](drv)
	require.NoError(t, err)
	seed(t, repo,
		&Movie{Title: "A", KinopoiskRating: 5.5},
		&Movie{Title: "B", KinopoiskRating: 9.25},
		&Movie{Title: "C", KinopoiskRating: 7},
		&Movie{Title: "D", KinopoiskRating: 8.5},
	)

	ms, err := repo.GetAll(ctx, repository.OrderBy("KinopoiskRating"), repository.Take(3))
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.True(t, sort.SliceIsSorted(ms, func(i, j int) bool {
		return ms[i].KinopoiskRating > ms[j].KinopoiskRating
	}), "descending by rating")
	assert.Equal(t, "B", ms[0].Title)

	for _, take := range []int{0, -1} {
		ms, err = repo.GetAll(ctx, repository.Take(take))
		require.NoError(t, err)
		assert.Len(t, ms, 4, "take %d is no limit", take)
	}

	ms, err = repo.GetAll(ctx, repository.Take(10))
	require.NoError(t, err)
	assert.Len(t, ms, 4)

	ms, err = repo.GetAll(ctx, repository.Filter("KinopoiskRating > @min", map[string]any{"min": 8}))
	require.NoError(t, err)
	assert.Len(t, ms, 2)
}

func TestSQLiteSearch(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	repo, err := repository.NewStrict[Movie](drv)
	require.NoError(t, err)
	seed(t, repo,
		&Movie{Title: "Interstellar"},
		&Movie{Title: "Inception"},
		&Movie{Title: "50% Off"},
		&Movie{Title: "500 Days"},
	)

	ms, err := repo.Search(ctx, "In")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Interstellar", "Inception"}, titles(ms))

	ms, err = repo.Search(ctx, "Inter")
	require.NoError(t, err)
	assert.Equal(t, []string{"Interstellar"}, titles(ms))

	ms, err = repo.Search(ctx, "50%")
	require.NoError(t, err)
	assert.Equal(t, []string{"50% Off"}, titles(ms), "wildcards match literally")

	ms, err = repo.Search(ctx, "_")
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestSQLiteUpdateDelete(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	repo, err := repository.NewStrict[Movie](drv)
	require.NoError(t, err)
	m, err := repo.Create(ctx, &Movie{Title: "Tenet", KinopoiskRating: 7.5})
	require.NoError(t, err)
	id := int64(m.Id)

	require.NoError(t, repo.Update(ctx, id, &Movie{Title: "Tenet (2020)", KinopoiskRating: 7.75, KinopoiskVotes: 10, Country: "UK"}))
	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, &Movie{Id: m.Id, Title: "Tenet (2020)", KinopoiskRating: 7.75, KinopoiskVotes: 10, Country: "UK"}, got)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.GetByID(ctx, id)
	assert.True(t, tabula.IsNotFound(err))

	lenient, err := repo.Lenient().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, lenient)

	assert.True(t, tabula.IsNotFound(repo.Delete(ctx, id)))
	assert.True(t, tabula.IsNotFound(repo.Update(ctx, id, got)))
	assert.Zero(t, drv.DB().Stats().InUse)
}

func TestSQLiteNullColumn(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	_, err := drv.DB().Exec(`INSERT INTO Movies (Id, Title, KinopoiskRating, KinopoiskVotes, Country) VALUES (1, 'Solaris', 8.1, NULL, NULL)`)
	require.NoError(t, err)
	logger, buf := bufferLogger()
	repo, err := repository.NewStrict[Movie](drv, repository.WithLogger(logger))
	require.NoError(t, err)

	m, err := repo.GetByID(ctx, 1)
	require.NoError(t, err, "null is not a mapping error")
	assert.Equal(t, &Movie{Id: 1, Title: "Solaris", KinopoiskRating: 8.1}, m)
	assert.Contains(t, buf.String(), "column is null")
}

func TestSQLiteWhere(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	favorites, err := repository.New[Favorite](drv)
	require.NoError(t, err)
	for _, f := range []*Favorite{{UserId: 5, MovieId: 7}, {UserId: 5, MovieId: 8}, {UserId: 6, MovieId: 7}} {
		created, err := favorites.Create(ctx, f)
		require.NoError(t, err)
		require.NotNil(t, created)
	}

	f, err := favorites.FirstOrDefault(ctx, predicate.And(predicate.FieldEQ("UserId", 5), predicate.FieldEQ("MovieId", 7)))
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 5, f.UserId)
	assert.Equal(t, 7, f.MovieId)

	fs, err := favorites.Where(ctx, predicate.Or(predicate.FieldEQ("UserId", 6), predicate.FieldGT("MovieId", 7)))
	require.NoError(t, err)
	assert.Len(t, fs, 2)

	fs, err = favorites.Where(ctx, predicate.FieldLT("MovieId", 7))
	require.NoError(t, err)
	assert.Empty(t, fs)

	_, err = favorites.Where(ctx, predicate.NEQ(predicate.Field("UserId"), predicate.Value(5)))
	assert.True(t, tabula.IsUnsupportedOperator(err))

	dup, err := favorites.Create(ctx, &Favorite{UserId: 5, MovieId: 7})
	require.NoError(t, err, "lenient create swallows the unique violation")
	assert.Nil(t, dup)

	_, err = favorites.Strict().Create(ctx, &Favorite{UserId: 5, MovieId: 7})
	require.Error(t, err)
	assert.True(t, sql.IsUniqueConstraintError(err))
	assert.Zero(t, drv.DB().Stats().InUse)
}

func titles(ms []*Movie) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Title
	}
	return out
}
