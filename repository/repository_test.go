package repository_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/cache"
	"github.com/syssam/tabula/dialect"
	"github.com/syssam/tabula/predicate"
	"github.com/syssam/tabula/repository"
)

func TestCreate(t *testing.T) {
	ctx := context.Background()
	t.Run("Postgres", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		repo, err := repository.New[Movie](drv)
		require.NoError(t, err)
		mock.ExpectQuery(`INSERT INTO "Movies" ("Title", "KinopoiskRating", "KinopoiskVotes", "Country") VALUES ($1, $2, $3, $4) RETURNING "Id"`).
			WithArgs("Inception", 8.5, int64(1000), "USA").
			WillReturnRows(sqlmock.NewRows([]string{"Id"}).AddRow(int64(7)))
		m, err := repo.Create(ctx, &Movie{Title: "Inception", KinopoiskRating: 8.5, KinopoiskVotes: 1000, Country: "USA"})
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, 7, m.Id)
		requireReleased(t, drv, mock)
	})
	t.Run("MySQL", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.MySQL)
		repo, err := repository.New[Movie](drv)
		require.NoError(t, err)
		mock.ExpectExec("INSERT INTO `Movies` (`Title`, `KinopoiskRating`, `KinopoiskVotes`, `Country`) VALUES (?, ?, ?, ?)").
			WillReturnResult(sqlmock.NewResult(42, 1))
		m, err := repo.Create(ctx, &Movie{Title: "Heat"})
		require.NoError(t, err)
		assert.Equal(t, 42, m.Id)
		requireReleased(t, drv, mock)
	})
	t.Run("SQLServer", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.SQLServer)
		repo, err := repository.New[Favorite](drv)
		require.NoError(t, err)
		mock.ExpectQuery("INSERT INTO [UserFavorites] ([UserId], [MovieId]) VALUES (@UserId, @MovieId); SELECT SCOPE_IDENTITY()").
			WillReturnRows(sqlmock.NewRows([]string{""}).AddRow(int64(3)))
		f, err := repo.Create(ctx, &Favorite{UserId: 5, MovieId: 7})
		require.NoError(t, err)
		assert.Equal(t, int64(3), f.Id)
		requireReleased(t, drv, mock)
	})
	t.Run("Failure", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		logger, buf := bufferLogger()
		repo, err := repository.New[Movie](drv, repository.WithLogger(logger))
		require.NoError(t, err)
		mock.ExpectQuery(`INSERT INTO "Movies" ("Title", "KinopoiskRating", "KinopoiskVotes", "Country") VALUES ($1, $2, $3, $4) RETURNING "Id"`).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})
		m, err := repo.Create(ctx, &Movie{Title: "Inception"})
		require.NoError(t, err, "execution errors are logged, not returned")
		assert.Nil(t, m)
		assert.Contains(t, buf.String(), "statement failed")
		assert.Contains(t, buf.String(), "op=create")
		assert.Contains(t, buf.String(), "table=Movies")
		assert.Contains(t, buf.String(), "constraint=unique")
		assert.Contains(t, buf.String(), "call_id=")
		requireReleased(t, drv, mock)
	})
	t.Run("Nil", func(t *testing.T) {
		drv, _ := mockDriver(t, dialect.Postgres)
		repo, err := repository.New[Movie](drv)
		require.NoError(t, err)
		_, err = repo.Create(ctx, nil)
		assert.True(t, tabula.IsShapeError(err))
	})
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	const query = `SELECT * FROM "Movies" WHERE "Id" = $1`
	drv, mock := mockDriver(t, dialect.Postgres)
	repo, err := repository.New[Movie](drv)
	require.NoError(t, err)

	mock.ExpectQuery(query).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(movieColumns).AddRow(int64(7), "Inception", 8.7, int64(1000), "USA"))
	m, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, &Movie{Id: 7, Title: "Inception", KinopoiskRating: 8.7, KinopoiskVotes: 1000, Country: "USA"}, m)

	mock.ExpectQuery(query).WithArgs(int64(8)).WillReturnRows(sqlmock.NewRows(movieColumns))
	m, err = repo.GetByID(ctx, 8)
	require.NoError(t, err)
	assert.Nil(t, m)

	mock.ExpectQuery(query).WithArgs(int64(8)).WillReturnRows(sqlmock.NewRows(movieColumns))
	m, err = repo.Strict().GetByID(ctx, 8)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, tabula.IsNotFound(err))
	var nf *tabula.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, int64(8), nf.ID())
	requireReleased(t, drv, mock)
}

func TestGetAll(t *testing.T) {
	ctx := context.Background()
	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows(movieColumns).
			AddRow(int64(1), "Interstellar", 8.5, int64(900), "USA").
			AddRow(int64(2), "Inception", 8.25, int64(800), "UK")
	}
	tests := []struct {
		name  string
		opts  []repository.QueryOption
		query string
		args  []driver.Value
	}{
		{
			name:  "All",
			query: `SELECT * FROM "Movies"`,
		},
		{
			name:  "OrderTake",
			opts:  []repository.QueryOption{repository.OrderBy("KinopoiskRating"), repository.Take(10)},
			query: `SELECT * FROM "Movies" ORDER BY "KinopoiskRating" DESC LIMIT 10`,
		},
		{
			name:  "NonPositiveTake",
			opts:  []repository.QueryOption{repository.Take(0)},
			query: `SELECT * FROM "Movies"`,
		},
		{
			name: "FilterMatching",
			opts: []repository.QueryOption{
				repository.Filter(`"KinopoiskVotes" > @votes`, map[string]any{"@votes": 500}),
				repository.Matching(predicate.FieldEQ("Country", "USA")),
			},
			query: `SELECT * FROM "Movies" WHERE ("KinopoiskVotes" > $1) AND ("Country" = $2)`,
			args:  []driver.Value{int64(500), "USA"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv, mock := mockDriver(t, dialect.Postgres)
			repo, err := repository.New[Movie](drv)
			require.NoError(t, err)
			e := mock.ExpectQuery(tt.query)
			if tt.args != nil {
				e.WithArgs(tt.args...)
			}
			e.WillReturnRows(rows())
			ms, err := repo.GetAll(ctx, tt.opts...)
			require.NoError(t, err)
			require.Len(t, ms, 2)
			assert.Equal(t, "Interstellar", ms[0].Title)
			assert.Equal(t, float32(8.25), ms[1].KinopoiskRating)
			requireReleased(t, drv, mock)
		})
	}
}

func TestSelectTop(t *testing.T) {
	drv, mock := mockDriver(t, dialect.SQLServer)
	repo, err := repository.New[Movie](drv)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT TOP 3 * FROM [Movies] ORDER BY [KinopoiskVotes] DESC").
		WillReturnRows(sqlmock.NewRows(movieColumns))
	ms, err := repo.GetAll(context.Background(), repository.OrderBy("KinopoiskVotes"), repository.Take(3))
	require.NoError(t, err)
	assert.Empty(t, ms)
	requireReleased(t, drv, mock)
}

func TestWhere(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t, dialect.SQLite)
	repo, err := repository.New[Favorite](drv)
	require.NoError(t, err)

	userID, movieID := 5, 7
	p := predicate.And(
		predicate.EQ(predicate.Field("UserId"), predicate.Var(&userID)),
		predicate.EQ(predicate.Field("MovieId"), predicate.Var(&movieID)),
	)
	mock.ExpectQuery(`SELECT * FROM "UserFavorites" WHERE (("UserId" = ?) AND ("MovieId" = ?))`).
		WithArgs(int64(5), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"Id", "UserId", "MovieId"}).AddRow(int64(1), int64(5), int64(7)))
	fs, err := repo.Where(ctx, p)
	require.NoError(t, err)
	require.Len(t, fs, 1)
	assert.Equal(t, &Favorite{Id: 1, UserId: 5, MovieId: 7}, fs[0])

	mock.ExpectQuery(`SELECT * FROM "UserFavorites" WHERE (("UserId" = ?) AND ("MovieId" = ?)) LIMIT 1`).
		WithArgs(int64(5), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"Id", "UserId", "MovieId"}))
	f, err := repo.FirstOrDefault(ctx, p)
	require.NoError(t, err)
	assert.Nil(t, f)

	mock.ExpectQuery(`SELECT * FROM "UserFavorites" WHERE ("MovieId" = ?) LIMIT 1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"Id", "UserId", "MovieId"}).AddRow(int64(2), int64(6), int64(7)))
	f, err = repo.FindBy(ctx, "MovieId", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.Id)
	requireReleased(t, drv, mock)
}

func TestWhereUnrecoverable(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t, dialect.Postgres)
	repo, err := repository.New[Movie](drv)
	require.NoError(t, err)

	_, err = repo.Where(ctx, predicate.NEQ(predicate.Field("Title"), predicate.Value("x")))
	require.Error(t, err)
	assert.True(t, tabula.IsUnsupportedOperator(err))

	_, err = repo.FirstOrDefault(ctx, predicate.FieldEQ("Rating", 1))
	require.Error(t, err)
	assert.True(t, tabula.IsShapeError(err), "unknown field")

	_, err = repo.GetAll(ctx, repository.OrderBy("Rating"))
	assert.True(t, tabula.IsShapeError(err))

	_, err = repo.GetAll(ctx, repository.Filter("Title = @title", nil))
	assert.True(t, tabula.IsShapeError(err), "undefined filter parameter")

	_, err = repo.Table("Movies; DROP TABLE Users").GetAll(ctx)
	assert.True(t, tabula.IsShapeError(err))
	requireReleased(t, drv, mock)
}

func TestSearch(t *testing.T) {
	drv, mock := mockDriver(t, dialect.Postgres)
	repo, err := repository.New[Movie](drv)
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT * FROM "Movies" WHERE "Title" LIKE $1 ESCAPE '!'`).
		WithArgs("%50!%%").
		WillReturnRows(sqlmock.NewRows(movieColumns).AddRow(int64(1), "50% Off", 5.0, int64(3), "USA"))
	ms, err := repo.Search(context.Background(), "50%")
	require.NoError(t, err)
	require.Len(t, ms, 1)

	mock.ExpectQuery(`SELECT * FROM "Movies" WHERE "Country" LIKE $1 ESCAPE '!'`).
		WithArgs("%US%").
		WillReturnRows(sqlmock.NewRows(movieColumns))
	ms, err = repo.SearchIn(context.Background(), "Country", "US")
	require.NoError(t, err)
	assert.Empty(t, ms)
	requireReleased(t, drv, mock)
}

func TestUpdateDelete(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t, dialect.Postgres)
	repo, err := repository.New[Movie](drv)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE "Movies" SET "Id" = $1, "Title" = $2, "KinopoiskRating" = $3, "KinopoiskVotes" = $4, "Country" = $5 WHERE "Id" = $1`).
		WithArgs(int64(7), "Tenet", 7.5, int64(10), "UK").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(ctx, 7, &Movie{Title: "Tenet", KinopoiskRating: 7.5, KinopoiskVotes: 10, Country: "UK"}))

	mock.ExpectExec(`DELETE FROM "Movies" WHERE "Id" = $1`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(ctx, 7))

	mock.ExpectExec(`DELETE FROM "Movies" WHERE "Id" = $1`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.Delete(ctx, 7), "lenient delete of a missing row")

	mock.ExpectExec(`DELETE FROM "Movies" WHERE "Id" = $1`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.Strict().Delete(ctx, 7)
	assert.True(t, tabula.IsNotFound(err))

	mock.ExpectExec(`UPDATE "Movies" SET "Id" = $1, "Title" = $2, "KinopoiskRating" = $3, "KinopoiskVotes" = $4, "Country" = $5 WHERE "Id" = $1`).
		WillReturnError(errors.New("deadlock detected"))
	err = repo.Strict().Update(ctx, 7, &Movie{})
	require.Error(t, err)
	var eerr *tabula.ExecutionError
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, repository.OpUpdate, eerr.Op)
	assert.Equal(t, "Movies", eerr.Table)
	assert.NotEmpty(t, eerr.CallID)
	assert.ErrorIs(t, err, tabula.ErrExecution)
	requireReleased(t, drv, mock)
}

func TestUpdateSQLServer(t *testing.T) {
	drv, mock := mockDriver(t, dialect.SQLServer)
	repo, err := repository.New[Favorite](drv)
	require.NoError(t, err)
	mock.ExpectExec("UPDATE [UserFavorites] SET [UserId] = @UserId, [MovieId] = @MovieId WHERE [Id] = @Id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Strict().Update(context.Background(), 3, &Favorite{UserId: 1, MovieId: 2}))
	requireReleased(t, drv, mock)
}

func TestMappingErrors(t *testing.T) {
	ctx := context.Background()
	const query = `SELECT * FROM "Movies" WHERE "Id" = $1`
	drv, mock := mockDriver(t, dialect.Postgres)
	logger, buf := bufferLogger()
	repo, err := repository.New[Movie](drv, repository.WithLogger(logger))
	require.NoError(t, err)
	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(movieColumns).AddRow(int64(7), "Inception", 8.5, "many", nil)
	}

	mock.ExpectQuery(query).WithArgs(int64(7)).WillReturnRows(row())
	m, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, &Movie{Id: 7, Title: "Inception", KinopoiskRating: 8.5}, m)
	assert.Contains(t, buf.String(), "cannot map column")
	assert.Contains(t, buf.String(), "field=KinopoiskVotes")
	assert.Contains(t, buf.String(), "column is null")

	mock.ExpectQuery(query).WithArgs(int64(7)).WillReturnRows(row())
	m, err = repo.Strict().GetByID(ctx, 7)
	require.Error(t, err)
	assert.True(t, tabula.IsMappingError(err))
	assert.Equal(t, "Inception", m.Title, "remaining fields mapped")
	requireReleased(t, drv, mock)
}

func TestExecutionErrors(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t, dialect.Postgres)
	logger, buf := bufferLogger()
	repo, err := repository.New[Movie](drv, repository.WithLogger(logger))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT * FROM "Movies"`).WillReturnError(errors.New("relation does not exist"))
	ms, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, ms)
	assert.Contains(t, buf.String(), "op=get_all")

	mock.ExpectQuery(`SELECT * FROM "Movies"`).
		WillReturnRows(sqlmock.NewRows(movieColumns).AddRow(int64(1), "A", 1.0, int64(1), "X").RowError(0, errors.New("cursor lost")))
	_, err = repo.Strict().GetAll(ctx)
	require.Error(t, err)
	assert.True(t, tabula.IsExecutionError(err))
	requireReleased(t, drv, mock)

	failing, err := repository.New[Movie](failingDriver{dialect: dialect.SQLite})
	require.NoError(t, err)
	m, err := failing.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, m)
	_, err = failing.Strict().GetByID(ctx, 1)
	assert.True(t, tabula.IsExecutionError(err))
}

func TestNew(t *testing.T) {
	drv, _ := mockDriver(t, "postgresql")
	repo, err := repository.New[Favorite](drv, repository.WithTable("Favorites"))
	require.NoError(t, err)
	assert.Equal(t, "Favorites", repo.TableName())
	assert.Equal(t, "UserFavorites", repo.Descriptor().Table)
	assert.Equal(t, "Films", repo.Table("Films").TableName())
	assert.Equal(t, "Favorites", repo.TableName(), "Table returns a copy")
	assert.Same(t, repo.Strict(), repo.Strict().Lenient().Strict())

	_, err = repository.New[Favorite](drv, repository.WithTable("bad name"))
	assert.True(t, tabula.IsShapeError(err))

	_, err = repository.New[Favorite](failingDriver{dialect: "oracle"})
	require.Error(t, err)
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	const query = `SELECT * FROM "Movies" WHERE "Id" = $1`
	drv, mock := mockDriver(t, dialect.Postgres)
	repo, err := repository.New[Movie](drv, repository.WithCache(cache.New(16, time.Minute), 0))
	require.NoError(t, err)

	mock.ExpectQuery(query).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(movieColumns).AddRow(int64(7), "Inception", 8.5, int64(1), "USA"))
	first, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, first, second, "second read served from cache")
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec(`DELETE FROM "Movies" WHERE "Id" = $1`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(ctx, 7))
	mock.ExpectQuery(query).WithArgs(int64(7)).WillReturnRows(sqlmock.NewRows(movieColumns))
	m, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, m, "write invalidated the cached read")
	requireReleased(t, drv, mock)
}

func TestReleaseFailure(t *testing.T) {
	drv, mock := mockDriver(t, dialect.Postgres)
	h := &traceHandler{}
	repo, err := repository.New[Movie](unclosableDriver{drv}, repository.WithLogger(slog.New(h)))
	require.NoError(t, err)

	tests := []struct {
		name   string
		expect func()
		run    func(context.Context) error
	}{
		{
			name: "Delete",
			expect: func() {
				mock.ExpectExec(`DELETE FROM "Movies" WHERE "Id" = $1`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
			},
			run: func(ctx context.Context) error { return repo.Strict().Delete(ctx, 7) },
		},
		{
			name: "GetAll",
			expect: func() {
				mock.ExpectQuery(`SELECT * FROM "Movies"`).WillReturnRows(sqlmock.NewRows(movieColumns))
			},
			run: func(ctx context.Context) error {
				_, err := repo.Strict().GetAll(ctx)
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.WithValue(context.Background(), traceKey{}, tt.name)
			tt.expect()
			err := tt.run(ctx)
			assert.ErrorIs(t, err, errClose)
			trace, ok := h.trace("cannot release connection")
			require.True(t, ok)
			assert.Equal(t, tt.name, trace, "warning carries the operation context")
		})
	}
	requireReleased(t, drv, mock)
}
