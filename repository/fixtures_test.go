package repository_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tabula/dialect/sql"
	"github.com/syssam/tabula/schema/field"
)

type Movie struct {
	Id              int
	Title           string
	KinopoiskRating float32
	KinopoiskVotes  int
	Country         string
}

func (*Movie) Schema() []field.Descriptor {
	return []field.Descriptor{
		field.Int("Id"),
		field.String("Title"),
		field.Float32("KinopoiskRating"),
		field.Int("KinopoiskVotes"),
		field.String("Country"),
	}
}

func (m *Movie) Values() []any {
	return []any{m.Id, m.Title, m.KinopoiskRating, m.KinopoiskVotes, m.Country}
}

func (m *Movie) Pointers() []any {
	return []any{&m.Id, &m.Title, &m.KinopoiskRating, &m.KinopoiskVotes, &m.Country}
}

type Favorite struct {
	Id      int64
	UserId  int
	MovieId int
}

func (*Favorite) Schema() []field.Descriptor {
	return []field.Descriptor{field.Int64("Id"), field.Int("UserId"), field.Int("MovieId")}
}

func (f *Favorite) Values() []any   { return []any{f.Id, f.UserId, f.MovieId} }
func (f *Favorite) Pointers() []any { return []any{&f.Id, &f.UserId, &f.MovieId} }
func (*Favorite) TableName() string { return "UserFavorites" }

var movieColumns = []string{"Id", "Title", "KinopoiskRating", "KinopoiskVotes", "Country"}

// mockDriver returns a driver over sqlmock that matches statements exactly.
func mockDriver(t *testing.T, dialectName string) (*sql.Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sql.OpenDB(dialectName, db), mock
}

// requireReleased asserts that every expectation ran and no connection is in use.
func requireReleased(t *testing.T, drv *sql.Driver, mock sqlmock.Sqlmock) {
	t.Helper()
	require.NoError(t, mock.ExpectationsWereMet())
	require.Zero(t, drv.DB().Stats().InUse, "connection released")
}

// bufferLogger returns a debug-level text logger writing to the returned buffer.
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// failingDriver cannot hand out connections.
type failingDriver struct{ dialect string }

func (d failingDriver) Dialect() string { return d.dialect }

func (failingDriver) Acquire(context.Context) (sql.Conn, error) {
	return nil, errors.New("connection refused")
}

var errClose = errors.New("connection reset")

// unclosableDriver hands out connections of drv whose Close fails.
type unclosableDriver struct{ *sql.Driver }

func (d unclosableDriver) Acquire(ctx context.Context) (sql.Conn, error) {
	conn, err := d.Driver.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return unclosableConn{conn}, nil
}

type unclosableConn struct{ sql.Conn }

func (c unclosableConn) Close() error {
	return errors.Join(c.Conn.Close(), errClose)
}

type traceKey struct{}

// traceHandler records the trace value of the context of every record.
type traceHandler struct {
	mu     sync.Mutex
	traces map[string]any
}

func (*traceHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *traceHandler) WithAttrs([]slog.Attr) slog.Handler     { return h }
func (h *traceHandler) WithGroup(string) slog.Handler          { return h }

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.traces == nil {
		h.traces = make(map[string]any)
	}
	h.traces[r.Message] = ctx.Value(traceKey{})
	return nil
}

func (h *traceHandler) trace(msg string) (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.traces[msg]
	return v, ok
}
