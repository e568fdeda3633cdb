package sql

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/tabula/schema"
	"github.com/syssam/tabula/schema/field"
)

type movie struct {
	Id              int
	Title           string
	KinopoiskRating float32
	KinopoiskVotes  int
	Series          bool
}

func (*movie) Schema() []field.Descriptor {
	return []field.Descriptor{
		field.Int("Id"),
		field.String("Title"),
		field.Float32("KinopoiskRating"),
		field.Int("KinopoiskVotes"),
		field.Bool("Series"),
	}
}

func (m *movie) Values() []any {
	return []any{m.Id, m.Title, m.KinopoiskRating, m.KinopoiskVotes, m.Series}
}

func (m *movie) Pointers() []any {
	return []any{&m.Id, &m.Title, &m.KinopoiskRating, &m.KinopoiskVotes, &m.Series}
}

func (*movie) TableName() string { return "Movies" }

type marker struct{ Id int }

func (*marker) Schema() []field.Descriptor { return []field.Descriptor{field.Int("Id")} }
func (m *marker) Values() []any            { return []any{m.Id} }
func (m *marker) Pointers() []any          { return []any{&m.Id} }

func movieDesc(t testing.TB) *schema.Descriptor {
	t.Helper()
	d, err := schema.Describe[movie]()
	require.NoError(t, err)
	return d
}

func mustDialect(t testing.TB, name string) *Builder {
	t.Helper()
	b, err := Dialect(name)
	require.NoError(t, err)
	return b
}

// bufferLogger returns a debug-level text logger writing to the returned buffer.
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
