package repository

import (
	"sort"
	"strings"

	"github.com/syssam/tabula/dialect/sql"
	"github.com/syssam/tabula/predicate"
)

// QueryOption shapes the rows returned by GetAll.
type QueryOption func(*query)

type query struct {
	orderBy string
	take    int
	filter  string
	params  sql.Params
	pred    predicate.Node
}

// OrderBy orders rows by the field or column descending.
func OrderBy(column string) QueryOption {
	return func(q *query) { q.orderBy = column }
}

// Take returns at most n rows. Zero or negative means no limit.
func Take(n int) QueryOption {
	return func(q *query) { q.take = n }
}

// Filter restricts rows with a raw SQL condition. Its placeholders are
// written @name and params maps names, with or without the @ prefix, to
// values. The condition is used verbatim; never build it from user input.
//
//	repository.Filter("KinopoiskVotes > @votes", map[string]any{"votes": 1000})
func Filter(clause string, params map[string]any) QueryOption {
	return func(q *query) {
		q.filter = clause
		q.params = q.params[:0]
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			q.params.Add(strings.TrimPrefix(name, sql.ParamPrefix), params[name])
		}
	}
}

// Matching restricts rows with a predicate. It is combined with Filter by AND.
func Matching(p predicate.Node) QueryOption {
	return func(q *query) { q.pred = p }
}

func newQuery(opts []QueryOption) *query {
	q := &query{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}
