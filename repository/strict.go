package repository

import (
	"context"
	stdsql "database/sql"
	"errors"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/dialect"
	"github.com/syssam/tabula/dialect/sql"
	"github.com/syssam/tabula/predicate"
	"github.com/syssam/tabula/schema/field"
)

var errNoIdentity = errors.New("insert reported no identity")

// Create inserts e and writes the generated identity back into it.
func (s *Strict[T, P]) Create(ctx context.Context, e *T) (_ *T, err error) {
	if e == nil {
		return nil, tabula.NewShapeError(s.desc.Name, "", "nil entity")
	}
	st, err := s.b.Insert(s.desc, s.table, P(e))
	if err != nil {
		return nil, err
	}
	c := s.begin(OpCreate)
	conn, err := s.acquire(ctx, c)
	if err != nil {
		return nil, err
	}
	defer release(ctx, c, conn, &err)
	id, err := s.insert(ctx, c, conn, st)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, c)
	idField := s.desc.Identity()
	if err := field.Assign(P(e).Pointers()[s.desc.ID], id); err != nil {
		c.log.WarnContext(ctx, "cannot map identity", "field", idField.Name, "err", err)
		return e, &tabula.MappingError{Entity: s.desc.Name, Field: idField.Name, Column: idField.StorageName(), Value: id, Err: err}
	}
	return e, nil
}

// insert executes an INSERT and returns the generated identity in one round trip.
func (s *Strict[T, P]) insert(ctx context.Context, c *call, conn sql.Conn, st sql.Statement) (_ any, err error) {
	if s.b.Traits().Identity == dialect.IdentityLastInsertID {
		res, q, err := s.exec(ctx, c, conn, st)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, s.execError(ctx, c, q, err)
		}
		return id, nil
	}
	rows, q, err := s.query(ctx, c, conn, st)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, &err)
	id, err := scanIdentity(rows)
	if err != nil {
		return nil, s.execError(ctx, c, q, err)
	}
	return id, nil
}

// scanIdentity reads the first value of the first non-empty result set.
func scanIdentity(rows *stdsql.Rows) (any, error) {
	for !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		if !rows.NextResultSet() {
			return nil, errNoIdentity
		}
	}
	var id any
	if err := rows.Scan(&id); err != nil {
		return nil, err
	}
	return id, nil
}

// GetByID returns the entity with the given identity.
func (s *Strict[T, P]) GetByID(ctx context.Context, id int64) (*T, error) {
	st, err := s.b.SelectByID(s.desc, s.table, id)
	if err != nil {
		return nil, err
	}
	c := s.begin(OpGetByID)
	key := s.cacheKey(OpGetByID, st, "", 0)
	if hit := new(T); s.cached(ctx, c, key, hit) {
		return hit, nil
	}
	e, err := s.one(ctx, c, st)
	if err != nil {
		return e, err
	}
	if e == nil {
		return nil, tabula.NewNotFoundErrorWithID(s.desc.Name, id)
	}
	s.store(ctx, c, key, e)
	return e, nil
}

// GetAll returns the rows selected by opts, every row without options.
func (s *Strict[T, P]) GetAll(ctx context.Context, opts ...QueryOption) ([]*T, error) {
	return s.list(ctx, OpGetAll, newQuery(opts))
}

// Where returns the rows matching p.
func (s *Strict[T, P]) Where(ctx context.Context, p predicate.Node) ([]*T, error) {
	return s.list(ctx, OpWhere, &query{pred: p})
}

// FirstOrDefault returns the first row matching p.
func (s *Strict[T, P]) FirstOrDefault(ctx context.Context, p predicate.Node) (*T, error) {
	es, err := s.list(ctx, OpFirstOrDefault, &query{pred: p, take: 1})
	if len(es) > 0 {
		return es[0], err
	}
	if err != nil {
		return nil, err
	}
	return nil, tabula.NewNotFoundError(s.desc.Name)
}

// FindBy returns the first row whose field or column equals value.
func (s *Strict[T, P]) FindBy(ctx context.Context, column string, value any) (*T, error) {
	return s.FirstOrDefault(ctx, predicate.FieldEQ(column, value))
}

// Search returns the rows whose search field contains term. Wildcards in
// term match literally; case sensitivity follows the column collation.
func (s *Strict[T, P]) Search(ctx context.Context, term string) ([]*T, error) {
	return s.SearchIn(ctx, "", term)
}

// SearchIn is Search over another text field or column.
func (s *Strict[T, P]) SearchIn(ctx context.Context, column, term string) ([]*T, error) {
	st, err := s.b.Search(s.desc, s.table, column, term)
	if err != nil {
		return nil, err
	}
	c := s.begin(OpSearch)
	return s.cachedAll(ctx, c, st, s.cacheKey(OpSearch, st, "", 0))
}

// Update overwrites every field of the row with the given identity.
func (s *Strict[T, P]) Update(ctx context.Context, id int64, e *T) error {
	if e == nil {
		return tabula.NewShapeError(s.desc.Name, "", "nil entity")
	}
	st, err := s.b.Update(s.desc, s.table, id, P(e))
	if err != nil {
		return err
	}
	return s.write(ctx, OpUpdate, id, st)
}

// Delete removes the row with the given identity.
func (s *Strict[T, P]) Delete(ctx context.Context, id int64) error {
	st, err := s.b.Delete(s.desc, s.table, id)
	if err != nil {
		return err
	}
	return s.write(ctx, OpDelete, id, st)
}

func (s *Strict[T, P]) write(ctx context.Context, op string, id int64, st sql.Statement) (err error) {
	c := s.begin(op)
	conn, err := s.acquire(ctx, c)
	if err != nil {
		return err
	}
	defer release(ctx, c, conn, &err)
	res, _, err := s.exec(ctx, c, conn, st)
	if err != nil {
		return err
	}
	s.invalidate(ctx, c)
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tabula.NewNotFoundErrorWithID(s.desc.Name, id)
	}
	return nil
}

func (s *Strict[T, P]) list(ctx context.Context, op string, q *query) ([]*T, error) {
	st, err := s.selectStatement(q)
	if err != nil {
		return nil, err
	}
	c := s.begin(op)
	return s.cachedAll(ctx, c, st, s.cacheKey(op, st, q.orderBy, q.take))
}

func (s *Strict[T, P]) selectStatement(q *query) (sql.Statement, error) {
	where := q.filter
	params := append(sql.Params(nil), q.params...)
	if q.pred != nil {
		cond, pp, err := predicate.Compile(q.pred,
			predicate.WithQuote(s.b.Quote),
			predicate.WithResolver(s.desc.Column),
			predicate.WithEntity(s.desc.Name),
		)
		if err != nil {
			return sql.Statement{}, err
		}
		if where != "" {
			where = "(" + where + ") AND " + cond
		} else {
			where = cond
		}
		params = append(params, pp...)
	}
	return s.b.Select(s.desc, s.table, sql.SelectOptions{
		OrderBy: q.orderBy,
		Take:    q.take,
		Where:   where,
		Params:  params,
	})
}

func (s *Strict[T, P]) cachedAll(ctx context.Context, c *call, st sql.Statement, key tabula.CacheKey) ([]*T, error) {
	var hit []*T
	if s.cached(ctx, c, key, &hit) {
		return hit, nil
	}
	es, err := s.all(ctx, c, st)
	if err != nil {
		return es, err
	}
	s.store(ctx, c, key, es)
	return es, nil
}

func (s *Strict[T, P]) one(ctx context.Context, c *call, st sql.Statement) (_ *T, err error) {
	conn, err := s.acquire(ctx, c)
	if err != nil {
		return nil, err
	}
	defer release(ctx, c, conn, &err)
	rows, q, err := s.query(ctx, c, conn, st)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, &err)
	e, err := sql.ScanOne[T, P](ctx, rows, s.mapper(c))
	return e, s.scanError(ctx, c, q, err)
}

func (s *Strict[T, P]) all(ctx context.Context, c *call, st sql.Statement) (_ []*T, err error) {
	conn, err := s.acquire(ctx, c)
	if err != nil {
		return nil, err
	}
	defer release(ctx, c, conn, &err)
	rows, q, err := s.query(ctx, c, conn, st)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, &err)
	es, err := sql.ScanAll[T, P](ctx, rows, s.mapper(c))
	return es, s.scanError(ctx, c, q, err)
}
