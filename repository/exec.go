package repository

import (
	"context"
	stdsql "database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/cache"
	"github.com/syssam/tabula/dialect/sql"
)

// Operation names used in logs, errors and cache keys.
const (
	OpCreate         = "create"
	OpGetByID        = "get_by_id"
	OpGetAll         = "get_all"
	OpSearch         = "search"
	OpUpdate         = "update"
	OpDelete         = "delete"
	OpWhere          = "where"
	OpFirstOrDefault = "first_or_default"
)

// call carries the context of one operation.
type call struct {
	op  string
	id  string
	log *slog.Logger
}

func (s *Strict[T, P]) begin(op string) *call {
	id := uuid.NewString()
	return &call{op: op, id: id, log: s.log.With("op", op, "table", s.table, "call_id", id)}
}

// acquire takes the connection of one operation.
func (s *Strict[T, P]) acquire(ctx context.Context, c *call) (sql.Conn, error) {
	conn, err := s.drv.Acquire(ctx)
	if err != nil {
		return nil, s.execError(ctx, c, "", err)
	}
	return conn, nil
}

// release closes conn and joins a close failure into err.
func release(ctx context.Context, c *call, conn sql.Conn, err *error) {
	if cerr := conn.Close(); cerr != nil {
		c.log.WarnContext(ctx, "cannot release connection", "err", cerr)
		*err = errors.Join(*err, cerr)
	}
}

// closeRows closes rows and joins a close failure into err.
func closeRows(rows *stdsql.Rows, err *error) {
	if cerr := rows.Close(); cerr != nil {
		*err = errors.Join(*err, cerr)
	}
}

func (s *Strict[T, P]) query(ctx context.Context, c *call, conn sql.Conn, st sql.Statement) (*stdsql.Rows, string, error) {
	q, args, err := s.bind(st)
	if err != nil {
		return nil, "", err
	}
	rows, err := conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, q, s.execError(ctx, c, q, err)
	}
	return rows, q, nil
}

func (s *Strict[T, P]) exec(ctx context.Context, c *call, conn sql.Conn, st sql.Statement) (sql.Result, string, error) {
	q, args, err := s.bind(st)
	if err != nil {
		return nil, "", err
	}
	res, err := conn.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, q, s.execError(ctx, c, q, err)
	}
	return res, q, nil
}

// bind rewrites st for the dialect. A statement referencing an undefined
// parameter is a shape error.
func (s *Strict[T, P]) bind(st sql.Statement) (string, []any, error) {
	q, args, err := s.b.Bind(st)
	if err != nil {
		return "", nil, tabula.NewShapeError(s.desc.Name, "", err.Error())
	}
	return q, args, nil
}

// execError wraps and logs a driver failure.
func (s *Strict[T, P]) execError(ctx context.Context, c *call, q string, err error) error {
	attrs := []any{"err", err}
	if q != "" {
		attrs = append(attrs, "query", q)
	}
	if k := sql.ClassifyConstraint(err); k != sql.ConstraintNone {
		attrs = append(attrs, "constraint", string(k))
	}
	c.log.ErrorContext(ctx, "statement failed", attrs...)
	e := tabula.NewExecutionError(c.op, s.table, q, err)
	e.CallID = c.id
	return e
}

// mapper returns a row mapper logging with the call attributes.
func (s *Strict[T, P]) mapper(c *call) *sql.Mapper {
	return sql.NewMapper(s.desc, c.log)
}

// scanError separates mapping failures, returned as they are, from
// cursor failures, wrapped as execution errors.
func (s *Strict[T, P]) scanError(ctx context.Context, c *call, q string, err error) error {
	if err == nil || tabula.IsMappingError(err) {
		return err
	}
	return s.execError(ctx, c, q, err)
}

func (s *Strict[T, P]) cacheKey(op string, st sql.Statement, orderBy string, take int) tabula.CacheKey {
	return tabula.CacheKey{
		Table:      s.table,
		Operation:  op,
		Predicates: st.Query,
		Args:       st.Params.Values(),
		OrderBy:    orderBy,
		Limit:      take,
	}
}

// cached loads a cached result into dst and reports whether it was found.
func (s *Strict[T, P]) cached(ctx context.Context, c *call, key tabula.CacheKey, dst any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key.String())
	if err != nil {
		c.log.WarnContext(ctx, "cache get failed", "err", err)
		return false
	}
	if data == nil {
		return false
	}
	if err := cache.Unmarshal(data, dst); err != nil {
		c.log.WarnContext(ctx, "cache decode failed", "err", err)
		return false
	}
	c.log.DebugContext(ctx, "cache hit")
	return true
}

func (s *Strict[T, P]) store(ctx context.Context, c *call, key tabula.CacheKey, v any) {
	if s.cache == nil {
		return
	}
	data, err := cache.Marshal(v)
	if err != nil {
		c.log.WarnContext(ctx, "cache encode failed", "err", err)
		return
	}
	if err := s.cache.Set(ctx, key.String(), data, s.ttl); err != nil {
		c.log.WarnContext(ctx, "cache set failed", "err", err)
	}
}

// invalidate drops every cached read of the table.
func (s *Strict[T, P]) invalidate(ctx context.Context, c *call) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, tabula.TablePrefix(s.table)); err != nil {
		c.log.WarnContext(ctx, "cache invalidation failed", "err", err)
	}
}
