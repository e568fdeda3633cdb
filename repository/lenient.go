package repository

import (
	"context"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/predicate"
)

// settle drops every error that was already logged or that means "no rows".
func settle(err error) error {
	if tabula.IsUnrecoverable(err) {
		return err
	}
	return nil
}

// Create inserts e and writes the generated identity back into it. It returns
// nil when the insert fails.
func (r *Repository[T, P]) Create(ctx context.Context, e *T) (*T, error) {
	e, err := r.s.Create(ctx, e)
	if err := settle(err); err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID returns the entity with the given identity, or nil.
func (r *Repository[T, P]) GetByID(ctx context.Context, id int64) (*T, error) {
	e, err := r.s.GetByID(ctx, id)
	if err := settle(err); err != nil {
		return nil, err
	}
	return e, nil
}

// GetAll returns the rows selected by opts.
func (r *Repository[T, P]) GetAll(ctx context.Context, opts ...QueryOption) ([]*T, error) {
	es, err := r.s.GetAll(ctx, opts...)
	if err := settle(err); err != nil {
		return nil, err
	}
	return es, nil
}

// Search returns the rows whose search field contains term.
func (r *Repository[T, P]) Search(ctx context.Context, term string) ([]*T, error) {
	es, err := r.s.Search(ctx, term)
	if err := settle(err); err != nil {
		return nil, err
	}
	return es, nil
}

// SearchIn returns the rows whose column contains term.
func (r *Repository[T, P]) SearchIn(ctx context.Context, column, term string) ([]*T, error) {
	es, err := r.s.SearchIn(ctx, column, term)
	if err := settle(err); err != nil {
		return nil, err
	}
	return es, nil
}

// Update overwrites the row with the given identity.
func (r *Repository[T, P]) Update(ctx context.Context, id int64, e *T) error {
	return settle(r.s.Update(ctx, id, e))
}

// Delete removes the row with the given identity.
func (r *Repository[T, P]) Delete(ctx context.Context, id int64) error {
	return settle(r.s.Delete(ctx, id))
}

// Where returns the rows matching p.
func (r *Repository[T, P]) Where(ctx context.Context, p predicate.Node) ([]*T, error) {
	es, err := r.s.Where(ctx, p)
	if err := settle(err); err != nil {
		return nil, err
	}
	return es, nil
}

// FirstOrDefault returns the first row matching p, or nil.
func (r *Repository[T, P]) FirstOrDefault(ctx context.Context, p predicate.Node) (*T, error) {
	e, err := r.s.FirstOrDefault(ctx, p)
	if err := settle(err); err != nil {
		return nil, err
	}
	return e, nil
}

// FindBy returns the first row whose field or column equals value, or nil.
func (r *Repository[T, P]) FindBy(ctx context.Context, column string, value any) (*T, error) {
	e, err := r.s.FindBy(ctx, column, value)
	if err := settle(err); err != nil {
		return nil, err
	}
	return e, nil
}
