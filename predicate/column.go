package predicate

// Column is a typed handle on an entity field. The generator declares one
// per field so predicates are checked against the field's Go type.
//
// Usage:
//
//	var Title = predicate.StringColumn("Title")
//	repo.Where(ctx, Title.EQ("Inception"))
//	repo.Where(ctx, predicate.Or(Votes.GT(1000), Rating.GT(8)))
type Column[T any] string

// Name returns the field name.
func (c Column[T]) Name() string { return string(c) }

// Field returns the row member node of the column.
func (c Column[T]) Field() Member { return Field(string(c)) }

// EQ returns a predicate that checks if the field equals the given value.
func (c Column[T]) EQ(v T) Binary { return EQ(c.Field(), Value(v)) }

// NEQ returns a predicate that checks if the field does not equal the given value.
// It does not compile.
func (c Column[T]) NEQ(v T) Binary { return NEQ(c.Field(), Value(v)) }

// GT returns a predicate that checks if the field is greater than the given value.
func (c Column[T]) GT(v T) Binary { return GT(c.Field(), Value(v)) }

// GTE returns a predicate that checks if the field is greater than or equal to the given value.
// It does not compile.
func (c Column[T]) GTE(v T) Binary { return GTE(c.Field(), Value(v)) }

// LT returns a predicate that checks if the field is less than the given value.
func (c Column[T]) LT(v T) Binary { return LT(c.Field(), Value(v)) }

// LTE returns a predicate that checks if the field is less than or equal to the given value.
// It does not compile.
func (c Column[T]) LTE(v T) Binary { return LTE(c.Field(), Value(v)) }

// EQVar returns a predicate comparing the field with the variable p points to,
// read when the predicate is compiled.
func (c Column[T]) EQVar(p *T) Binary { return EQ(c.Field(), Var(p)) }

// IsNull returns a predicate comparing the field with an explicit NULL parameter.
func (c Column[T]) IsNull() Binary { return EQ(c.Field(), Value(nil)) }

// Typed columns for every supported field type.
type (
	StringColumn  = Column[string]
	IntColumn     = Column[int]
	Int32Column   = Column[int32]
	Int64Column   = Column[int64]
	Float32Column = Column[float32]
	Float64Column = Column[float64]
	BoolColumn    = Column[bool]
)
