package predicate

import "fmt"

// Op is a predicate operator.
type Op uint8

// Predicate operators. Only EQ, GT, LT, And and Or compile to SQL;
// the others can be built but are rejected by Compile.
const (
	OpEQ Op = iota + 1
	OpNEQ
	OpGT
	OpGTE
	OpLT
	OpLTE
	OpAnd
	OpOr
)

var opNames = [...]string{
	OpEQ:  "EQ",
	OpNEQ: "NEQ",
	OpGT:  "GT",
	OpGTE: "GTE",
	OpLT:  "LT",
	OpLTE: "LTE",
	OpAnd: "AND",
	OpOr:  "OR",
}

// String returns the operator name.
func (o Op) String() string {
	if o > 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// sqlOps holds the SQL spelling of every compilable operator.
var sqlOps = map[Op]string{
	OpEQ:  "=",
	OpGT:  ">",
	OpLT:  "<",
	OpAnd: "AND",
	OpOr:  "OR",
}

// SQL returns the SQL spelling of the operator and whether it compiles.
func (o Op) SQL() (string, bool) {
	s, ok := sqlOps[o]
	return s, ok
}

// Node is an element of a predicate tree.
type Node interface {
	node()
}

// Binary applies Op to two operands.
type Binary struct {
	Op          Op
	Left, Right Node
}

// Member refers either to a field of the row (Field) or to a value captured
// from the caller's scope (Capture), evaluated once at compile time.
type Member struct {
	Field   string
	Capture func() any
}

// Constant is a literal operand. A nil Value compiles to an explicit NULL parameter.
type Constant struct {
	Value any
}

func (Binary) node()   {}
func (Member) node()   {}
func (Constant) node() {}

// Field refers to a field of the row.
func Field(name string) Member {
	return Member{Field: name}
}

// Capture refers to a value produced by fn when the predicate is compiled.
func Capture(fn func() any) Member {
	return Member{Capture: fn}
}

// Var captures the variable p points to. Its value is read at compile time,
// so later assignments are seen by later compilations.
func Var[T any](p *T) Member {
	return Member{Capture: func() any { return *p }}
}

// Value is a constant operand.
func Value(v any) Constant {
	return Constant{Value: v}
}

// EQ returns (l = r).
func EQ(l, r Node) Binary { return Binary{Op: OpEQ, Left: l, Right: r} }

// NEQ returns a not-equal node. It does not compile.
func NEQ(l, r Node) Binary { return Binary{Op: OpNEQ, Left: l, Right: r} }

// GT returns (l > r).
func GT(l, r Node) Binary { return Binary{Op: OpGT, Left: l, Right: r} }

// GTE returns a greater-or-equal node. It does not compile.
func GTE(l, r Node) Binary { return Binary{Op: OpGTE, Left: l, Right: r} }

// LT returns (l < r).
func LT(l, r Node) Binary { return Binary{Op: OpLT, Left: l, Right: r} }

// LTE returns a less-or-equal node. It does not compile.
func LTE(l, r Node) Binary { return Binary{Op: OpLTE, Left: l, Right: r} }

// And joins the nodes left to right: And(a, b, c) is ((a AND b) AND c).
func And(l, r Node, more ...Node) Binary {
	return fold(OpAnd, l, r, more)
}

// Or joins the nodes left to right: Or(a, b, c) is ((a OR b) OR c).
func Or(l, r Node, more ...Node) Binary {
	return fold(OpOr, l, r, more)
}

func fold(op Op, l, r Node, more []Node) Binary {
	b := Binary{Op: op, Left: l, Right: r}
	for _, n := range more {
		b = Binary{Op: op, Left: b, Right: n}
	}
	return b
}

// FieldEQ returns (field = v).
func FieldEQ(name string, v any) Binary { return EQ(Field(name), Value(v)) }

// FieldGT returns (field > v).
func FieldGT(name string, v any) Binary { return GT(Field(name), Value(v)) }

// FieldLT returns (field < v).
func FieldLT(name string, v any) Binary { return LT(Field(name), Value(v)) }
