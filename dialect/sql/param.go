package sql

import "strconv"

// ParamPrefix starts every placeholder in statement text.
const ParamPrefix = "@"

// nullValue is the type of Null.
type nullValue struct{}

func (nullValue) String() string { return "NULL" }

// Null marks a parameter whose value is an explicit SQL NULL.
var Null any = nullValue{}

// IsNull reports whether v is the Null marker or a nil value.
func IsNull(v any) bool {
	return v == nil || v == Null
}

// Param is a named statement parameter. Name excludes the @ prefix.
type Param struct {
	Name  string
	Value any
}

// Params is the ordered parameter table of a statement.
// Names are unique within one statement.
type Params []Param

// Add appends a parameter; a nil value is stored as Null.
func (p *Params) Add(name string, v any) {
	if v == nil {
		v = Null
	}
	*p = append(*p, Param{Name: name, Value: v})
}

// Lookup returns the value of the named parameter.
func (p Params) Lookup(name string) (any, bool) {
	for _, prm := range p {
		if prm.Name == name {
			return prm.Value, true
		}
	}
	return nil, false
}

// Names returns the parameter names in order.
func (p Params) Names() []string {
	names := make([]string, len(p))
	for i, prm := range p {
		names[i] = prm.Name
	}
	return names
}

// Map returns the parameters keyed by placeholder, e.g. "@param0".
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, prm := range p {
		m[ParamPrefix+prm.Name] = prm.Value
	}
	return m
}

// Values returns the parameter values in order, with Null replaced by nil.
func (p Params) Values() []any {
	vs := make([]any, len(p))
	for i, prm := range p {
		vs[i] = driverValue(prm.Value)
	}
	return vs
}

// Counter generates sequential parameter names: param0, param1, ...
type Counter struct {
	prefix string
	n      int
}

// NewCounter returns a counter producing names with the given prefix.
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// Next returns the next parameter name.
func (c *Counter) Next() string {
	name := c.prefix + strconv.Itoa(c.n)
	c.n++
	return name
}

// Statement is a compiled, parameterized statement. It is executed once.
type Statement struct {
	Query  string
	Params Params
}

func driverValue(v any) any {
	if v == Null {
		return nil
	}
	return v
}
