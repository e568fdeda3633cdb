// Package predicate builds boolean predicate trees and compiles them into
// parameterized SQL conditions.
//
// A tree has three node kinds: Binary (an operator and two operands), Member
// (a field of the tested row, or a value captured from the caller) and
// Constant. Row members become column names; every other operand becomes a
// parameter, so values never enter statement text.
//
//	userID := 5
//	p := predicate.And(
//		predicate.EQ(predicate.Field("UserId"), predicate.Var(&userID)),
//		predicate.FieldEQ("MovieId", 7),
//	)
//	where, params, err := predicate.Compile(p)
//	// ((UserId = @param0) AND (MovieId = @param1))   [param0=5 param1=7]
//
// Compile supports EQ, GT, LT, And and Or. NEQ, GTE and LTE can be built
// but fail to compile with *tabula.UnsupportedOperatorError.
package predicate
