// Package intervals computes interval natural extensions of real expressions.
//
// Given an expression and an interval for each of its variables, Evaluate
// finds an interval containing every value the expression takes as each
// variable ranges over its interval. Sums and products use exact interval
// arithmetic; powers, sine, cosine, and exp use monotonicity and periodicity
// of the function to avoid the gross overestimates of naive evaluation. When
// the bounds of a result coincide, the result is a Scalar instead of an
// Interval. A power that has no real value over part of its domain, like the
// square root of [-4, -1], is Undefined.
//
// Each occurrence of a variable ranges independently over its interval, so
// expressions like "x - x" evaluate to intervals wider than their true range.
// This is the dependency problem of interval arithmetic; rewriting the
// expression so each variable appears once gives the tightest bounds.
//
// The syntax of parsed expressions is intended to be similar to math you'd
// write in your notes. "2 x y" is a multiplication of three terms. So is
// "{2}[x](y)" (although not "2 xy"). "-2^2^n" is the same as "-(2^(2^n))",
// where "a^b" is exponentiation. Variables that have no binding stay in the
// result as a Symbolic expression, so an expression can be evaluated over a
// subset of its variables.
package intervals
