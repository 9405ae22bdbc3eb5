package intervals

import (
	"strconv"
)

// Bindings maps variable names to the intervals or scalars they range over.
// Evaluate never modifies bindings.
type Bindings map[string]Value

// Evaluate computes the natural interval extension of an expression. The
// result bounds every value the expression takes as each bound variable
// ranges independently over its value.
//
// Variables absent from b, and nodes with no interval rule (Call, and Empty
// outside a sum or product), evaluate to themselves as Symbolic values, and
// an operation with a Symbolic operand is Symbolic with its reducible
// operands replaced by their values. Undefined operands make the enclosing
// operation Undefined.
//
// The error is an *OperandsError if a sum or product has no operands other
// than Empty, or an *ExponentError if an exponent evaluates to an interval
// rather than a scalar.
func Evaluate(n Node, b Bindings) (Value, error) {
	switch n := n.(type) {
	case nil:
		panic("intervals: Evaluate on nil node")
	case *Var:
		if v, ok := b[n.Name]; ok {
			return collapse(v), nil
		}
		return Symbolic{Node: n}, nil
	case *Const:
		f, _ := n.Val.Float64()
		return Scalar(f), nil
	case *Lit:
		return literal(n), nil
	case *Sum:
		ops, err := operands("sum", n.Terms, b)
		if err != nil {
			return nil, err
		}
		return apply(ops, add, func(v []Node) Node { return &Sum{Terms: v} }), nil
	case *Product:
		ops, err := operands("product", n.Factors, b)
		if err != nil {
			return nil, err
		}
		return apply(ops, mul, func(v []Node) Node { return &Product{Factors: v} }), nil
	case *Pow:
		base, err := Evaluate(n.Base, b)
		if err != nil {
			return nil, err
		}
		e, err := Evaluate(n.Exp, b)
		if err != nil {
			return nil, err
		}
		if iv, ok := e.(Interval); ok {
			return nil, &ExponentError{Exp: iv}
		}
		r := apply([]Value{base, e}, func(v []Value) Value { return pow(v[0], v[1]) }, func(v []Node) Node {
			return &Pow{Base: v[0], Exp: v[1]}
		})
		return r, nil
	case *Sin:
		return unary(n.Arg, b, sin, func(v Node) Node { return &Sin{Arg: v} })
	case *Cos:
		return unary(n.Arg, b, cos, func(v Node) Node { return &Cos{Arg: v} })
	case *Exp:
		return unary(n.Arg, b, exp, func(v Node) Node { return &Exp{Arg: v} })
	default:
		// Calls and bare empty sets have no interval rule. They pass through
		// unchanged, so unsupported functions show up in Symbolic results
		// rather than as errors.
		return Symbolic{Node: n}, nil
	}
}

// literal gets the value of a literal node.
func literal(n *Lit) Value {
	switch v := n.Val.(type) {
	case nil:
		panic("intervals: literal with nil value")
	case Interval:
		// Single points are scalars even if the literal was built without
		// Span.
		return Span(v.Lo, v.Hi)
	default:
		return v
	}
}

// collapse turns a single-point Interval binding built without Span into its
// Scalar.
func collapse(v Value) Value {
	if iv, ok := v.(Interval); ok && iv.Lo == iv.Hi {
		return Scalar(iv.Lo)
	}
	return v
}

// operands evaluates the operands of a sum or product, skipping empty sets.
func operands(op string, nodes []Node, b Bindings) ([]Value, error) {
	r := make([]Value, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := n.(*Empty); ok {
			continue
		}
		v, err := Evaluate(n, b)
		if err != nil {
			return nil, err
		}
		r = append(r, v)
	}
	if len(r) == 0 {
		return nil, &OperandsError{Op: op}
	}
	return r, nil
}

// unary evaluates a function of one argument.
func unary(arg Node, b Bindings, f func(Value) Value, rebuild func(Node) Node) (Value, error) {
	v, err := Evaluate(arg, b)
	if err != nil {
		return nil, err
	}
	r := apply([]Value{v}, func(v []Value) Value { return f(v[0]) }, func(v []Node) Node { return rebuild(v[0]) })
	return r, nil
}

// apply applies an interval rule f to operands. If any operand is Undefined,
// the result is Undefined. Otherwise, if any operand is Symbolic, the result
// is the node created by rebuild from the operands. f only sees Scalar and
// Interval values.
func apply(ops []Value, f func([]Value) Value, rebuild func([]Node) Node) Value {
	sym := false
	for _, v := range ops {
		switch v.(type) {
		case Undefined:
			return Undefined{}
		case Symbolic:
			sym = true
		}
	}
	if !sym {
		return f(ops)
	}
	nodes := make([]Node, len(ops))
	for i, v := range ops {
		nodes[i] = asNode(v)
	}
	return Symbolic{Node: rebuild(nodes)}
}

// asNode converts a value back to an expression.
func asNode(v Value) Node {
	if s, ok := v.(Symbolic); ok {
		return s.Node
	}
	return &Lit{Val: v}
}

// OperandsError is an error indicating a sum or product with no operands
// after removing empty sets.
type OperandsError struct {
	// Op is "sum" or "product".
	Op string
}

func (err *OperandsError) Error() string {
	return err.Op + " has no operands"
}

// ExponentError is an error indicating an exponent that evaluated to an
// interval. Only scalar exponents are supported.
type ExponentError struct {
	// Exp is the value of the exponent.
	Exp Interval
}

func (err *ExponentError) Error() string {
	return "exponent ranges over " + err.Exp.String() + " (width " + strconv.FormatFloat(err.Exp.Width(), 'g', -1, 64) + "), not a single value"
}
