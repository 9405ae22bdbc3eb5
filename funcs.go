package intervals

import (
	"errors"
	"math"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a function from reals to reals. Evaluate has no interval rule for
// Funcs, so calls to them are passed through as Symbolic values; a Context
// evaluates them at a point.
type Func interface {
	// Call evaluates the function. The function arguments are passed in
	// invoc, which has a length for which CanCall returned true. The function
	// must set r to its result and should not use the value of r otherwise.
	// Call may modify the elements of invoc.
	Call(ctx *Context, invoc []*big.Float, r *big.Float) error

	// CanCall returns whether the function can be called with n arguments.
	// This controls how the expression parser handles instances of this
	// function:
	//
	// 	1.	If a bracketed list of n > 0 expressions follows a function, the
	//		parser treats it as an argument list if CanCall(n). (If n is 1 and
	//		!CanCall(1) and CanCall(0), then the list is a multiplication;
	//		otherwise, it is rejected.)
	//
	// 	2.	If a bare term follows a function and CanCall(1), then the parser
	//		treats the term as an argument to the function. E.g., "ln x" is
	//		parsed as "ln(x)". (If !CanCall(1), then it is a multiplication.)
	CanCall(n int) bool
}

var globalfuncs = map[string]Func{
	"sin":  rule{func(x Node) Node { return &Sin{Arg: x} }},
	"cos":  rule{func(x Node) Node { return &Cos{Arg: x} }},
	"exp":  rule{func(x Node) Node { return &Exp{Arg: x} }},
	"sqrt": rule{func(x Node) Node { return &Pow{Base: x, Exp: Rat(1, 2)} }},

	"ln":  Monadic(ln),
	"log": logfn{},

	"pi": constant(math.Pi),
	"e":  constant(math.E),
}

// rule is a function that has an interval rule. The parser builds its node
// instead of a Call.
type rule struct {
	build func(Node) Node
}

func (f rule) Call(ctx *Context, invoc []*big.Float, r *big.Float) error {
	arg, err := pointNode(invoc[0])
	if err != nil {
		return err
	}
	v, err := ctx.Eval(f.build(arg))
	if err != nil {
		return err
	}
	r.Set(v)
	return nil
}

func (rule) CanCall(n int) bool {
	return n == 1
}

// pointNode converts a float to a node.
func pointNode(x *big.Float) (Node, error) {
	if x.IsInf() {
		f, _ := x.Float64()
		return &Lit{Val: Scalar(f)}, nil
	}
	q, _ := x.Rat(nil)
	return &Const{Val: q}, nil
}

// constant is a named constant. The parser replaces it with a literal.
type constant float64

func (c constant) Call(ctx *Context, invoc []*big.Float, r *big.Float) error {
	r.SetFloat64(float64(c))
	return nil
}

func (constant) CanCall(n int) bool {
	return n == 0
}

type monadic struct {
	f func(out, in *big.Float) *big.Float
}

func (m monadic) Call(ctx *Context, invoc []*big.Float, r *big.Float) (err error) {
	in := invoc[0]
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err = r.(error) // panic if not error
		if errors.As(err, &DomainError{}) || errors.As(err, &big.ErrNaN{}) {
			return
		}
		panic(err)
	}()
	r.SetPrec(ctx.Prec())
	m.f(r, in)
	return nil
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable into a Func. f must set out to its
// result, to the precision of out; its return value is always ignored. If f
// is called on an argument outside f's domain, it should panic with an error
// of type DomainError or big.ErrNaN, or that unwraps to one.
func Monadic(f func(out, in *big.Float) *big.Float) Func {
	return monadic{f}
}

type niladic struct {
	f func(out *big.Float) *big.Float
}

func (n niladic) Call(ctx *Context, invoc []*big.Float, r *big.Float) error {
	r.SetPrec(ctx.Prec())
	n.f(r)
	return nil
}

func (n niladic) CanCall(k int) bool {
	return k == 0
}

// Niladic wraps a function of zero variables, generally a function which
// computes a constant, into a Func. f must set out to its result; its return
// value is always ignored. Unlike Monadic, the wrapped function is expected
// never to panic.
func Niladic(f func(out *big.Float) *big.Float) Func {
	return niladic{f}
}

// ln is the natural logarithm.
func ln(out, in *big.Float) *big.Float {
	if in.Sign() <= 0 {
		panic(DomainError{X: in, Func: "ln"})
	}
	return bigfloat.Log(out, in)
}

// logfn is the logarithm with an optional base, 10 by default.
type logfn struct{}

func (logfn) Call(ctx *Context, invoc []*big.Float, r *big.Float) error {
	base := new(big.Float).SetPrec(ctx.Prec()).SetInt64(10)
	if len(invoc) == 2 {
		base = invoc[1]
		if base.Sign() <= 0 || base.Cmp(big.NewFloat(1)) == 0 {
			return DomainError{X: base, Arg: 2, Func: "log"}
		}
	}
	if invoc[0].Sign() <= 0 {
		return DomainError{X: invoc[0], Arg: 1, Func: "log"}
	}
	r.SetPrec(ctx.Prec())
	bigfloat.Log(r, invoc[0])
	d := bigfloat.Log(new(big.Float).SetPrec(ctx.Prec()), base)
	r.Quo(r, d)
	return nil
}

func (logfn) CanCall(n int) bool {
	return n == 1 || n == 2
}

// DomainError is an error returned when a function is called on arguments
// outside its domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}
