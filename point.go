package intervals

import (
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// Context is a context for evaluating expressions at a single point with
// arbitrary-precision floats. It holds the value of each variable. A Context
// may be used concurrently for evaluation, but not while calling Set.
type Context struct {
	names map[string]*big.Float
	prec  uint
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  *big.Float
	}
	varsopt map[string]*big.Float
	precopt uint
)

func (varopt) ctxOption()  {}
func (varsopt) ctxOption() {}
func (precopt) ctxOption() {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val *big.Float) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]*big.Float) ContextOption {
	return varsopt(vars)
}

// Prec sets the precision of calculations.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// NewContext creates a new evaluation context. If no precision is given, the
// default is 64.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{prec: 64}
	return ctx.Clone(opts...)
}

// Set sets the value of a variable. Returns ctx for chaining.
func (ctx *Context) Set(name string, value *big.Float) *Context {
	if ctx.names == nil {
		ctx.names = make(map[string]*big.Float)
	}
	ctx.names[name] = new(big.Float).SetPrec(ctx.prec).Set(value)
	return ctx
}

// Lookup returns a copy of the value of a variable. If there is no such
// variable in the context, then the result is nil.
func (ctx *Context) Lookup(name string) *big.Float {
	v := ctx.names[name]
	if v == nil {
		return nil
	}
	return new(big.Float).Copy(v)
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Clone creates a copy of a context and applies options to it.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		names: make(map[string]*big.Float, len(ctx.names)),
		prec:  ctx.prec,
	}
	// Loop backward so we apply the last precision.
	for i := len(opts) - 1; i >= 0; i-- {
		if p, ok := opts[i].(precopt); ok {
			n.prec = uint(p)
			break
		}
	}
	// We always need a copy of the variables in case of Set. If we have the
	// same precision, we can just copy pointers.
	for name, val := range ctx.names {
		if n.prec != ctx.prec {
			val = new(big.Float).SetPrec(n.prec).Set(val)
		}
		n.names[name] = val
	}
	for _, opt := range opts {
		switch opt := opt.(type) {
		case nil, precopt:
			// Already done. Do nothing.
		case varopt:
			n.names[opt.name] = new(big.Float).SetPrec(n.prec).Set(opt.val)
		case varsopt:
			for k, v := range opt {
				n.names[k] = new(big.Float).SetPrec(n.prec).Set(v)
			}
		default:
			panic("intervals: unknown option type")
		}
	}
	return &n
}

// Eval evaluates an expression at the point given by the context's
// variables. Powers use the same real-valued convention as Evaluate. If an
// error occurs, e.g. a missing variable definition or an argument to a
// function is outside the function's domain, then the result is nil.
func (ctx *Context) Eval(n Node) (r *big.Float, err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		// Operations like Inf - Inf panic with ErrNaN.
		e, ok := p.(big.ErrNaN)
		if !ok {
			panic(p)
		}
		r, err = nil, e
	}()
	return ctx.eval(n)
}

func (ctx *Context) float() *big.Float {
	return new(big.Float).SetPrec(ctx.prec)
}

func (ctx *Context) eval(n Node) (*big.Float, error) {
	switch n := n.(type) {
	case nil:
		panic("intervals: Eval on nil node")
	case *Var:
		v := ctx.names[n.Name]
		if v == nil {
			return nil, &NameError{Name: n.Name}
		}
		return ctx.float().Set(v), nil
	case *Const:
		return ctx.float().SetRat(n.Val), nil
	case *Lit:
		s, ok := literal(n).(Scalar)
		if !ok || math.IsNaN(float64(s)) {
			return nil, &PointError{Val: n.Val}
		}
		return ctx.float().SetFloat64(float64(s)), nil
	case *Empty:
		return nil, &PointError{Val: Symbolic{Node: n}}
	case *Sum:
		return ctx.fold("sum", n.Terms, (*big.Float).Add)
	case *Product:
		return ctx.fold("product", n.Factors, mulFloat)
	case *Pow:
		x, err := ctx.eval(n.Base)
		if err != nil {
			return nil, err
		}
		y, err := ctx.eval(n.Exp)
		if err != nil {
			return nil, err
		}
		return ctx.pow(x, y), nil
	case *Sin:
		return ctx.trig(n.Arg, "sin", math.Sin)
	case *Cos:
		return ctx.trig(n.Arg, "cos", math.Cos)
	case *Exp:
		x, err := ctx.eval(n.Arg)
		if err != nil {
			return nil, err
		}
		if x.IsInf() {
			if x.Signbit() {
				return ctx.float(), nil
			}
			return x, nil
		}
		return bigfloat.Exp(ctx.float(), x), nil
	case *Call:
		if n.Fn == nil || !n.Fn.CanCall(len(n.Args)) {
			return nil, &CallError{Func: n.Name, Len: len(n.Args)}
		}
		invoc := make([]*big.Float, len(n.Args))
		for i, a := range n.Args {
			v, err := ctx.eval(a)
			if err != nil {
				return nil, err
			}
			invoc[i] = v
		}
		r := ctx.float()
		if err := n.Fn.Call(ctx, invoc, r); err != nil {
			return nil, err
		}
		return r, nil
	default:
		panic("intervals: invalid node " + n.String())
	}
}

// fold combines the operands of a sum or product, skipping empty sets.
func (ctx *Context) fold(op string, nodes []Node, f func(z, x, y *big.Float) *big.Float) (*big.Float, error) {
	var r *big.Float
	for _, n := range nodes {
		if _, ok := n.(*Empty); ok {
			continue
		}
		v, err := ctx.eval(n)
		if err != nil {
			return nil, err
		}
		if r == nil {
			r = v
			continue
		}
		f(r, r, v)
	}
	if r == nil {
		return nil, &OperandsError{Op: op}
	}
	return r, nil
}

// mulFloat multiplies like (*big.Float).Mul, except that zero times infinity
// is zero, as in interval products.
func mulFloat(z, x, y *big.Float) *big.Float {
	if x.Sign() == 0 || y.Sign() == 0 {
		return z.SetInt64(0)
	}
	return z.Mul(x, y)
}

// trig evaluates sine or cosine. Neither has arbitrary-precision
// implementations available, so they are computed in float64.
func (ctx *Context) trig(arg Node, name string, f func(float64) float64) (*big.Float, error) {
	x, err := ctx.eval(arg)
	if err != nil {
		return nil, err
	}
	if x.IsInf() {
		return nil, DomainError{X: x, Func: name}
	}
	v, _ := x.Float64()
	return ctx.float().SetFloat64(f(v)), nil
}

// maxIntPow is the largest magnitude of an integer exponent computed by
// repeated multiplication.
const maxIntPow = 1 << 10

// pow computes x^y with the same convention for negative bases as
// Evaluate.
func (ctx *Context) pow(x, y *big.Float) *big.Float {
	if y.Sign() == 0 {
		return ctx.float().SetInt64(1)
	}
	if y.IsInt() && !y.IsInf() {
		if k, acc := y.Int64(); acc == big.Exact && -maxIntPow <= k && k <= maxIntPow {
			return ctx.intPow(x, k)
		}
	}
	yf, _ := y.Float64()
	if x.IsInf() || math.IsInf(yf, 0) {
		xf, _ := x.Float64()
		if math.IsInf(yf, 0) {
			return ctx.float().SetFloat64(math.Pow(xf, yf))
		}
		return ctx.float().SetFloat64(realPow(xf, classify(yf)))
	}
	if x.Sign() == 0 {
		if y.Sign() > 0 {
			return ctx.float()
		}
		return ctx.float().SetInf(false)
	}
	e := classify(yf)
	m := bigfloat.Pow(ctx.float(), ctx.float().Abs(x), y)
	if x.Sign() < 0 && !(e.oddDen && !e.oddNum) {
		m.Neg(m)
	}
	return m
}

// intPow computes x^k by repeated squaring.
func (ctx *Context) intPow(x *big.Float, k int64) *big.Float {
	neg := k < 0
	if neg {
		k = -k
	}
	r := ctx.float().SetInt64(1)
	b := ctx.float().Set(x)
	for k > 0 {
		if k%2 == 1 {
			r.Mul(r, b)
		}
		b.Mul(b, b)
		k /= 2
	}
	if !neg {
		return r
	}
	if r.Sign() == 0 {
		return r.SetInf(false)
	}
	return r.Quo(ctx.float().SetInt64(1), r)
}

// EvalString is a shortcut to parse an expression and evaluate it at a point.
func EvalString(src string, opts ...ContextOption) (*big.Float, error) {
	return evalReader(strings.NewReader(src), opts...)
}

func evalReader(src io.RuneScanner, opts ...ContextOption) (*big.Float, error) {
	a, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return NewContext(opts...).Eval(a.Root())
}

// NameError is an error from a lookup for a variable that is missing from the
// evaluation context.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// PointError is an error indicating a value that cannot be evaluated at a
// point, like an interval literal.
type PointError struct {
	// Val is the value that is not a point.
	Val Value
}

func (err *PointError) Error() string {
	return err.Val.String() + " is not a point"
}
