package intervals

import (
	"math/big"
	"strings"
)

// Node is a node in an expression tree. The node kinds are closed: Var,
// Const, Sum, Product, Pow, Sin, Cos, and Exp have interval rules, and Lit,
// Empty, and Call are values and applications that Evaluate leaves as they
// are. Nodes are never modified after construction.
type Node interface {
	String() string
	fmt(b *strings.Builder, square bool)
}

// Var is a variable, bound to a value by name during evaluation.
type Var struct {
	Name string
}

// Const is an exact rational constant.
type Const struct {
	Val *big.Rat
}

// Sum is the sum of two or more terms.
type Sum struct {
	Terms []Node
}

// Product is the product of two or more factors.
type Product struct {
	Factors []Node
}

// Pow is Base raised to the power Exp. Exp must reduce to a scalar.
type Pow struct {
	Base, Exp Node
}

// Sin is the sine of Arg.
type Sin struct {
	Arg Node
}

// Cos is the cosine of Arg.
type Cos struct {
	Arg Node
}

// Exp is e raised to the power Arg.
type Exp struct {
	Arg Node
}

// Lit is a literal value, e.g. an already evaluated interval. A literal
// Interval whose bounds coincide is a single point and evaluates to a Scalar.
type Lit struct {
	Val Value
}

// Empty is the empty set. It is the neutral element of sums and products and
// is dropped from their operands.
type Empty struct{}

// Call is an application of a function that has no interval rule, like ln.
// Evaluate returns calls unchanged as Symbolic values; a Context evaluates
// them with Fn.
type Call struct {
	Name string
	Fn   Func
	Args []Node
}

// Rat creates a constant p/q. Panics if q is zero.
func Rat(p, q int64) *Const {
	return &Const{Val: big.NewRat(p, q)}
}

func (n *Var) String() string     { return nodeString(n) }
func (n *Const) String() string   { return nodeString(n) }
func (n *Sum) String() string     { return nodeString(n) }
func (n *Product) String() string { return nodeString(n) }
func (n *Pow) String() string     { return nodeString(n) }
func (n *Sin) String() string     { return nodeString(n) }
func (n *Cos) String() string     { return nodeString(n) }
func (n *Exp) String() string     { return nodeString(n) }
func (n *Lit) String() string     { return nodeString(n) }
func (n *Empty) String() string   { return nodeString(n) }
func (n *Call) String() string    { return nodeString(n) }

func nodeString(n Node) string {
	var b strings.Builder
	n.fmt(&b, false)
	return b.String()
}

// brackets gets the grouping runes for a nesting level. Nested groups
// alternate between round and square brackets.
func brackets(square bool) (l, r byte) {
	if square {
		return '[', ']'
	}
	return '(', ')'
}

func (n *Var) fmt(b *strings.Builder, square bool) {
	b.WriteString(n.Name)
}

func (n *Const) fmt(b *strings.Builder, square bool) {
	b.WriteString(n.Val.RatString())
}

func (n *Lit) fmt(b *strings.Builder, square bool) {
	if n.Val == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteString(n.Val.String())
}

func (n *Empty) fmt(b *strings.Builder, square bool) {
	b.WriteString("∅")
}

func (n *Sum) fmt(b *strings.Builder, square bool) {
	fmtjoin(b, square, " + ", n.Terms)
}

func (n *Product) fmt(b *strings.Builder, square bool) {
	fmtjoin(b, square, " * ", n.Factors)
}

func (n *Pow) fmt(b *strings.Builder, square bool) {
	fmtjoin(b, square, " ^ ", []Node{n.Base, n.Exp})
}

func (n *Sin) fmt(b *strings.Builder, square bool) {
	b.WriteString("sin")
	fmtjoin(b, square, ", ", []Node{n.Arg})
}

func (n *Cos) fmt(b *strings.Builder, square bool) {
	b.WriteString("cos")
	fmtjoin(b, square, ", ", []Node{n.Arg})
}

func (n *Exp) fmt(b *strings.Builder, square bool) {
	b.WriteString("exp")
	fmtjoin(b, square, ", ", []Node{n.Arg})
}

func (n *Call) fmt(b *strings.Builder, square bool) {
	b.WriteString(n.Name)
	fmtjoin(b, square, ", ", n.Args)
}

// fmtjoin writes a bracketed list of nodes separated by sep.
func fmtjoin(b *strings.Builder, square bool, sep string, nodes []Node) {
	l, r := brackets(square)
	b.WriteByte(l)
	for i, n := range nodes {
		if i > 0 {
			b.WriteString(sep)
		}
		if n == nil {
			b.WriteString("<nil>")
			continue
		}
		n.fmt(b, !square)
	}
	b.WriteByte(r)
}

// walk calls f on n and each of its descendants in prefix order.
func walk(n Node, f func(Node)) {
	if n == nil {
		return
	}
	f(n)
	switch n := n.(type) {
	case *Sum:
		for _, t := range n.Terms {
			walk(t, f)
		}
	case *Product:
		for _, t := range n.Factors {
			walk(t, f)
		}
	case *Pow:
		walk(n.Base, f)
		walk(n.Exp, f)
	case *Sin:
		walk(n.Arg, f)
	case *Cos:
		walk(n.Arg, f)
	case *Exp:
		walk(n.Arg, f)
	case *Call:
		for _, t := range n.Args {
			walk(t, f)
		}
	}
}

// Vars returns the sorted names of the variables in an expression tree.
func Vars(n Node) []string {
	seen := make(map[string]bool)
	var names []string
	walk(n, func(n Node) {
		if v, ok := n.(*Var); ok && !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
	})
	sortstrs(names)
	return names
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}
