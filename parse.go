package intervals

import (
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Expr = num | name | Call | Neg | Plus | Add | Sub | Mul | Div | Pow | '(' Expr ')' | '[' Expr ']' | '{' Expr '}'
// Call = funcname | funcname Expr | funcname ArgList | funcname '^' Expr Call
// ArgList = '(' Expr { ',' Expr } ')' | '[' Expr { ',' Expr } ']' | '{' Expr { ',' Expr } '}'
// Neg = '-' Expr
// Plus = '+' Expr
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr | Expr '×' Expr | Expr Expr
// Div = Expr '/' Expr | Expr '÷' Expr
// Pow = Expr '^' Expr

// Expr is a parsed expression.
type Expr struct {
	// root is the root node of the expression tree.
	root Node
	// names is the list of variable names used in the expression.
	names []string
}

// Root returns the expression tree.
func (e *Expr) Root() Node {
	return e.root
}

// Interval evaluates the expression over the given bindings. It is shorthand
// for Evaluate(e.Root(), b).
func (e *Expr) Interval(b Bindings) (Value, error) {
	return Evaluate(e.root, b)
}

// Eval evaluates the expression at the point given by ctx.
func (e *Expr) Eval(ctx *Context) (*big.Float, error) {
	return ctx.Eval(e.root)
}

// Vars returns the variable names used in the expression.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// String creates a string representation of the parsed expression, with
// alternating round and square brackets grouping each term.
func (e *Expr) String() string {
	return e.root.String()
}

// ParseString is a shortcut to parse an expression from a string.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// Parse parses an expression. The given options are applied in order.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	scan := lex(src)
	p := parsectx{
		names: make(map[string]bool),
	}
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	p.resolveFuncs()
	n, err := parseterm(scan, &p, exprprec)
	if err != nil {
		return nil, err
	}
	tok := scan.must()
	switch tok.kind {
	case tokenEOF:
	case tokenSep:
		if !p.stopcomma {
			return nil, itShouldNotHaveEndedThisWay(tok, -1)
		}
	default:
		return nil, itShouldNotHaveEndedThisWay(tok, -1)
	}
	if n == nil {
		// Only possible when a comma ends the input immediately.
		return nil, &EmptyExpressionError{Col: tok.pos, End: tok.text}
	}
	ex := Expr{
		root:  n,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		ex.names = append(ex.names, k)
	}
	sortstrs(ex.names)
	return &ex, nil
}

// parseterm parses a single term. If there is no error and no implicit
// multiplication is pending in p.resv, then parseterm pushes the last token it
// scans, including EOF. If the input is an empty subexpression, the result is
// nil with no error; callers must create an error in contexts where empty
// subexpressions are illegal.
func parseterm(scan *lexer, p *parsectx, until operator) (Node, error) {
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	for {
		if p.resv != nil {
			// A niladic function was followed by a bracketed term. The parsing
			// here is as if we encountered an open bracket, except that the
			// contents are already parsed and valid.
			if !termprec.moreBinding(until) {
				return n, nil
			}
			n = product(n, p.resv)
			p.resv = nil
			continue
		}
		tok, err := scan.next(p.stopws)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenNum, tokenIdent:
			// (parsed) x -> (parsed) * (x)
			// (parsed) x^(expr) -> (parsed) * (x^(expr))
			// a^(parsed) x -> (a^(parsed)) * (x)
			scan.push(tok)
			if !termprec.moreBinding(until) {
				return n, nil
			}
			rhs, err := parseterm(scan, p, termprec)
			if err != nil {
				return nil, err
			}
			n = product(n, rhs)
		case tokenOp:
			prec := binop(tok.text)
			if prec.join == nil {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, emptyAfter(scan)
			}
			n = prec.join(n, rhs)
		case tokenOpen:
			// Since parselhs parses functions aggressively, this is a
			// multiplication by a bracketed term: 2 (expr) -> (2) * (expr).
			if !termprec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parsebracketed(scan, p, tok)
			if err != nil {
				return nil, err
			}
			n = product(n, rhs)
		case tokenClose, tokenSep, tokenEOF:
			scan.push(tok)
			return n, nil
		default:
			panic("intervals: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first component of a term. I.e., operators are unary,
// any encountered token must be valid as the start of a subexpression, and
// whitespace normally lexed as EOF is ignored.
func parselhs(scan *lexer, p *parsectx, until operator) (Node, error) {
	// Don't use EOF whitespace for LHS.
	tok, err := scan.next("")
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		return number(tok.text), nil
	case tokenIdent:
		fn := p.funcs[tok.text]
		if fn == nil {
			p.names[tok.text] = true
			return &Var{Name: tok.text}, nil
		}
		return parsecall(scan, p, until, fn, tok.text)
	case tokenOp:
		prec := unop(tok.text)
		if prec.unary == nil {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// x^-y -> x^(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, p, prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, emptyAfter(scan)
		}
		return prec.unary(rhs), nil
	case tokenOpen:
		return parsebracketed(scan, p, tok)
	case tokenClose:
		// This might be part of niladic func(), so just let the caller decide
		// what to do.
		scan.push(tok)
		return nil, nil
	case tokenSep:
		if p.stopcomma {
			scan.push(tok)
			return nil, nil
		}
		return nil, &SeparatorError{Col: tok.pos}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("intervals: unknown token: " + tok.String())
	}
}

// parsebracketed parses a complete subexpression following the open bracket
// open, through its matching close bracket.
func parsebracketed(scan *lexer, p *parsectx, open lexToken) (Node, error) {
	match := rightbracket(open.text)
	n, err := parseterm(scan, p, exprprec)
	if err != nil {
		return nil, err
	}
	end := scan.must()
	if end.kind != tokenClose || end.text != closebrackets[match] {
		return nil, itShouldNotHaveEndedThisWay(end, match)
	}
	if n == nil {
		return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
	}
	return n, nil
}

// parsecall parses the arguments to a call of a given Func and builds the
// node for the call.
func parsecall(scan *lexer, p *parsectx, until operator, fn Func, name string) (Node, error) {
	// We respect whitespace here so that pi\nx doesn't string
	// together expressions.
	tok, err := scan.next(p.stopws)
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenOp:
		// Check for e.g. ^2 in cos^2 x. Must be an exponentiation or higher.
		// Since exponentiation is right-associative, func^x^y(z) parses as
		// [func(z)]^(x^y).
		if prec := binop(tok.text); prec.moreBinding(powprec) {
			up, err := parseterm(scan, p, powprec)
			if err != nil {
				return nil, err
			}
			if up == nil {
				return nil, emptyAfter(scan)
			}
			n, err := parsecall(scan, p, until, fn, name)
			if err != nil {
				return nil, err
			}
			return raise(n, up), nil
		}
		// Other than exponentiations, finding an operator is the same as
		// finding a number or identifier.
		fallthrough
	case tokenNum, tokenIdent:
		switch {
		case fn.CanCall(1):
			// Single argument. exp x -> exp(x)
			scan.push(tok)
			if termprec.moreBinding(until) {
				until = termprec
			}
			rhs, err := parseterm(scan, p, until)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, emptyAfter(scan)
			}
			return p.call(name, fn, []Node{rhs}), nil
		case fn.CanCall(0):
			// No argument. pi x -> (pi) * (x)
			scan.push(tok)
			return p.call(name, fn, nil), nil
		default:
			// Any other number of arguments requires brackets.
			return nil, &CallError{Col: tok.pos, Func: name, Len: 1}
		}
	case tokenOpen:
		match := rightbracket(tok.text)
		args, err := parsearglist(scan, p, tok.text)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose {
			panic("intervals: parsearglist ended on " + end.String() + " instead of close bracket")
		}
		if end.text != closebrackets[match] {
			return nil, &BracketError{Col: end.pos, Left: tok.text, Right: end.text}
		}
		if !fn.CanCall(len(args)) {
			if p.resv != nil && fn.CanCall(0) {
				// If fn is niladic, convert from fn(a) to fn()*a. parseterm
				// picks up the reserved term.
				return p.call(name, fn, nil), nil
			}
			p.resv = nil
			return nil, &CallError{Col: tok.pos, Func: name, Len: len(args)}
		}
		p.resv = nil
		return p.call(name, fn, args), nil
	case tokenClose, tokenSep, tokenEOF:
		if !fn.CanCall(0) {
			return nil, &CallError{Col: tok.pos, Func: name}
		}
		scan.push(tok)
		return p.call(name, fn, nil), nil
	default:
		panic("intervals: unknown token: " + tok.String())
	}
}

// parsearglist parses a bracketed list of zero or more args.
func parsearglist(scan *lexer, p *parsectx, open string) ([]Node, error) {
	var args []Node
	for {
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			// As a special case, reporting mismatched brackets is more helpful
			// than empty expression, if that's what we'd do here.
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
				err = &BracketError{Col: ee.Col, Left: open}
			}
			return nil, err
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			// Caller checks that brackets match.
			scan.push(end)
			if rhs == nil {
				// func() is allowed, but func(a,) isn't.
				if len(args) != 0 {
					return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, nil
			}
			if len(args) == 0 {
				// func(a). If func is niladic, then this is an implicit
				// multiplication. Reserve the term so that the parser can
				// convert from a function call.
				p.resv = rhs
			}
			return append(args, rhs), nil
		case tokenSep:
			if rhs == nil {
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			args = append(args, rhs)
		case tokenEOF:
			return nil, &BracketError{Col: end.pos, Left: open, Right: ""}
		default:
			panic("intervals: parseterm ended on non-end token " + end.String())
		}
	}
}

// call builds the node for an application of fn. Functions with interval
// rules build their own nodes, and named constants become literals.
func (p *parsectx) call(name string, fn Func, args []Node) Node {
	switch fn := fn.(type) {
	case rule:
		return fn.build(args[0])
	case constant:
		return &Lit{Val: Scalar(fn)}
	default:
		return &Call{Name: name, Fn: fn, Args: args}
	}
}

// emptyAfter creates an error for an operator or function with nothing to
// apply to. It uses the token that parseterm pushed.
func emptyAfter(scan *lexer) error {
	end := scan.must()
	scan.push(end)
	return &EmptyExpressionError{Col: end.pos, End: end.text}
}

// maxExpDigits bounds decimal exponents that are parsed exactly. Larger
// exponents are far outside the range of float64 anyway.
const maxExpDigits = 1000

// number creates the node for a number token. Decimals are exact rationals.
func number(text string) Node {
	switch text {
	case "inf", "Inf", "∞":
		return &Lit{Val: Scalar(math.Inf(1))}
	}
	if k := strings.IndexAny(text, "eE"); k >= 0 {
		x, err := strconv.Atoi(text[k+1:])
		if err != nil || x > maxExpDigits || x < -maxExpDigits {
			f, _ := strconv.ParseFloat(text, 64)
			if math.IsInf(f, 0) {
				return &Lit{Val: Scalar(f)}
			}
			return &Const{Val: new(big.Rat).SetFloat64(f)}
		}
	}
	s := text
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.Replace(s, ".e", ".0e", 1)
	s = strings.Replace(s, ".E", ".0E", 1)
	s = strings.TrimSuffix(s, ".")
	q, ok := new(big.Rat).SetString(s)
	if !ok {
		panic("intervals: lexed invalid number " + strconv.Quote(text))
	}
	return &Const{Val: q}
}

var (
	openbrackets  = splitRunes(OpenBrackets)
	closebrackets = splitRunes(CloseBrackets)
)

// splitRunes splits a string into its runes.
func splitRunes(s string) []string {
	r := make([]string, 0, len(s))
	for _, c := range s {
		r = append(r, string(c))
	}
	return r
}

// rightbracket gets the closing bracket index for an opening bracket.
func rightbracket(left string) int {
	r, sz := utf8.DecodeRuneInString(left)
	k := strings.IndexRune(OpenBrackets, r)
	if k < 0 || sz != len(left) {
		panic("intervals: invalid bracket " + strconv.Quote(left))
	}
	return k
}

// leftbracket gets the opening bracket matching right. If right is no bracket,
// then the result is the empty string.
func leftbracket(right int) string {
	if right == -1 {
		return ""
	}
	return openbrackets[right]
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. match is the bracket index that the
// expression should have matched, or -1 if none.
func itShouldNotHaveEndedThisWay(tok lexToken, match int) error {
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: ""}
	case tokenClose:
		// A bracket could be the wrong bracket for the opening brace or any
		// bracket at the end of an input.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: tok.text}
	case tokenSep:
		// Separator outside a function call.
		return &SeparatorError{Col: tok.pos}
	default:
		panic("intervals: it really should not have ended this way: " + tok.String())
	}
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// join builds the node for a binary operator.
	join func(l, r Node) Node
	// unary builds the node for a unary operator.
	unary func(Node) Node
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has a nil join.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{prec: 1, join: sum}
	case "-":
		return operator{prec: 1, join: difference}
	case "*", "×":
		return operator{prec: 5, join: product}
	case "/", "÷":
		return operator{prec: 5, join: quotient}
	case "^":
		return operator{prec: 15, right: true, join: raise}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has a nil unary.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{prec: 10, right: true, unary: identity}
	case "-":
		return operator{prec: 10, right: true, unary: negate}
	default:
		return operator{}
	}
}

var (
	// termprec is the default precedence for parsing terms. Its prec
	// should match that of multiplication.
	termprec = operator{prec: 5, right: true, join: product}
	// powprec is the precedence of exponentiation.
	powprec = binop("^")
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{prec: -128, right: true}
)

// Node builders for operators. Sums and products are n-ary, so operands
// that are themselves sums or products are spliced in rather than nested.

func sum(l, r Node) Node {
	return &Sum{Terms: splice(splice(nil, l, terms), r, terms)}
}

func product(l, r Node) Node {
	return &Product{Factors: splice(splice(nil, l, factors), r, factors)}
}

func terms(n Node) []Node {
	if s, ok := n.(*Sum); ok {
		return s.Terms
	}
	return nil
}

func factors(n Node) []Node {
	if p, ok := n.(*Product); ok {
		return p.Factors
	}
	return nil
}

// splice appends the operands of n, or n itself if it has none.
func splice(to []Node, n Node, operands func(Node) []Node) []Node {
	if ops := operands(n); ops != nil {
		return append(to, ops...)
	}
	return append(to, n)
}

func difference(l, r Node) Node {
	return sum(l, negate(r))
}

func quotient(l, r Node) Node {
	if c, ok := r.(*Const); ok && c.Val.Sign() != 0 {
		return product(l, &Const{Val: new(big.Rat).Inv(c.Val)})
	}
	return product(l, &Pow{Base: r, Exp: Rat(-1, 1)})
}

func raise(l, r Node) Node {
	return &Pow{Base: l, Exp: r}
}

func negate(x Node) Node {
	switch x := x.(type) {
	case *Const:
		return &Const{Val: new(big.Rat).Neg(x.Val)}
	case *Lit:
		if s, ok := x.Val.(Scalar); ok {
			return &Lit{Val: -s}
		}
	}
	return &Product{Factors: []Node{Rat(-1, 1), x}}
}

func identity(x Node) Node {
	return x
}
