package intervals

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseOption configures Parse. Options apply in order, so later options
// override earlier ones.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

// parsectx is the state of a single parse.
type parsectx struct {
	// names is the set of variables seen so far.
	names map[string]bool
	// funcs maps names to the functions they call. A nil entry makes the
	// name a variable even if it is a default function.
	funcs map[string]Func
	// resv is a single bracketed argument parsed after a function name. If
	// the function turns out to be niladic, the parser backs the argument out
	// into an implicit multiplication.
	resv Node
	// stopws holds the whitespace runes which end the expression.
	stopws string
	// stopcomma allows a comma outside brackets to end the expression.
	stopcomma bool
	// complete is set once funcs has an entry for every default function.
	complete bool
}

// resolveFuncs adds the default functions that no option has set.
func (p *parsectx) resolveFuncs() {
	switch {
	case p.funcs == nil:
		p.funcs = globalfuncs
	case !p.complete:
		for k, v := range globalfuncs {
			if _, ok := p.funcs[k]; !ok {
				p.funcs[k] = v
			}
		}
	}
	p.complete = true
}

// funcsopt overrides function definitions.
type funcsopt map[string]Func

func (o funcsopt) parseOption(p parsectx) parsectx {
	// Copy so that options and presets never share a map that the parse
	// fills in.
	fns := make(map[string]Func, len(p.funcs)+len(o))
	for k, v := range p.funcs {
		fns[k] = v
	}
	for k, v := range o {
		fns[k] = v
	}
	p.funcs = fns
	if !p.complete {
		p.complete = coversDefaults(fns)
	}
	return p
}

func coversDefaults(fns map[string]Func) bool {
	for k := range globalfuncs {
		if _, ok := fns[k]; !ok {
			return false
		}
	}
	return true
}

// ParseFunc defines a function for parsing, or with a nil fn makes name a
// variable. Names other than the defaults sin, cos, exp, sqrt, pi, and e
// parse to Call nodes, which have no interval rule.
func ParseFunc(name string, fn Func) ParseOption {
	return funcsopt{name: fn}
}

// ParseFuncs is like ParseFunc for each entry of fns.
func ParseFuncs(fns map[string]Func) ParseOption {
	return funcsopt(fns)
}

// DisableDefaultFuncs makes the names of all default functions and
// constants parse as variables.
func DisableDefaultFuncs() ParseOption {
	return disablefns
}

var disablefns = func() funcsopt {
	o := make(funcsopt, len(globalfuncs))
	for k := range globalfuncs {
		o[k] = nil
	}
	return o
}()

// stopopt sets the runes which end an expression early.
type stopopt struct {
	comma bool
	ws    string
}

// StopOn makes each of chars end the expression, so that one source can hold
// several. Each rune must be a comma or whitespace. Whitespace is still
// skipped where a term is expected, e.g. after an operator or open bracket,
// and a comma inside a function's argument list still separates arguments.
//
// StopOn replaces any earlier StopOn, including one from a preset. With no
// arguments, parsing continues to EOF.
func StopOn(chars ...rune) ParseOption {
	var o stopopt
	for _, r := range chars {
		switch {
		case r == ',':
			o.comma = true
		case !unicode.IsSpace(r):
			panic("intervals: cannot stop on " + strconv.QuoteRune(r))
		case !strings.ContainsRune(o.ws, r):
			o.ws += string(r)
		}
	}
	return o
}

func (o stopopt) parseOption(p parsectx) parsectx {
	p.stopcomma, p.stopws = o.comma, o.ws
	return p
}

// preset is a parse configuration resolved ahead of time.
type preset parsectx

// ParsingPreset resolves opts once for use across many calls to Parse. The
// preset must be the first option to Parse; it panics if an earlier option
// has already changed the configuration. Later options still apply.
func ParsingPreset(opts ...ParseOption) ParseOption {
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	if p.funcs != nil {
		p.resolveFuncs()
	}
	return preset{funcs: p.funcs, stopws: p.stopws, stopcomma: p.stopcomma, complete: p.complete}
}

func (o preset) parseOption(p parsectx) parsectx {
	if p.funcs != nil || p.stopws != "" || p.stopcomma {
		panic("intervals: preset applied to non-default parse config")
	}
	p.funcs, p.complete = o.funcs, o.complete
	p.stopws, p.stopcomma = o.stopws, o.stopcomma
	return p
}
