package intervals

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseBinding parses a binding of the form name=value or name=[lo, hi].
// Each value or endpoint is an expression without variables, e.g. pi/2 or
// -inf, evaluated at the precision given by opts.
func ParseBinding(s string, opts ...ContextOption) (string, Value, error) {
	name, src, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("binding %q is not of the form name=value", s)
	}
	ctx := NewContext(opts...)
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "[") && strings.HasSuffix(src, "]") {
		lo, hi, ok := splitEndpoints(src[1 : len(src)-1])
		if !ok {
			return name, nil, &BindingError{Name: name, Err: errors.New("interval needs two endpoints")}
		}
		v, err := bindInterval(ctx, lo, hi)
		if err != nil {
			return name, nil, &BindingError{Name: name, Err: err}
		}
		return name, v, nil
	}
	x, err := endpoint(ctx, src)
	if err != nil {
		return name, nil, &BindingError{Name: name, Err: err}
	}
	return name, scalar(x), nil
}

// splitEndpoints splits the contents of an interval at its first comma
// outside any brackets.
func splitEndpoints(s string) (lo, hi string, ok bool) {
	depth := 0
	for i, r := range s {
		switch {
		case strings.ContainsRune(OpenBrackets, r):
			depth++
		case strings.ContainsRune(CloseBrackets, r):
			depth--
		case r == ',' && depth == 0:
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

func bindInterval(ctx *Context, los, his string) (Value, error) {
	lo, err := endpoint(ctx, los)
	if err != nil {
		return nil, err
	}
	hi, err := endpoint(ctx, his)
	if err != nil {
		return nil, err
	}
	if !(lo <= hi) {
		return nil, fmt.Errorf("lower bound %v exceeds upper bound %v", lo, hi)
	}
	return Span(lo, hi), nil
}

// endpoint evaluates a constant expression to a float64.
func endpoint(ctx *Context, src string) (float64, error) {
	e, err := ParseString(src)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", src, err)
	}
	r, err := e.Eval(ctx)
	if err != nil {
		return 0, fmt.Errorf("evaluating %q: %w", src, err)
	}
	x, _ := r.Float64()
	return x, nil
}

// LoadBindings reads bindings from a YAML document. The document is a mapping
// from variable names to values. A value is either a scalar, which may be a
// number or a constant expression like "pi/4", or a sequence of two such
// scalars giving the bounds of an interval. YAML infinities like -.inf are
// accepted as well as inf. An empty document contains no bindings.
func LoadBindings(r io.Reader, opts ...ContextOption) (Bindings, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Bindings{}, nil
		}
		return nil, fmt.Errorf("decoding bindings: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return Bindings{}, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: bindings must be a mapping of names to values", root.Line)
	}
	ctx := NewContext(opts...)
	b := make(Bindings, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode || k.Value == "" {
			return nil, &BindingError{Name: k.Value, Line: k.Line, Err: errors.New("invalid variable name")}
		}
		if _, ok := b[k.Value]; ok {
			return nil, &BindingError{Name: k.Value, Line: k.Line, Err: errors.New("duplicate binding")}
		}
		val, err := nodeValue(ctx, v)
		if err != nil {
			return nil, &BindingError{Name: k.Value, Line: v.Line, Err: err}
		}
		b[k.Value] = val
	}
	return b, nil
}

// ReadBindingsFile loads bindings from a YAML file.
func ReadBindingsFile(path string, opts ...ContextOption) (Bindings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bindings: %w", err)
	}
	defer f.Close()
	b, err := LoadBindings(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

func nodeValue(ctx *Context, v *yaml.Node) (Value, error) {
	switch v.Kind {
	case yaml.ScalarNode:
		x, err := nodeFloat(ctx, v)
		if err != nil {
			return nil, err
		}
		return scalar(x), nil
	case yaml.SequenceNode:
		if len(v.Content) != 2 {
			return nil, fmt.Errorf("interval needs two endpoints, have %d", len(v.Content))
		}
		lo, err := nodeFloat(ctx, v.Content[0])
		if err != nil {
			return nil, err
		}
		hi, err := nodeFloat(ctx, v.Content[1])
		if err != nil {
			return nil, err
		}
		if !(lo <= hi) {
			return nil, fmt.Errorf("lower bound %v exceeds upper bound %v", lo, hi)
		}
		return Span(lo, hi), nil
	default:
		return nil, errors.New("value must be a number, an expression, or a two-element sequence")
	}
}

func nodeFloat(ctx *Context, v *yaml.Node) (float64, error) {
	if v.Kind != yaml.ScalarNode {
		return 0, errors.New("endpoint must be a number or an expression")
	}
	switch v.ShortTag() {
	case "!!float":
		var x float64
		if err := v.Decode(&x); err != nil {
			return 0, err
		}
		if math.IsNaN(x) {
			return 0, errors.New("endpoint is NaN")
		}
		return x, nil
	case "!!int", "!!str":
		return endpoint(ctx, v.Value)
	default:
		return 0, fmt.Errorf("endpoint has unsupported type %s", v.ShortTag())
	}
}

// BindingError is an error for a variable binding that could not be read.
type BindingError struct {
	// Name is the variable being bound.
	Name string
	// Line is the line of the binding in its YAML source, or 0 if the binding
	// did not come from a file.
	Line int
	// Err is the cause.
	Err error
}

func (err *BindingError) Error() string {
	if err.Line > 0 {
		return "line " + strconv.Itoa(err.Line) + ": binding " + strconv.Quote(err.Name) + ": " + err.Err.Error()
	}
	return "binding " + strconv.Quote(err.Name) + ": " + err.Err.Error()
}

func (err *BindingError) Unwrap() error {
	return err.Err
}
