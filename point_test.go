package intervals_test

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/zephyrtronium/intervals"
)

func TestEval(t *testing.T) {
	type vv struct {
		n string
		v float64
	}
	type vc struct {
		vars []vv
		r    float64
	}
	cases := []struct {
		name string
		src  string
		r    []vc
	}{
		{"num", "1", []vc{{nil, 1}}},
		{"ident", "x", []vc{
			{[]vv{{"x", 4}}, 4},
			{[]vv{{"x", 5}}, 5},
			{[]vv{{"x", 6}}, 6},
		}},
		{"plus", "+x", []vc{
			{[]vv{{"x", 4}}, 4},
			{[]vv{{"x", 5}}, 5},
		}},
		{"neg", "-x", []vc{
			{[]vv{{"x", 4}}, -4},
			{[]vv{{"x", 5}}, -5},
		}},
		{"add", "4+5+6", []vc{{nil, 4 + 5 + 6}}},
		{"sub", "4-5-6", []vc{{nil, 4 - 5 - 6}}},
		{"mul", "4*5*6", []vc{{nil, 4 * 5 * 6}}},
		{"div", "8/4/2", []vc{{nil, 1}}},
		{"div-var", "x/y", []vc{{[]vv{{"x", 3}, {"y", 4}}, 0.75}}},
		{"pow", "4^3^2", []vc{{nil, 262144}}},
		{"pow-neg", "2^-2", []vc{{nil, 0.25}}},
		{"pow-neg-base", "x^3", []vc{{[]vv{{"x", -2}}, -8}}},
		{"pi", "pi", []vc{{nil, math.Pi}}},
		{"e", "e", []vc{{nil, math.E}}},
		{"inf1", "inf", []vc{{nil, math.Inf(0)}}},
		{"inf2", "Inf", []vc{{nil, math.Inf(0)}}},
		{"inf3", "∞", []vc{{nil, math.Inf(0)}}},
		{"zero-inf", "0 inf", []vc{{nil, 0}}},
		{"exp-neg-inf", "exp(-inf)", []vc{{nil, 0}}},
		{"sin", "sin x", []vc{{[]vv{{"x", 1}}, math.Sin(1)}}},
		{"cos", "cos x", []vc{{[]vv{{"x", 1}}, math.Cos(1)}}},
		{"cos-squared", "cos^2 x", []vc{{[]vv{{"x", 0}}, 1}}},
	}
	ctx := intervals.NewContext(intervals.Prec(64))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := intervals.ParseString(c.src)
			if err != nil {
				t.Fatal(c.src, "failed to parse:", err)
			}
			for _, v := range c.r {
				ctx := ctx.Clone()
				for _, x := range v.vars {
					ctx.Set(x.n, new(big.Float).SetFloat64(x.v))
				}
				r, err := a.Eval(ctx)
				if err != nil {
					t.Error("evaluation error:", err)
				}
				if r == nil {
					t.Fatal("nil result")
				}
				if f, _ := r.Float64(); f != v.r {
					t.Errorf("wrong result: want %g, got %g", v.r, r)
				}
			}
		})
	}
}

func TestEvalApprox(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    float64
	}{
		{"exp", "exp 1", math.E},
		{"ln", "ln e", 1},
		{"log", "log 1000", 3},
		{"log-base", "log(8, 2)", 3},
		{"sqrt", "sqrt 2", math.Sqrt2},
		{"cbrt-neg", "(-8)^(1/3)", -2},
		{"root-neg", "(-4)^(1/2)", -2},
		{"frac-pow", "8^(2/3)", 4},
		{"frac-pow-neg", "(-8)^(2/3)", 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := intervals.EvalString(c.src)
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			f, _ := r.Float64()
			if math.Abs(f-c.r) > 1e-15*math.Max(1, math.Abs(c.r)) {
				t.Errorf("%q: want %g, got %g", c.src, c.r, f)
			}
		})
	}
}

func TestEvalUndefNames(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    []string
	}{
		{"x", "x", []string{"x"}},
		{"plus", "+x", []string{"x"}},
		{"neg", "-x", []string{"x"}},
		{"add-lhs", "x+1", []string{"x"}},
		{"add-rhs", "1+x", []string{"x"}},
		{"sub-lhs", "x-1", []string{"x"}},
		{"sub-rhs", "1-x", []string{"x"}},
		{"mul-lhs", "x*1", []string{"x"}},
		{"mul-rhs", "1*x", []string{"x"}},
		{"div-lhs", "x/1", []string{"x"}},
		{"div-rhs", "1/x", []string{"x"}},
		{"pow-lhs", "x^1", []string{"x"}},
		{"pow-rhs", "1^x", []string{"x"}},
		{"call", "exp(x)", []string{"x"}},
		{"func", "ln(x)", []string{"x"}},
	}
	ure := regexp.MustCompile(`(?i)\bundef`)
	vre := regexp.MustCompile(`(?i)\bvar`)
	ctx := intervals.NewContext(intervals.Prec(64))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := intervals.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			if v := a.Vars(); !reflect.DeepEqual(c.r, v) {
				t.Errorf("%q gave wrong variables: want %q, got %q", c.src, c.r, v)
			}
			r, err := a.Eval(ctx)
			if r != nil {
				t.Errorf("evaluating %q gave non-nil result %g", c.src, r)
			}
			if err == nil {
				t.Fatalf("evaluating %q gave no error", c.src)
			}
			u, ok := err.(*intervals.NameError)
			if !ok {
				t.Fatalf("error was %#v, not NameError", err)
			}
			msg := err.Error()
			if !ure.MatchString(msg) {
				t.Errorf(`%q doesn't mention "undef"`, msg)
			}
			if !vre.MatchString(msg) {
				t.Errorf(`%q doesn't mention "var"`, msg)
			}
			for _, v := range c.r {
				if v == u.Name {
					xre := regexp.MustCompile(`\b` + v + `\b`)
					if !xre.MatchString(msg) {
						t.Errorf(`%q doesn't mention %q`, msg, v)
					}
					return
				}
			}
			t.Errorf("NameError on %q, not in %q", u.Name, c.r)
		})
	}
}

func TestEvalFuncError(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"ln", "ln(-1)"},
		{"ln-zero", "ln 0"},
		{"log", "log(-1)"},
		{"log-base", "log(1, -1)"},
		{"log-base-one", "log(2, 1)"},
		{"sin-inf", "sin(inf)"},
		{"cos-inf", "cos(-inf)"},
	}
	ctx := intervals.NewContext(intervals.Prec(64))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := intervals.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			r, err := a.Eval(ctx.Clone())
			if r != nil {
				t.Errorf("evaluating %q gave non-nil result %g", c.src, r)
			}
			if err == nil {
				t.Fatalf("evaluating %q gave no error", c.src)
			}
			if !errors.As(err, new(intervals.DomainError)) {
				t.Errorf("%#v is not a DomainError", err)
			}
		})
	}
}

func TestEvalNaN(t *testing.T) {
	r, err := intervals.EvalString("inf - inf")
	if r != nil {
		t.Errorf("inf - inf gave %g", r)
	}
	if !errors.As(err, new(big.ErrNaN)) {
		t.Errorf("inf - inf gave error %#v, not big.ErrNaN", err)
	}
}

func TestEvalNonPoints(t *testing.T) {
	ctx := intervals.NewContext()
	t.Run("interval", func(t *testing.T) {
		_, err := ctx.Eval(&intervals.Lit{Val: iv(0, 1)})
		if !errors.As(err, new(*intervals.PointError)) {
			t.Errorf("want PointError, got %v", err)
		}
	})
	t.Run("point-interval", func(t *testing.T) {
		r, err := ctx.Eval(&intervals.Lit{Val: iv(2, 2)})
		if err != nil {
			t.Fatal(err)
		}
		if f, _ := r.Float64(); f != 2 {
			t.Errorf("want 2, got %g", r)
		}
	})
	t.Run("empty", func(t *testing.T) {
		_, err := ctx.Eval(&intervals.Empty{})
		if !errors.As(err, new(*intervals.PointError)) {
			t.Errorf("want PointError, got %v", err)
		}
	})
	t.Run("empty-sum", func(t *testing.T) {
		_, err := ctx.Eval(&intervals.Sum{Terms: []intervals.Node{&intervals.Empty{}}})
		if !errors.As(err, new(*intervals.OperandsError)) {
			t.Errorf("want OperandsError, got %v", err)
		}
	})
	t.Run("sum-skips-empty", func(t *testing.T) {
		r, err := ctx.Eval(&intervals.Sum{Terms: []intervals.Node{&intervals.Empty{}, intervals.Rat(3, 1)}})
		if err != nil {
			t.Fatal(err)
		}
		if f, _ := r.Float64(); f != 3 {
			t.Errorf("want 3, got %g", r)
		}
	})
	t.Run("bad-call", func(t *testing.T) {
		n := &intervals.Call{Name: "ln", Fn: intervals.Monadic(func(out, in *big.Float) *big.Float { return out.Set(in) })}
		_, err := ctx.Eval(n)
		var ce *intervals.CallError
		if !errors.As(err, &ce) {
			t.Fatalf("want CallError, got %v", err)
		}
		if ce.Func != "ln" || ce.Len != 0 {
			t.Errorf("wrong call error %+v", ce)
		}
	})
}

func TestEvalNiladic(t *testing.T) {
	tau := intervals.Niladic(func(out *big.Float) *big.Float {
		return out.SetFloat64(2 * math.Pi)
	})
	a, err := intervals.ParseString("tau x", intervals.ParseFunc("tau", tau))
	if err != nil {
		t.Fatal(err)
	}
	r, err := a.Eval(intervals.NewContext(intervals.SetVar("x", big.NewFloat(0.5))))
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := r.Float64(); f != math.Pi {
		t.Errorf("want %g, got %g", math.Pi, f)
	}
	// Functions without interval rules stay symbolic.
	v, err := a.Interval(intervals.Bindings{"x": iv(0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := v.String(), "(tau[] * [0, 1])"; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestContextVars(t *testing.T) {
	zero := new(big.Float)
	one := new(big.Float).SetFloat64(1)
	ctx := intervals.NewContext(intervals.Prec(64), intervals.SetVar("x", zero))
	if x := ctx.Lookup("x"); x == nil || x.Cmp(zero) != 0 {
		t.Errorf("x should be %[1]v at %[1]p but is %[2]v at %[2]p", zero, x)
	}
	if y := ctx.Lookup("y"); y != nil {
		t.Errorf("context has y: %[1]v at %[1]p", y)
	}
	ctx.Set("y", one)
	if x := ctx.Lookup("x"); x == nil || x.Cmp(zero) != 0 {
		t.Errorf("x should be %[1]v at %[1]p but is %[2]v at %[2]p", zero, x)
	}
	if y := ctx.Lookup("y"); y == nil || y.Cmp(one) != 0 {
		t.Errorf("y should be %[1]v at %[1]p but is %[2]v at %[2]p", one, y)
	}
	ctx.Set("x", one)
	if x := ctx.Lookup("x"); x == nil || x.Cmp(one) != 0 {
		t.Errorf("x should be %[1]v at %[1]p but is %[2]v at %[2]p", one, x)
	}
	c := ctx.Clone(intervals.Prec(200), intervals.SetVars(map[string]*big.Float{"z": one}))
	if c.Prec() != 200 {
		t.Errorf("clone has precision %d", c.Prec())
	}
	if z := c.Lookup("z"); z == nil || z.Cmp(one) != 0 {
		t.Errorf("z should be %v but is %v", one, z)
	}
	if z := ctx.Lookup("z"); z != nil {
		t.Errorf("clone leaked z = %v into original", z)
	}
}

func TestVars(t *testing.T) {
	cases := []struct {
		name string
		src  string
		vars []string
	}{
		{"none", "1+2+3", nil},
		{"one", "1+2+x", []string{"x"}},
		{"sort", "z+y+x+w+v+u+t+s+r+q+p+o+n+m+l+k+j+i+h+g+f+e+d+c+b+a", strings.Fields("a b c d e f g h i j k l m n o p q r s t u v w x y z")},
		{"reuse", "a+b+c+b+a", []string{"a", "b", "c"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := intervals.ParseString(c.src, intervals.DisableDefaultFuncs())
			if err != nil {
				t.Fatalf("%q didn't parse: %v", c.src, err)
			}
			vars := a.Vars()
			if len(vars) == 0 && len(c.vars) == 0 {
				return
			}
			if !reflect.DeepEqual(vars, c.vars) {
				t.Errorf("%q gave wrong variable names:\n\twant %q\n\tgot  %q", c.src, c.vars, vars)
			}
		})
	}
}

func BenchmarkEval(b *testing.B) {
	vars := map[string]*big.Float{
		"x": big.NewFloat(2),
		"y": big.NewFloat(3),
		"z": big.NewFloat(4),
	}
	b.Run("nums", func(b *testing.B) {
		b.ReportAllocs()
		ctx := intervals.NewContext(intervals.Prec(64))
		a, err := intervals.ParseString("2+3+4")
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			a.Eval(ctx)
		}
	})
	b.Run("vars", func(b *testing.B) {
		b.ReportAllocs()
		ctx := intervals.NewContext(intervals.SetVars(vars), intervals.Prec(64))
		a, err := intervals.ParseString("x+y+z")
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			a.Eval(ctx)
		}
	})
}

func ExampleContext() {
	var (
		fx   = strings.NewReader("x^3/2 - x")
		dfx  = strings.NewReader("3 x^2/2 - 1")
		ddfx = strings.NewReader("3 x")
	)
	ctx := intervals.NewContext(intervals.Prec(64))
	a, _ := intervals.Parse(fx)
	b, _ := intervals.Parse(dfx)
	c, _ := intervals.Parse(ddfx)

	for i := 0; i < 4; i++ {
		x := big.NewFloat(float64(i))
		ctx := ctx.Set("x", x)
		y, _ := a.Eval(ctx)
		yp, _ := b.Eval(ctx)
		ypp, _ := c.Eval(ctx)
		fmt.Printf("x = %g   y = %-4g  y' = %-4g  y'' = %g\n", x, y, yp, ypp)
	}

	// Output:
	// x = 0   y = 0     y' = -1    y'' = 0
	// x = 1   y = -0.5  y' = 0.5   y'' = 3
	// x = 2   y = 2     y' = 5     y'' = 6
	// x = 3   y = 10.5  y' = 12.5  y'' = 9
}
