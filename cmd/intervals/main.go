package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"

	"github.com/zephyrtronium/intervals"
)

func main() {
	log.SetFlags(0)
	var (
		inname, verb, bindname string
		given                  []string
		nl, echo, watch, debug bool
		prec                   int
	)
	flag.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flag.StringVar(&verb, "fmt", "%g", "endpoint formatting string")
	flag.Func("given", "name=value or name=[lo, hi] variable binding (any number of times)", func(s string) error {
		given = append(given, s)
		return nil
	})
	flag.StringVar(&bindname, "bindings", "", "YAML file of variable bindings")
	flag.IntVar(&prec, "p", 64, "precision of endpoint calculations in bits")
	flag.BoolVar(&nl, "n", false, "parse separate input lines as separate expressions")
	flag.BoolVar(&echo, "echo", false, "print parse trees")
	flag.BoolVar(&watch, "watch", false, "re-evaluate whenever the bindings file changes")
	flag.BoolVar(&debug, "v", false, "log debug messages")
	flag.Parse()
	if prec <= 0 {
		log.Fatalf("precision (%d) must be positive", prec)
	}
	if watch && bindname == "" {
		log.Fatal("-watch requires -bindings")
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var ins []io.RuneScanner
	f, err := infile(inname, flag.NArg() == 0)
	if err != nil {
		log.Fatal(err)
	}
	if f != nil {
		ins = append(ins, f)
	}
	for _, arg := range flag.Args() {
		ins = append(ins, strings.NewReader(arg))
	}
	var opts []intervals.ParseOption
	if nl {
		opts = append(opts, intervals.StopOn('\n'))
	}
	exprs, err := parseAll(ins, opts...)
	if err != nil {
		log.Fatal(err)
	}

	cfg := config{bindings: bindname, given: given, prec: uint(prec)}
	b, err := cfg.load()
	if err != nil {
		log.Fatal(err)
	}
	report(os.Stdout, exprs, b, verb, echo)
	if !watch {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = watchFile(ctx, bindname, 100*time.Millisecond, func() error {
		b, err := cfg.load()
		if err != nil {
			return err
		}
		report(os.Stdout, exprs, b, verb, echo)
		return nil
	})
	stop()
	if err != nil {
		log.Fatal(err)
	}
}

// config is the source of bindings for evaluation.
type config struct {
	// bindings is the path to a YAML bindings file, if any.
	bindings string
	// given is the list of bindings from the command line. They override
	// bindings from the file.
	given []string
	// prec is the precision for evaluating endpoint expressions.
	prec uint
}

func (c *config) load() (intervals.Bindings, error) {
	b := make(intervals.Bindings)
	if c.bindings != "" {
		fb, err := intervals.ReadBindingsFile(c.bindings, intervals.Prec(c.prec))
		if err != nil {
			return nil, err
		}
		for k, v := range fb {
			b[k] = v
		}
		slog.Debug("loaded bindings", "path", c.bindings, "count", len(fb))
	}
	for _, s := range c.given {
		name, v, err := intervals.ParseBinding(s, intervals.Prec(c.prec))
		if err != nil {
			return nil, fmt.Errorf("-given: %w", err)
		}
		b[name] = v
	}
	return b, nil
}

// parseAll parses every expression from each input in turn.
func parseAll(ins []io.RuneScanner, opts ...intervals.ParseOption) ([]*intervals.Expr, error) {
	var p []*intervals.Expr
	for _, in := range ins {
		for {
			// First check whether we're done with the input.
			done, err := skipSpace(in)
			if err != nil {
				return nil, err
			}
			if done {
				break
			}
			a, err := intervals.Parse(in, opts...)
			if err != nil {
				return nil, err
			}
			p = append(p, a)
		}
	}
	return p, nil
}

// skipSpace discards leading whitespace. It reports whether the input is
// exhausted.
func skipSpace(in io.RuneScanner) (bool, error) {
	for {
		r, _, err := in.ReadRune()
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if !unicode.IsSpace(r) {
			return false, in.UnreadRune()
		}
	}
}

// report evaluates each expression and prints one result per line.
func report(w io.Writer, exprs []*intervals.Expr, b intervals.Bindings, verb string, echo bool) {
	for _, a := range exprs {
		if echo {
			fmt.Fprintf(w, "%v : ", a)
		}
		v, err := a.Interval(b)
		if err != nil {
			fmt.Fprintln(w, err)
			continue
		}
		fmt.Fprintln(w, format(v, verb))
	}
}

// format renders a result, using verb for each endpoint.
func format(v intervals.Value, verb string) string {
	switch v := v.(type) {
	case intervals.Scalar:
		return fmt.Sprintf(verb, float64(v))
	case intervals.Interval:
		return "[" + fmt.Sprintf(verb, v.Lo) + ", " + fmt.Sprintf(verb, v.Hi) + "]"
	case intervals.Undefined:
		return "undefined"
	default:
		return v.String()
	}
}

func infile(inname string, std bool) (io.RuneScanner, error) {
	var f *os.File
	switch {
	case inname != "" && inname != "-":
		in, err := os.Open(inname)
		if err != nil {
			return nil, err
		}
		f = in
	case inname == "-", std:
		f = os.Stdin
	}
	if f == nil {
		return nil, nil
	}
	return bufio.NewReader(f), nil
}
