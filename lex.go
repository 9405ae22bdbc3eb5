package intervals

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is an integer or real token.
	tokenNum
	// tokenIdent is a variable or function name.
	tokenIdent
	// tokenOp is an operator.
	tokenOp
	// tokenOpen is an open bracket, e.g. (.
	tokenOpen
	// tokenClose is a close bracket, e.g. ).
	tokenClose
	// tokenSep is the function arguments separator, a comma.
	tokenSep
)

var tokenNames = [...]string{
	tokenNone:  "None",
	tokenEOF:   "EOF",
	tokenNum:   "Num",
	tokenIdent: "Ident",
	tokenOp:    "Op",
	tokenOpen:  "Open",
	tokenClose: "Close",
	tokenSep:   "Sep",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenNames[k]
}

// Operators contains the runes which are considered to be operators.
const Operators = "+-*/^×÷"

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The parser checks that a bracket in byte position k in OpenBrackets is
// matched with the bracket in byte position k in CloseBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

// lexer scans tokens from a rune source. It tracks positions as counts of
// runes so that errors can point into the source.
type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	p    lexToken
	eof  bool
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
	}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok lexToken) {
	if l.p.kind != tokenNone {
		panic("intervals: double push")
	}
	l.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (l *lexer) must() lexToken {
	tok := l.p
	if tok.kind == tokenNone {
		panic("intervals: no pushed token")
	}
	l.p = lexToken{}
	return tok
}

func (l *lexer) readRune() (rune, error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune. Panics if the source cannot unread.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// next scans the next token from the input. Whitespace runes in wseof end the
// input early. The first time EOF is encountered, the result is an EOF token
// with a nil error; after that, unless the EOF token is pushed, the result is
// an empty token with io.EOF.
func (l *lexer) next(wseof string) (lexToken, error) {
	if l.p.kind != tokenNone {
		return l.must(), nil
	}
	if l.eof {
		return lexToken{}, io.EOF
	}
	defer l.buf.Reset()
	tok := lexToken{pos: l.rune}
	for {
		r, err := l.readRune()
		if errors.Is(err, io.EOF) {
			tok.kind = tokenEOF
			l.eof = true
			return tok, nil
		}
		if err != nil {
			return tok, err
		}
		if unicode.IsSpace(r) {
			if strings.ContainsRune(wseof, r) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			tok.pos++
			continue
		}
		tok.kind, err = l.scan(r)
		tok.text = l.buf.String()
		return tok, err
	}
}

// scan scans the token beginning with r into the buffer and returns its kind.
func (l *lexer) scan(r rune) (tokenKind, error) {
	switch {
	case '0' <= r && r <= '9', r == '.':
		l.unreadRune()
		if err := l.scanNum(); err != nil {
			return tokenNone, err
		}
		return tokenNum, nil
	case r == '_', unicode.IsLetter(r):
		l.unreadRune()
		if err := l.scanIdent(); err != nil {
			return tokenNone, err
		}
		// inf looks like an identifier.
		switch l.buf.String() {
		case "inf", "Inf":
			return tokenNum, nil
		}
		return tokenIdent, nil
	case r == '∞':
		l.buf.WriteRune(r)
		return tokenNum, nil
	case r == ',':
		l.buf.WriteRune(r)
		return tokenSep, nil
	case strings.ContainsRune(Operators, r):
		l.buf.WriteRune(r)
		return tokenOp, nil
	case strings.ContainsRune(OpenBrackets, r):
		l.buf.WriteRune(r)
		return tokenOpen, nil
	case strings.ContainsRune(CloseBrackets, r):
		l.buf.WriteRune(r)
		return tokenClose, nil
	}
	// Write the rune so that it shows up in the error message.
	l.buf.WriteRune(r)
	return tokenNone, l.error("")
}

// scanNum scans a decimal number with optional fraction and exponent.
func (l *lexer) scanNum() error {
	const (
		intPart = iota
		fracPart
		expSign
		expPart
	)
	state := intPart
	var digits, expDigits int
	for {
		r, err := l.readRune()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if state == expSign && (r == '+' || r == '-') {
			l.buf.WriteRune(r)
			state = expPart
			continue
		}
		if unicode.IsSpace(r) || strings.ContainsRune(Operators+OpenBrackets+CloseBrackets+",", r) {
			l.unreadRune()
			break
		}
		l.buf.WriteRune(r)
		switch {
		case '0' <= r && r <= '9':
			if state >= expSign {
				state = expPart
				expDigits++
			} else {
				digits++
			}
		case r == '.' && state == intPart:
			state = fracPart
		case (r == 'e' || r == 'E') && state <= fracPart && digits > 0:
			state = expSign
		default:
			return l.error("number")
		}
	}
	if digits == 0 || state >= expSign && expDigits == 0 {
		return l.error("number")
	}
	return nil
}

func (l *lexer) scanIdent() error {
	for {
		r, err := l.readRune()
		if errors.Is(err, io.EOF) {
			// next unreads the rune that decides ident scanning before
			// calling scanIdent, so we have scanned at least one rune.
			return nil
		}
		if err != nil {
			return err
		}
		if r != '_' && r != '.' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			l.unreadRune()
			return nil
		}
		l.buf.WriteRune(r)
	}
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.rune,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number",
	// "identifier", or the empty string (if a token kind hadn't been
	// decided).
	Kind string
	// Col is the total number of runes scanned by the lexer up to and
	// including this error.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
