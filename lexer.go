// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsonparser

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go4.org/mem"
)

// Kind is the type of a lexical token in the JSON grammar.
type Kind byte

// Constants defining the valid Kind values.
const (
	Invalid    Kind = iota // invalid token
	LBrace                 // left brace "{"
	RBrace                 // right brace "}"
	LSquare                // left square bracket "["
	RSquare                // right square bracket "]"
	Colon                  // colon ":"
	Comma                  // comma ","
	String                 // quoted string
	Number                 // number: integer, or decimal with a "."
	True                   // constant: true
	False                  // constant: false
	Null                   // constant: null
	EndOfInput             // end of input
)

var kindStr = [...]string{
	Invalid:    "invalid token",
	LBrace:     `"{"`,
	RBrace:     `"}"`,
	LSquare:    `"["`,
	RSquare:    `"]"`,
	Colon:      `":"`,
	Comma:      `","`,
	String:     "string",
	Number:     "number",
	True:       "true",
	False:      "false",
	Null:       "null",
	EndOfInput: "end of input",
}

func (k Kind) String() string {
	v := int(k)
	if v >= len(kindStr) {
		return kindStr[Invalid]
	}
	return kindStr[v]
}

// A Token is a single lexical unit of the input.
type Token struct {
	Kind Kind
	Span Span

	// Text is the verbatim contents of a String token without its quotes, or
	// the source text of any other token.
	Text string

	// For Number tokens, IsFloat reports whether the lexeme has a decimal
	// point. The decoded value is in Float if so, otherwise in Int.
	Int     int64
	Float   float64
	IsFloat bool
}

func (t Token) String() string {
	switch t.Kind {
	case String:
		return fmt.Sprintf("string %q", t.Text)
	case Number:
		return "number " + t.Text
	}
	return t.Kind.String()
}

// Errors reported by the Lexer, wrapped in a *LexError.
var (
	ErrUnrecognizedChar = errors.New("unrecognized character")
	ErrInputTruncated   = errors.New("input truncated")
	ErrInvalidNumber    = errors.New("invalid number")
)

// LexError is the concrete type of errors reported by the Lexer.
type LexError struct {
	Err    error // ErrUnrecognizedChar, ErrInputTruncated, or ErrInvalidNumber
	Offset int   // byte offset of the offending input
	Char   rune  // the offending character (ErrUnrecognizedChar)
	Text   string

	detail string
}

func (e *LexError) Error() string {
	var msg string
	switch e.Err {
	case ErrUnrecognizedChar:
		msg = fmt.Sprintf("%v %q", e.Err, e.Char)
	case ErrInvalidNumber:
		msg = fmt.Sprintf("%v %q", e.Err, e.Text)
	default:
		msg = e.Err.Error()
	}
	if e.detail != "" {
		msg += ": " + e.detail
	}
	return fmt.Sprintf("%s (offset %d)", msg, e.Offset)
}

// Unwrap supports error wrapping.
func (e *LexError) Unwrap() error { return e.Err }

// A Lexer reads lexical tokens from an input string. Each call to Next
// advances the lexer to the next token, or reports an error.
//
// A Lexer is not safe for concurrent use.
type Lexer struct {
	input string
	pos   int // never decreases
}

// NewLexer constructs a new lexical scanner that consumes input.
func NewLexer(input string) *Lexer { return &Lexer{input: input} }

// Offset reports the byte offset of the cursor. After end of input has been
// reached it equals the length of the input.
func (l *Lexer) Offset() int { return l.pos }

// Next returns the next token of the input and advances past it, or reports
// an error of type *LexError. At the end of the input, Next returns a token
// of kind EndOfInput, and continues to do so on later calls.
func (l *Lexer) Next() (Token, error) {
	for l.pos < len(l.input) {
		ch, nb := utf8.DecodeRuneInString(l.input[l.pos:])

		// Discard whitespace.
		if unicode.IsSpace(ch) {
			l.pos += nb
			continue
		}
		start := l.pos

		// Handle punctuation.
		if k, ok := selfDelim(ch); ok {
			l.pos += nb
			return l.token(k, start), nil
		}

		// Handle string values.
		if ch == '"' {
			return l.scanString(start)
		}

		// Handle numbers.
		if isNumStart(ch) {
			return l.scanNumber(start)
		}

		// Handle constants: true, false, null
		rest := mem.S(l.input[start:])
		for _, kw := range keywords {
			if mem.HasPrefix(rest, kw.text) {
				l.pos += kw.text.Len()
				return l.token(kw.kind, start), nil
			}
		}

		l.pos += nb
		return Token{}, &LexError{Err: ErrUnrecognizedChar, Offset: start, Char: ch}
	}
	return Token{Kind: EndOfInput, Span: Span{Pos: l.pos, End: l.pos}}, nil
}

// All returns an iterator over the remaining tokens of the input. Iteration
// ends at the end of input, which is not itself yielded, or after yielding
// the first error.
func (l *Lexer) All() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for {
			tok, err := l.Next()
			if err != nil {
				yield(tok, err)
				return
			} else if tok.Kind == EndOfInput || !yield(tok, nil) {
				return
			}
		}
	}
}

func (l *Lexer) token(k Kind, start int) Token {
	return Token{Kind: k, Span: Span{Pos: start, End: l.pos}, Text: l.input[start:l.pos]}
}

func (l *Lexer) scanString(start int) (Token, error) {
	body := mem.S(l.input[start+1:])
	n := mem.IndexByte(body, '"')
	if n < 0 {
		l.pos = len(l.input)
		return Token{}, &LexError{
			Err:    ErrInputTruncated,
			Offset: start,
			Text:   l.input[start:],
			detail: "unterminated string",
		}
	}
	l.pos = start + n + 2 // both quotes
	return Token{
		Kind: String,
		Span: Span{Pos: start, End: l.pos},
		Text: l.input[start+1 : start+1+n],
	}, nil
}

func (l *Lexer) scanNumber(start int) (Token, error) {
	if l.input[start] == '-' {
		// A leading sign needs at least one digit after it.
		if start+1 == len(l.input) {
			l.pos = len(l.input)
			return Token{}, &LexError{
				Err:    ErrInputTruncated,
				Offset: start,
				Text:   "-",
				detail: "want digit after sign",
			}
		} else if !isDigit(l.input[start+1]) {
			l.pos = start + 1
			return Token{}, &LexError{Err: ErrUnrecognizedChar, Offset: start, Char: '-'}
		}
	}

	end := start + 1
	for end < len(l.input) && isNumByte(l.input[end]) {
		end++
	}
	l.pos = end
	tok := l.token(Number, start)

	// The scan above is deliberately loose; decoding decides whether the
	// lexeme is well-formed.
	var err error
	if strings.IndexByte(tok.Text, '.') >= 0 {
		tok.IsFloat = true
		tok.Float, err = strconv.ParseFloat(tok.Text, 64)
	} else {
		tok.Int, err = strconv.ParseInt(tok.Text, 10, 64)
	}
	if err != nil {
		detail := "malformed"
		if errors.Is(err, strconv.ErrRange) {
			detail = "out of range"
		}
		return Token{}, &LexError{Err: ErrInvalidNumber, Offset: start, Text: tok.Text, detail: detail}
	}
	return tok, nil
}

var keywords = [...]struct {
	kind Kind
	text mem.RO
}{
	{True, mem.S("true")},
	{False, mem.S("false")},
	{Null, mem.S("null")},
}

func isNumStart(ch rune) bool { return ch == '-' || ('0' <= ch && ch <= '9') }
func isDigit(b byte) bool     { return '0' <= b && b <= '9' }
func isNumByte(b byte) bool   { return isDigit(b) || b == '.' || b == '-' }

var self = [...]Kind{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch rune) (Kind, bool) {
	i := strings.IndexRune("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}
