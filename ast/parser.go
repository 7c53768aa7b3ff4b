// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"fmt"

	jsonparser "github.com/Markkimotho/json-parser"
)

// DefaultMaxDepth is the nesting limit used when Config.MaxDepth is not
// positive.
const DefaultMaxDepth = 1000

// Config controls the grammar accepted by Parse.
//
// There is no neutral choice of top-level mode: callers validating whole
// documents generally want StrictConfig, while callers that parse fragments
// (such as the web service) want PermissiveConfig.
type Config struct {
	// If true, the top-level value must be an object. Otherwise any value is
	// accepted at the top level.
	StrictTopLevel bool `json:"strict_top_level" toml:"strict_top_level" yaml:"strict_top_level"`

	// The maximum nesting depth of objects and arrays. Each object or array
	// counts one level, so "[[1]]" has depth 2. If MaxDepth <= 0,
	// DefaultMaxDepth is used.
	MaxDepth int `json:"max_depth" toml:"max_depth" yaml:"max_depth"`
}

// StrictConfig returns a Config requiring a top-level object.
func StrictConfig() Config { return Config{StrictTopLevel: true, MaxDepth: DefaultMaxDepth} }

// PermissiveConfig returns a Config accepting any value at the top level.
func PermissiveConfig() Config { return Config{MaxDepth: DefaultMaxDepth} }

func (c Config) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

// Parse parses input as a single JSON value under cfg. The whole input must
// be consumed: anything other than whitespace after the value is an error.
//
// In case of error, no value is returned, and the error has concrete type
// *SyntaxError. Parse is safe to call concurrently; separate calls share no
// state.
func Parse(input string, cfg Config) (Value, error) {
	p, err := newParser(input, cfg)
	if err != nil {
		return nil, err
	}
	return p.parse()
}

// A parser is a recursive-descent parser with one token of lookahead. Each
// grammar production is a method, which on success leaves the lookahead on
// the first token after the production.
type parser struct {
	input string
	lex   *jsonparser.Lexer
	tok   jsonparser.Token // lookahead
	cfg   Config
	depth int
}

// newParser constructs a parser with the lookahead token already fetched.
func newParser(input string, cfg Config) (*parser, error) {
	p := &parser{input: input, lex: jsonparser.NewLexer(input), cfg: cfg}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) parse() (Value, error) {
	if p.tok.Kind == jsonparser.EndOfInput {
		return nil, p.fail(ErrEmptyInput, "empty input")
	}

	var v Value
	var err error
	if p.cfg.StrictTopLevel {
		if p.tok.Kind != jsonparser.LBrace {
			return nil, p.unexpected("top-level object")
		}
		v, err = p.object()
	} else {
		v, err = p.value("value")
	}
	if err != nil {
		return nil, err
	}

	if p.tok.Kind != jsonparser.EndOfInput {
		return nil, p.unexpected("end of input")
	}
	return v, nil
}

// value parses a single value of any type. The context labels the grammar
// position in case the token does not start a value.
func (p *parser) value(context string) (Value, error) {
	switch p.tok.Kind {
	case jsonparser.LBrace:
		return p.object()
	case jsonparser.LSquare:
		return p.array()
	case jsonparser.String:
		return p.consume(String(p.tok.Text))
	case jsonparser.Number:
		if p.tok.IsFloat {
			return p.consume(Float(p.tok.Float))
		}
		return p.consume(Int(p.tok.Int))
	case jsonparser.True:
		return p.consume(Bool(true))
	case jsonparser.False:
		return p.consume(Bool(false))
	case jsonparser.Null:
		return p.consume(Null)
	}
	return nil, p.unexpected(context)
}

// object parses an object. Duplicate keys replace the value of the earlier
// member.
// Precondition: tok == LBrace.
// Postcondition: tok is the token after the closing RBrace.
func (p *parser) object() (Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if err := p.advanceKey(); err != nil { // consume "{"
		return nil, err
	}
	if p.tok.Kind == jsonparser.RBrace {
		return p.consume(Object{})
	}

	var obj Object
	index := make(map[string]int)
	for {
		// Parse a single member: "key": value
		if p.tok.Kind != jsonparser.String {
			return nil, p.failGot(ErrExpectedStringKey, "expected string key, got %v", p.tok.Kind)
		}
		key := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Kind != jsonparser.Colon {
			return nil, p.failGot(ErrExpectedColon, "expected %v after object key, got %v",
				jsonparser.Colon, p.tok.Kind)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := p.value("object member value")
		if err != nil {
			return nil, err
		}
		if i, ok := index[key]; ok {
			obj[i].Value = v
		} else {
			index[key] = len(obj)
			obj = append(obj, &Member{Key: key, Value: v})
		}

		// Check whether we have more members (",") or are done ("}").
		switch p.tok.Kind {
		case jsonparser.Comma:
			if err := p.advanceKey(); err != nil {
				return nil, err
			}
		case jsonparser.RBrace:
			return p.consume(obj)
		default:
			return nil, p.expectedCommaOrCloser("object", jsonparser.RBrace)
		}
	}
}

// array parses an array.
// Precondition: tok == LSquare.
// Postcondition: tok is the token after the closing RSquare.
func (p *parser) array() (Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if err := p.advance(); err != nil { // consume "["
		return nil, err
	}
	if p.tok.Kind == jsonparser.RSquare {
		return p.consume(Array{})
	}

	var arr Array
	for {
		v, err := p.value("array element")
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)

		switch p.tok.Kind {
		case jsonparser.Comma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case jsonparser.RSquare:
			return p.consume(arr)
		default:
			return nil, p.expectedCommaOrCloser("array", jsonparser.RSquare)
		}
	}
}

// consume advances past the current token and returns v.
func (p *parser) consume(v Value) (Value, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	return v, nil
}

// advance fetches the next lookahead token.
func (p *parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		serr := &SyntaxError{Message: err.Error(), err: err}
		var lerr *jsonparser.LexError
		if errors.As(err, &lerr) {
			serr.Offset = lerr.Offset
		} else {
			serr.Offset = p.lex.Offset()
		}
		serr.Location = jsonparser.Locate(p.input, serr.Offset)
		return serr
	}
	p.tok = tok
	return nil
}

// advanceKey fetches the lookahead where an object key is expected. A bare
// word such as {a:1} is reported as a missing key.
func (p *parser) advanceKey() error {
	err := p.advance()
	var serr *SyntaxError
	if errors.As(err, &serr) && errors.Is(serr.err, jsonparser.ErrUnrecognizedChar) {
		serr.Message = "expected string key: " + serr.Message
		serr.cause = serr.err
		serr.err = ErrExpectedStringKey
	}
	return err
}

func (p *parser) enter() error {
	p.depth++
	if limit := p.cfg.maxDepth(); p.depth > limit {
		return p.fail(ErrRecursionLimit, fmt.Sprintf("nesting depth exceeds maximum %d", limit))
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) unexpected(context string) error {
	err := p.failGot(ErrUnexpectedToken, "expected %s, got %v", context, p.tok.Kind)
	err.Context = context
	return err
}

func (p *parser) expectedCommaOrCloser(container string, closer jsonparser.Kind) error {
	err := p.failGot(ErrExpectedCommaOrCloser, "expected %v or %v in %s, got %v",
		jsonparser.Comma, closer, container, p.tok.Kind)
	err.Container = container
	return err
}

func (p *parser) failGot(sentinel error, msg string, args ...any) *SyntaxError {
	err := p.fail(sentinel, fmt.Sprintf(msg, args...))
	err.Got = p.tok.Kind
	return err
}

// fail reports an error at the start of the lookahead token.
func (p *parser) fail(sentinel error, msg string) *SyntaxError {
	return &SyntaxError{
		Offset:   p.tok.Span.Pos,
		Location: jsonparser.Locate(p.input, p.tok.Span.Pos),
		Message:  msg,
		err:      sentinel,
	}
}
