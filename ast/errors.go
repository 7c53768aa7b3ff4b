// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"fmt"

	jsonparser "github.com/Markkimotho/json-parser"
)

// Errors reported by Parse, wrapped in a *SyntaxError. A lexical error is
// wrapped as a *jsonparser.LexError instead.
var (
	ErrEmptyInput            = errors.New("empty input")
	ErrUnexpectedToken       = errors.New("unexpected token")
	ErrExpectedStringKey     = errors.New("expected string key")
	ErrExpectedColon         = errors.New("expected colon")
	ErrExpectedCommaOrCloser = errors.New("expected comma or closer")
	ErrRecursionLimit        = errors.New("recursion limit exceeded")
)

// SyntaxError is the concrete type of errors reported by Parse.
type SyntaxError struct {
	Offset   int                // byte offset of the failure
	Location jsonparser.LineCol // line and column of the failure
	Message  string

	// Got is the kind of the offending token. It is Invalid if lexing failed.
	Got jsonparser.Kind

	// Context names the grammar position that rejected an unexpected token,
	// for example "array element" or "end of input".
	Context string

	// Container is "object" or "array" for ErrExpectedCommaOrCloser.
	Container string

	err   error // sentinel, or the lexical error
	cause error // lexical error behind a sentinel, or nil
}

// Error satisfies the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", e.Location, e.Message)
}

// Unwrap supports error wrapping. A lexical error in an object key position
// reports both ErrExpectedStringKey and the underlying *jsonparser.LexError.
func (e *SyntaxError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.err}
	}
	return []error{e.err, e.cause}
}
