// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jsonparser implements a lexical scanner for a restricted JSON
// dialect. The companion package ast builds value trees from its tokens.
//
// # Scanning
//
// The Lexer type scans an input string held entirely in memory. Construct a
// lexer from the input and call its Next method to fetch tokens one at a time:
//
//	lex := jsonparser.NewLexer(input)
//	for {
//	   tok, err := lex.Next()
//	   if err != nil {
//	      log.Fatalf("Scanning failed: %v", err)
//	   } else if tok.Kind == jsonparser.EndOfInput {
//	      break
//	   }
//	   log.Printf("Next token: %v", tok)
//	}
//
// Once the input is exhausted, Next reports an EndOfInput token on every
// subsequent call. Any error has concrete type *jsonparser.LexError.
//
// The All method wraps the same loop in an iterator:
//
//	for tok, err := range lex.All() {
//	   ...
//	}
//
// # Dialect
//
// The scanner accepts a narrower language than standard JSON:
//
//   - Strings run from one double quote to the next. Backslash is not special,
//     so escape sequences are neither decoded nor needed, and a string cannot
//     contain a double quote.
//   - Numbers are a run of digits, "." and "-" starting at a digit or at a "-"
//     followed by a digit. A number containing "." decodes as floating point,
//     otherwise as a 64-bit integer. Exponents are not supported. A lexeme that
//     does not decode (for example "1.2.3" or "4-5") is reported as an
//     ErrInvalidNumber error.
//   - Whitespace is any Unicode space character.
//
// Comments, trailing commas, and other JSON extensions are not recognized.
package jsonparser
