// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsonparser

import "github.com/Markkimotho/json-parser/internal/escape"

// Quote encodes src as a standard JSON string value. The contents are escaped
// and double quotation marks are added.
//
// The lexer does not decode escapes, so Quote is for producing output that
// other JSON consumers read. Text meant for this package's own parser should
// be written verbatim between quotes instead.
func Quote(src string) string { return string(escape.Quote(src)) }
