// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jsonparser_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"testing"

	jsonparser "github.com/Markkimotho/json-parser"
	"github.com/Markkimotho/json-parser/ast"
	jsoniter "github.com/json-iterator/go"
)

func BenchmarkLexer(b *testing.B) {
	data, err := os.ReadFile("testdata/input.json")
	if err != nil {
		b.Fatalf("Reading test input: %v", err)
	}
	input := string(data)
	b.Logf("Benchmark input: %d bytes", len(input))

	b.Run("Decoder", func(b *testing.B) {
		for b.Loop() {
			dec := json.NewDecoder(bytes.NewReader(data))
			for {
				_, err := dec.Token()
				if err == io.EOF {
					break
				} else if err != nil {
					b.Fatalf("Unexpected error: %v", err)
				}
			}
		}
	})

	b.Run("Lexer", func(b *testing.B) {
		for b.Loop() {
			for _, err := range jsonparser.NewLexer(input).All() {
				if err != nil {
					b.Fatalf("Unexpected error: %v", err)
				}
			}
		}
	})
}

func BenchmarkParse(b *testing.B) {
	data, err := os.ReadFile("testdata/input.json")
	if err != nil {
		b.Fatalf("Reading test input: %v", err)
	}
	input := string(data)

	b.Run("Unmarshal", func(b *testing.B) {
		for b.Loop() {
			var v any
			if err := json.Unmarshal(data, &v); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})

	b.Run("Jsoniter", func(b *testing.B) {
		api := jsoniter.ConfigCompatibleWithStandardLibrary
		for b.Loop() {
			var v any
			if err := api.Unmarshal(data, &v); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})

	b.Run("Parse", func(b *testing.B) {
		cfg := ast.StrictConfig()
		for b.Loop() {
			if _, err := ast.Parse(input, cfg); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})
}
