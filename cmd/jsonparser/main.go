// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Program jsonparser checks whether a file holds a valid JSON object.
//
// Usage:
//
//	jsonparser [--max-depth N] [-v] <file_path>
package main

import (
	"os"

	"github.com/Markkimotho/json-parser/internal/cli"
)

func main() {
	os.Exit(cli.Run(cli.OSEnv(os.Stdout, os.Stderr), os.Args[1:]))
}
