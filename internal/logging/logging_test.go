// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Markkimotho/json-parser/internal/logging"
	"github.com/go-kit/log/level"
)

func TestNew(t *testing.T) {
	tests := []struct {
		format, level string
		wantDebug     bool
		wantInfo      bool
		marker        string
	}{
		{"logfmt", "debug", true, true, "msg=hello"},
		{"logfmt", "info", false, true, "msg=hello"},
		{"", "", false, true, "msg=hello"},
		{"json", "warn", false, false, `"msg":"hello"`},
		{"JSON", "error", false, false, `"msg":"hello"`},
	}
	for _, test := range tests {
		var buf bytes.Buffer
		logger, err := logging.New(&buf, test.format, test.level)
		if err != nil {
			t.Fatalf("New(%q, %q): unexpected error: %v", test.format, test.level, err)
		}
		level.Debug(logger).Log("msg", "hello", "at", "debug")
		level.Info(logger).Log("msg", "hello", "at", "info")

		out := buf.String()
		if got := strings.Contains(out, "debug"); got != test.wantDebug {
			t.Errorf("New(%q, %q): debug logged=%v, want %v\n%s", test.format, test.level, got, test.wantDebug, out)
		}
		if got := strings.Contains(out, test.marker); got != test.wantInfo {
			t.Errorf("New(%q, %q): info logged=%v, want %v\n%s", test.format, test.level, got, test.wantInfo, out)
		}
		if test.wantInfo && !strings.Contains(out, "caller") {
			t.Errorf("New(%q, %q): missing caller field\n%s", test.format, test.level, out)
		}
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := logging.New(&bytes.Buffer{}, "logfmt", "loud"); err == nil {
		t.Error("New with unknown level: got nil error")
	}
	if _, err := logging.New(&bytes.Buffer{}, "xml", "info"); err == nil {
		t.Error("New with unknown format: got nil error")
	}
	for _, lvl := range logging.Levels {
		if !logging.ValidLevel(lvl) {
			t.Errorf("ValidLevel(%q): got false, want true", lvl)
		}
	}
	if logging.ValidLevel("verbose") {
		t.Error(`ValidLevel("verbose"): got true, want false`)
	}
}
