// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package server_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Markkimotho/json-parser/internal/config"
	"github.com/Markkimotho/json-parser/internal/logging"
	"github.com/Markkimotho/json-parser/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) { goleak.VerifyTestMain(m) }

func newTestServer(t *testing.T, modify func(*config.Config)) (*server.Server, *prometheus.Registry) {
	t.Helper()
	cfg := config.Default()
	if modify != nil {
		modify(cfg)
	}
	reg := prometheus.NewRegistry()
	s, err := server.New(cfg, logging.Nop(), reg)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	return s, reg
}

func formRequest(field, value string) *http.Request {
	body := url.Values{field: {value}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/parse-json", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func uploadRequest(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("jsonFile", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write(data)
	if err := mw.Close(); err != nil {
		t.Fatalf("Close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/parse-json", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *server.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestParseJSON(t *testing.T) {
	s, _ := newTestServer(t, nil)
	tests := []struct {
		name   string
		req    *http.Request
		status int
		body   string
	}{
		{"Object", formRequest("jsonData", `{"a":1,"b":[1,2,3]}`), http.StatusOK,
			`{"result":{"a":1,"b":[1,2,3]}}`},
		{"Scalar", formRequest("jsonData", `42`), http.StatusOK, `{"result":42}`},
		{"Mixed", formRequest("jsonData", `[true, null, 2.0, "x"]`), http.StatusOK,
			`{"result":[true,null,2.0,"x"]}`},
		{"Duplicate", formRequest("jsonData", `{"a":1,"a":2}`), http.StatusOK, `{"result":{"a":2}}`},
		{"Escaped", formRequest("jsonData", `["a\b"]`), http.StatusOK, `{"result":["a\\b"]}`},
		{"BadKey", formRequest("jsonData", `{a:1}`), http.StatusBadRequest,
			`{"error":"at 1:1: expected string key: unrecognized character 'a' (offset 1)"}`},
		{"Empty", formRequest("jsonData", ``), http.StatusBadRequest, `{"error":"at 1:0: empty input"}`},
		{"Upload", uploadRequest(t, "doc.json", []byte(`{"ok": true}`)), http.StatusOK,
			`{"result":{"ok":true}}`},
		{"UploadInvalid", uploadRequest(t, "doc.json", []byte(`{"ok": tru}`)), http.StatusBadRequest,
			`{"error":"at 1:7: unrecognized character 't' (offset 7)"}`},
		{"UploadBinary", uploadRequest(t, "doc.bin", []byte{'"', 0xff, 0xfe, '"'}), http.StatusBadRequest,
			`{"error":"uploaded file is not valid UTF-8 text"}`},
		{"Missing", formRequest("other", `{}`), http.StatusBadRequest,
			`{"error":"missing jsonData field or jsonFile upload"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(s, tc.req)
			if rec.Code != tc.status {
				t.Errorf("Status: got %d, want %d", rec.Code, tc.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type: got %q, want application/json", ct)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tc.body {
				t.Errorf("Body:\ngot  %s\nwant %s", got, tc.body)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	s, _ := newTestServer(t, nil)
	tests := []struct {
		method, path string
		status       int
		contains     string
	}{
		{http.MethodGet, "/", http.StatusOK, `id="jsonForm"`},
		{http.MethodGet, "/static/script.js", http.StatusOK, "Parsed Result:"},
		{http.MethodGet, "/healthz", http.StatusOK, `{"status":"ok"}`},
		{http.MethodGet, "/parse-json", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/nonesuch", http.StatusNotFound, ""},
		{http.MethodGet, "/metrics", http.StatusOK, "jsonparser_http_requests_total"},
	}
	for _, test := range tests {
		rec := serve(s, httptest.NewRequest(test.method, test.path, nil))
		if rec.Code != test.status {
			t.Errorf("%s %s: got status %d, want %d", test.method, test.path, rec.Code, test.status)
		}
		if test.contains != "" && !strings.Contains(rec.Body.String(), test.contains) {
			t.Errorf("%s %s: body does not contain %q:\n%s", test.method, test.path, test.contains, rec.Body)
		}
	}
}

func TestInputLimit(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) { c.Server.MaxInputBytes = 64 })

	rec := serve(s, formRequest("jsonData", "["+strings.Repeat("1,", 100)+"1]"))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Status: got %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
	if got, want := strings.TrimSpace(rec.Body.String()), `{"error":"input exceeds 64 bytes"}`; got != want {
		t.Errorf("Body: got %s, want %s", got, want)
	}

	rec = serve(s, formRequest("jsonData", "[1]"))
	if rec.Code != http.StatusOK {
		t.Errorf("Small input: got status %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestStrictConfig(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) { c.Parser.StrictTopLevel = true })
	rec := serve(s, formRequest("jsonData", "42"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got, want := strings.TrimSpace(rec.Body.String()),
		`{"error":"at 1:0: expected top-level object, got number"}`; got != want {
		t.Errorf("Body: got %s, want %s", got, want)
	}
}

func TestCompression(t *testing.T) {
	s, _ := newTestServer(t, nil)
	input := "[" + strings.Repeat(`"padding",`, 300) + `"end"]`
	req := formRequest("jsonData", input)
	req.Header.Set("Accept-Encoding", "gzip")

	rec := serve(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ce := rec.Header().Get("Content-Encoding"); ce != "gzip" {
		t.Fatalf("Content-Encoding: got %q, want gzip", ce)
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("Read compressed body: %v", err)
	}
	if !strings.HasPrefix(string(data), `{"result":["padding",`) {
		t.Errorf("Decompressed body has unexpected prefix: %.40s", data)
	}
}

func TestMetrics(t *testing.T) {
	s, reg := newTestServer(t, nil)
	serve(s, formRequest("jsonData", `{}`))
	serve(s, formRequest("jsonData", `[1]`))
	serve(s, formRequest("jsonData", `{"a":"b`))
	serve(s, formRequest("jsonData", `[1 2]`))

	const want = `
# HELP jsonparser_parse_errors_total Number of rejected inputs by error kind
# TYPE jsonparser_parse_errors_total counter
jsonparser_parse_errors_total{kind="expected_comma_or_closer"} 1
jsonparser_parse_errors_total{kind="input_truncated"} 1
# HELP jsonparser_parses_total Number of parse requests by outcome
# TYPE jsonparser_parses_total counter
jsonparser_parses_total{outcome="error"} 2
jsonparser_parses_total{outcome="ok"} 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want),
		"jsonparser_parses_total", "jsonparser_parse_errors_total"); err != nil {
		t.Errorf("Metrics: %v", err)
	}
	if n, err := testutil.GatherAndCount(reg, "jsonparser_input_bytes"); err != nil {
		t.Errorf("GatherAndCount: %v", err)
	} else if n != 1 {
		t.Errorf("Input size histogram: got %d series, want 1", n)
	}
}

func TestServe(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	cli := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	defer cli.CloseIdleConnections()
	rsp, err := cli.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	io.Copy(io.Discard, rsp.Body)
	rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		t.Errorf("Status: got %d, want %d", rsp.StatusCode, http.StatusOK)
	}

	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: unexpected error: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Serve: unexpected error: %v", err)
	}
}
