// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package server

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"unicode/utf8"

	"github.com/Markkimotho/json-parser/ast"
	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"
)

const (
	formField = "jsonData"
	fileField = "jsonFile"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	errMissingInput = errors.New("missing jsonData field or jsonFile upload")
	errNotUTF8      = errors.New("uploaded file is not valid UTF-8 text")
)

type resultBody struct {
	Result ast.Value `json:"result"`
}

type errorBody struct {
	Error string `json:"error"`
}

func indexHandler(assets fs.FS) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := fs.ReadFile(assets, "index.html")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxInputBytes)
	input, err := s.readInput(r)
	if err != nil {
		status := http.StatusBadRequest
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			status = http.StatusRequestEntityTooLarge
			err = fmt.Errorf("input exceeds %d bytes", mbe.Limit)
		}
		level.Warn(s.logger).Log("msg", "bad request", "err", err)
		s.writeJSON(w, status, errorBody{Error: err.Error()})
		return
	}

	v, err := ast.Parse(input, s.cfg.Parser)
	s.metrics.observeParse(len(input), err)
	if err != nil {
		level.Warn(s.logger).Log("msg", "parse failed", "bytes", len(input), "err", err)
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, resultBody{Result: v})
}

// readInput extracts the JSON text from the form field, or failing that the
// uploaded file.
func (s *Server) readInput(r *http.Request) (string, error) {
	// ParseMultipartForm discards body errors on a urlencoded form, so parse
	// that case first.
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	if err := r.ParseMultipartForm(s.cfg.Server.MaxInputBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return "", err
	}
	if vs, ok := r.PostForm[formField]; ok && len(vs) != 0 {
		return vs[0], nil
	}

	f, _, err := r.FormFile(fileField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", errMissingInput
	} else if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	} else if !utf8.Valid(data) {
		return "", errNotUTF8
	}
	return string(data), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		level.Error(s.logger).Log("msg", "encoding response", "err", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorBody{Error: "internal error encoding response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}
