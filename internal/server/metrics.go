// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package server

import (
	"errors"

	jsonparser "github.com/Markkimotho/json-parser"
	"github.com/Markkimotho/json-parser/ast"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors exported by the service.
type Metrics struct {
	parses       *prometheus.CounterVec
	parseErrors  *prometheus.CounterVec
	inputBytes   prometheus.Histogram
	requests     *prometheus.CounterVec
	requestTimes *prometheus.HistogramVec
}

// NewMetrics creates and registers the service metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		parses: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jsonparser",
				Name:      "parses_total",
				Help:      "Number of parse requests by outcome",
			},
			[]string{"outcome"},
		),
		parseErrors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jsonparser",
				Name:      "parse_errors_total",
				Help:      "Number of rejected inputs by error kind",
			},
			[]string{"kind"},
		),
		inputBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "jsonparser",
				Name:      "input_bytes",
				Help:      "Size of parsed inputs in bytes",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 10), // 64B to 16MiB
			},
		),
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jsonparser",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Number of HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		),
		requestTimes: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "jsonparser",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// errorKinds maps error sentinels to metric labels, in match order.
var errorKinds = []struct {
	err  error
	kind string
}{
	{ast.ErrEmptyInput, "empty_input"},
	{ast.ErrUnexpectedToken, "unexpected_token"},
	{ast.ErrExpectedStringKey, "expected_string_key"},
	{ast.ErrExpectedColon, "expected_colon"},
	{ast.ErrExpectedCommaOrCloser, "expected_comma_or_closer"},
	{ast.ErrRecursionLimit, "recursion_limit"},
	{jsonparser.ErrUnrecognizedChar, "unrecognized_char"},
	{jsonparser.ErrInputTruncated, "input_truncated"},
	{jsonparser.ErrInvalidNumber, "invalid_number"},
}

// errorKind returns the metric label for a parse error.
func errorKind(err error) string {
	for _, ek := range errorKinds {
		if errors.Is(err, ek.err) {
			return ek.kind
		}
	}
	return "other"
}

func (m *Metrics) observeParse(size int, err error) {
	m.inputBytes.Observe(float64(size))
	if err != nil {
		m.parses.WithLabelValues("error").Inc()
		m.parseErrors.WithLabelValues(errorKind(err)).Inc()
		return
	}
	m.parses.WithLabelValues("ok").Inc()
}
