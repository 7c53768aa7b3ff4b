// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Program jsonparser-server serves a web form that parses submitted JSON text
// and reports the value tree or the parse error.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/Markkimotho/json-parser/internal/config"
	"github.com/Markkimotho/json-parser/internal/logging"
	"github.com/Markkimotho/json-parser/internal/server"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	configPath string
	port       int
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "jsonparser-server",
	Short: "Serve the JSON parser over HTTP",
	Long: `Serve the JSON parser over HTTP.

POST /parse-json accepts the text in a form field named jsonData, or an
uploaded file named jsonFile, and answers {"result": ...} or {"error": ...}.
The listening port is taken from --port, then $PORT, then the config file.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := logging.New(os.Stderr, cfg.Log.Format, cfg.Log.Level)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (.toml, .yaml or .json)")
	rootCmd.Flags().IntVar(&port, "port", 0, "Listening port (overrides $PORT)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(afero.NewOsFs(), configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config, logger log.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, err := server.New(cfg, logger, reg)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return err
	}

	var g run.Group
	g.Add(func() error {
		return srv.Serve(ln)
	}, func(error) {
		if err := srv.Shutdown(context.Background()); err != nil {
			level.Error(logger).Log("msg", "shutdown", "err", err)
		}
	})
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	if errors.Is(err, run.ErrSignal) {
		level.Info(logger).Log("msg", "stopped", "reason", err)
		return nil
	}
	return err
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
