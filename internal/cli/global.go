package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/customHttpClient"
	"github.com/akolanti/FormFlow/internal/data/store"
	"github.com/akolanti/FormFlow/internal/domain/jobModel"
	"github.com/akolanti/FormFlow/internal/formsclient"
	"github.com/akolanti/FormFlow/internal/poller"
	"github.com/akolanti/FormFlow/internal/workspace"
	"github.com/akolanti/FormFlow/pkg/logger_i"
)

const (
	defaultServerURL = "http://localhost:8080/api"
	defaultTimeout   = 30 * time.Second

	tableFormat = "table"
	jsonFormat  = "json"
)

type GlobalOptions struct {
	ServerUrl    string
	Timeout      time.Duration
	PollInterval time.Duration
	LogLevel     string

	out    io.Writer
	errOut io.Writer
}

// DefaultGlobalOptions starts from the FORMFLOW_* environment when it is valid.
func DefaultGlobalOptions() GlobalOptions {
	o := GlobalOptions{
		ServerUrl:    defaultServerURL,
		Timeout:      defaultTimeout,
		PollInterval: config.DefaultPollInterval,
		LogLevel:     "warn",
	}
	if cfg, err := config.Load(); err == nil {
		o.ServerUrl = cfg.Backend.BaseURL
		o.Timeout = cfg.Backend.Timeout
		o.PollInterval = cfg.Poll.Interval
	}
	return o
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ServerUrl, "server-url", "u", o.ServerUrl, "Base URL of the extraction API")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Timeout for each API call")
	fs.DurationVar(&o.PollInterval, "poll-interval", o.PollInterval, "Interval between result checks")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level written to stderr: debug, info, warn or error")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	o.out = cmd.OutOrStdout()
	// pollers report progress from their own goroutines
	o.errOut = &lockedWriter{w: cmd.ErrOrStderr()}
	// stdout carries command output and the MCP stream, logs go to stderr
	logger_i.InitTo(o.errOut, config.LogConfig{Level: o.LogLevel}.SlogLevel(), false)
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	u, err := url.Parse(o.ServerUrl)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server url %q", o.ServerUrl)
	}
	if o.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	return nil
}

func (o *GlobalOptions) Client() (*formsclient.Client, error) {
	return formsclient.New(o.ServerUrl, customHttpClient.NewClient(o.Timeout))
}

// Workspace builds an in-process workspace on memory stores. The caller must Shutdown it.
func (o *GlobalOptions) Workspace(ctx context.Context, onUpdate func(job jobModel.Job)) (*workspace.Service, error) {
	c, err := o.Client()
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	opts := poller.Options{Interval: o.PollInterval, OnUpdate: onUpdate}
	return workspace.InitWorkspaceService(ctx, workspace.ServiceConfig{
		Client:      c,
		JobStore:    store.NewJobStore(ctx, false),
		ResultCache: store.NewResultCache(ctx, false),
		PollOptions: opts,
	}), nil
}

func validateOutput(output string) error {
	if output != tableFormat && output != jsonFormat {
		return fmt.Errorf("unsupported output %q, use %s or %s", output, tableFormat, jsonFormat)
	}
	return nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
