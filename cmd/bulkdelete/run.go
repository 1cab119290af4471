package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"bulkdelete/internal/bulkdelete/client"
	"bulkdelete/internal/bulkdelete/config"
	"bulkdelete/internal/bulkdelete/input"
	"bulkdelete/internal/bulkdelete/model"
	"bulkdelete/internal/bulkdelete/report"
	"bulkdelete/internal/bulkdelete/service"
	"bulkdelete/internal/bulkdelete/util"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type runFlags struct {
	configPath string
	inputPath  string

	baseURL                string
	workers                int
	ordered                bool
	timeout                time.Duration
	maxRetries             int
	rateLimit              float64
	continueOnUnauthorized bool
	abortOnTransportError  bool
	inputFormat            string
	skipHeader             bool
	delimiter              string
	outputFormat           string
	logLevel               string
	logFormat              string
}

func newRunCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Delete every identifier read from the input",
		Example: `  BULKDELETE_API_URL=https://api.example.com/v1/items/ \
  BULKDELETE_API_KEY=... BULKDELETE_API_TOKEN=... \
  bulkdelete run --skip-header < ids.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeletion(cmd, f, stdin, stdout, stderr)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fl.StringVarP(&f.inputPath, "input", "i", "-", "input file, - for stdin")
	fl.StringVar(&f.baseURL, "base-url", "", "resource URL prefix (overrides "+config.EnvAPIURL+")")
	fl.IntVarP(&f.workers, "workers", "w", 1, "concurrent requests (1 = sequential)")
	fl.BoolVar(&f.ordered, "ordered", true, "report results in input order when workers > 1")
	fl.DurationVar(&f.timeout, "timeout", 5*time.Second, "per-request timeout")
	fl.IntVar(&f.maxRetries, "max-retries", 2, "retries for transport failures")
	fl.Float64Var(&f.rateLimit, "rate-limit", 0, "max requests per second, 0 for no limit")
	fl.BoolVar(&f.continueOnUnauthorized, "continue-on-unauthorized", false, "keep going after a 401")
	fl.BoolVar(&f.abortOnTransportError, "abort-on-transport-error", false, "stop the run on the first transport failure")
	fl.StringVarP(&f.inputFormat, "format", "f", "csv", "input format: csv or json")
	fl.BoolVar(&f.skipHeader, "skip-header", false, "treat the first CSV record as a header")
	fl.StringVar(&f.delimiter, "delimiter", ",", `CSV field delimiter ("\t" for tab)`)
	fl.StringVarP(&f.outputFormat, "output", "o", "text", "output format: text or json")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fl.StringVar(&f.logFormat, "log-format", "json", "log format: json or text")
	return cmd
}

// overrides applies only the flags the user actually set, so YAML and
// environment values survive flag defaults.
func (f *runFlags) overrides(fl *pflag.FlagSet) config.Option {
	return func(c *config.Config) {
		set := func(name string, apply func()) {
			if fl.Changed(name) {
				apply()
			}
		}
		set("base-url", func() { c.BaseURL = f.baseURL })
		set("workers", func() { c.Workers = f.workers })
		set("ordered", func() { c.Ordered = f.ordered })
		set("timeout", func() { c.RequestTimeout = f.timeout })
		set("max-retries", func() { c.MaxRetries = f.maxRetries })
		set("rate-limit", func() { c.RateLimit = f.rateLimit })
		set("continue-on-unauthorized", func() { c.ContinueOnUnauthorized = f.continueOnUnauthorized })
		set("abort-on-transport-error", func() { c.AbortOnTransportError = f.abortOnTransportError })
		set("format", func() { c.InputFormat = f.inputFormat })
		set("skip-header", func() { c.SkipHeader = f.skipHeader })
		set("delimiter", func() { c.Delimiter = f.delimiter })
		set("output", func() { c.OutputFormat = f.outputFormat })
		set("log-level", func() { c.LogLevel = f.logLevel })
		set("log-format", func() { c.LogFormat = f.logFormat })
	}
}

func runDeletion(cmd *cobra.Command, f *runFlags, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.LoadConfig(f.configPath, f.overrides(cmd.Flags()))
	if err != nil {
		return err
	}

	logger := util.NewLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	logger.Debug("Loaded configuration",
		"endpoint", cfg.Endpoint,
		"workers", cfg.Workers,
		"request_timeout", cfg.RequestTimeout.String(),
		"max_retries", cfg.MaxRetries,
		"input_format", cfg.InputFormat,
	)

	in := stdin
	if f.inputPath != "" && f.inputPath != "-" {
		file, err := os.Open(f.inputPath)
		if err != nil {
			return fmt.Errorf("%w: %w", model.ErrInputParse, err)
		}
		defer file.Close()
		in = file
	}

	src, err := input.NewSource(in, input.Options{
		Format:     cfg.InputFormat,
		SkipHeader: cfg.SkipHeader,
		Comma:      cfg.Comma(),
	})
	if err != nil {
		return err
	}

	rc := client.NewResourceClient(cfg.Endpoint, client.Options{
		Timeout:              cfg.RequestTimeout,
		MaxRetries:           cfg.MaxRetries,
		RetryInitialInterval: cfg.RetryInitialInterval,
		RateLimit:            cfg.RateLimit,
	})
	deleter := service.NewDeleter(rc, service.Options{
		Workers:                cfg.Workers,
		Ordered:                cfg.Ordered,
		ContinueOnUnauthorized: cfg.ContinueOnUnauthorized,
		AbortOnTransportError:  cfg.AbortOnTransportError,
	}, logger)
	reporter := report.NewReporter(stdout, cfg.OutputFormat)

	_, err = deleter.DeleteAll(cmd.Context(), src, reporter.Emit)
	return err
}
