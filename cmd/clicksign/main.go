package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gisce/clicksign"
	"github.com/gisce/clicksign/internal/config"
	"github.com/gisce/clicksign/internal/logging"
)

// Exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitValidation = 3
	exitNotFound   = 4
)

const usage = `usage: clicksign [flags] <command> [args]

commands:
  start -f request.json [-dry-run]   start a signature process
  status -id N                       query a signatory's status
  document -f request.json           download the signed document
  config list                        list the signature configurations
  config get -id N                   show one signature configuration
  callback -f payload.json           validate a callback payload offline
  serve                              run the callback listener

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries what every command needs once flags and configuration are resolved.
type app struct {
	cfg      config.Config
	loader   *config.Loader
	logger   *slog.Logger
	level    *slog.LevelVar
	out      *printer
	stderr   io.Writer
	client   func() (*clicksign.Client, error)
	observer clicksign.Observer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("clicksign", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configFile   = fs.String("config", "", "path to configuration file (yaml, json or toml)")
		envPrefix    = fs.String("env-prefix", config.DefaultEnvPrefix, "environment variable prefix")
		format       = fs.String("format", "", "output format: json, yaml or template (default from config)")
		inline       = fs.String("template", "", "inline Go template used with -format template")
		templateFile = fs.String("template-file", "", "template name resolved in the configured templates folder")
	)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	loader := config.NewLoader(*envPrefix, *configFile)
	cfg, err := loader.Load(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "clicksign: %v\n", err)
		return exitFailure
	}
	logger, level, err := logging.New(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "clicksign: %v\n", err)
		return exitFailure
	}

	outFormat := cfg.Output.Format
	if *format != "" {
		outFormat = *format
	}
	if *inline != "" || *templateFile != "" {
		outFormat = formatTemplate
	}
	out, err := newPrinter(stdout, outFormat, cfg.Output.TemplatesFolder, *inline, *templateFile)
	if err != nil {
		fmt.Fprintf(stderr, "clicksign: %v\n", err)
		return exitUsage
	}

	a := &app{
		cfg:    cfg,
		loader: loader,
		logger: logger,
		level:  level,
		out:    out,
		stderr: stderr,
	}
	a.client = func() (*clicksign.Client, error) { return newClient(a.cfg, a.logger, a.observer) }

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "start":
		err = a.start(ctx, rest)
	case "status":
		err = a.status(ctx, rest)
	case "document":
		err = a.document(ctx, rest)
	case "config":
		err = a.configuration(ctx, rest)
	case "callback":
		err = a.callback(rest)
	case "serve":
		err = a.serve(ctx)
	default:
		fmt.Fprintf(stderr, "clicksign: unknown command %q\n", command)
		fs.Usage()
		return exitUsage
	}
	return a.report(err)
}

func newClient(cfg config.Config, logger *slog.Logger, observer clicksign.Observer) (*clicksign.Client, error) {
	opts := []clicksign.Option{clicksign.WithLogger(logger)}
	if observer != nil {
		opts = append(opts, clicksign.WithObserver(observer))
	}
	return clicksign.New(clicksign.Config{
		User:              cfg.User,
		Password:          cfg.Password,
		Environment:       cfg.Environment,
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.Timeout(),
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}, opts...)
}

// report prints err and maps it onto an exit code.
func (a *app) report(err error) int {
	if err == nil {
		return exitOK
	}
	var usageErr usageError
	var invalid *clicksign.ValidationError
	switch {
	case errors.As(err, &usageErr):
		a.printErr(err)
		return exitUsage
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(a.stderr, "clicksign: interrupted")
		return exitFailure
	case errors.As(err, &invalid):
		fmt.Fprintf(a.stderr, "clicksign: %s is invalid\n", invalid.Payload)
		fields := invalid.Errors.Map()
		for _, field := range invalid.Fields() {
			fmt.Fprintf(a.stderr, "  %s: %s\n", field, strings.Join(fields[field], "; "))
		}
		return exitValidation
	case errors.Is(err, clicksign.ErrNotFound):
		a.printErr(err)
		return exitNotFound
	default:
		a.printErr(err)
		return exitFailure
	}
}

func (a *app) printErr(err error) {
	msg := err.Error()
	if !strings.HasPrefix(msg, "clicksign:") {
		msg = "clicksign: " + msg
	}
	fmt.Fprintln(a.stderr, msg)
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}
