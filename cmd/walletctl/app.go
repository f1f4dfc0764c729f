package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Aidin1998/wallet_system/internal/config"
	"github.com/Aidin1998/wallet_system/internal/notification"
	"github.com/Aidin1998/wallet_system/internal/session"
	"github.com/Aidin1998/wallet_system/internal/storage"
	"github.com/Aidin1998/wallet_system/internal/walletapi"
	"github.com/Aidin1998/wallet_system/pkg/logger"
	"github.com/Aidin1998/wallet_system/pkg/metrics"
	"github.com/Aidin1998/wallet_system/pkg/telemetry"
	"github.com/Aidin1998/wallet_system/pkg/validation"
)

// app wires the components used by every command
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	client    *walletapi.Client
	session   *session.Session
	validator *validation.Validator
	registry  *prometheus.Registry
	stdout    io.Writer
	stderr    io.Writer
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"setup", "create a wallet and make it the active one", runSetup},
	{"show", "print the active wallet", runShow},
	{"transact", "credit or debit the active wallet", runTransact},
	{"transactions", "list a page of transactions", runTransactions},
	{"export", "write the full transaction history", runExport},
	{"summary", "total credits and debits", runSummary},
	{"prefs", "show or change listing preferences", runPrefs},
	{"reset", "forget the active wallet", runReset},
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: walletctl [global flags] <command> [flags]")
	fmt.Fprintln(w, "\nCommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-13s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w, "\nGlobal flags:")
	fmt.Fprint(w, flags.FlagUsages())
}

// run executes one command and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("walletctl", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.SetInterspersed(false)
	configPath := flags.String("config", "", "path to a YAML config file")
	envFile := flags.String("env-file", "", "path to a .env file (default ./.env)")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn or error")
	dumpMetrics := flags.Bool("metrics", false, "print client metrics after the command")
	traceRequests := flags.Bool("trace", false, "write request spans to stderr")
	flags.Usage = func() { usage(stderr, flags) }

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() == 0 {
		usage(stderr, flags)
		return 2
	}
	cmd, ok := findCommand(flags.Arg(0))
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", flags.Arg(0))
		usage(stderr, flags)
		return 2
	}

	a, cleanup, err := newApp(ctx, globalOptions{
		configPath: *configPath,
		envFile:    *envFile,
		logLevel:   *logLevel,
		trace:      *traceRequests,
	}, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	defer cleanup()

	err = cmd.run(ctx, a, flags.Args()[1:])
	if *dumpMetrics {
		if merr := a.writeMetrics(); merr != nil {
			a.logger.Error("Failed to write metrics", zap.Error(merr))
		}
	}
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		a.logger.Debug("Command failed", zap.String("command", cmd.name), zap.Error(err))
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
	trace      bool
}

func newApp(ctx context.Context, opts globalOptions, stdout, stderr io.Writer) (*app, func(), error) {
	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	config.ValidateEnvironment(log)

	store, err := storage.Open(ctx, cfg.Storage.Store(), log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()
	clientMetrics, err := metrics.NewClientMetrics(registry)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	tel := telemetry.Config{ServiceName: "walletctl", ServiceVersion: cfg.App.Version}
	if opts.trace {
		tel.TraceOutput = stderr
	}
	shutdownTelemetry, err := telemetry.Setup(ctx, tel)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	notifier := notification.Multi{notification.NewConsole(stderr), notification.NewLog(log)}
	client, err := walletapi.New(walletapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, notifier, log, walletapi.WithMetrics(clientMetrics))
	if err != nil {
		_ = store.Close()
		_ = shutdownTelemetry(ctx)
		return nil, nil, err
	}

	reloadDelay := cfg.Session.ReloadDelay
	if reloadDelay == 0 {
		reloadDelay = -1
	}
	sess := session.New(client, store, log, session.Options{
		WalletIDKey:    cfg.Storage.WalletIDKey,
		PreferencesKey: cfg.Storage.PreferencesKey,
		ReloadDelay:    reloadDelay,
		OnReset: func() {
			fmt.Fprintln(stderr, "The saved wallet is no longer available. Run `walletctl setup` to create a new one.")
		},
	})

	a := &app{
		cfg:       cfg,
		logger:    log,
		client:    client,
		session:   sess,
		validator: validation.NewValidator(validation.DefaultRules(), log),
		registry:  registry,
		stdout:    stdout,
		stderr:    stderr,
	}
	log.Debug("Client ready",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("base_url", client.BaseURL()),
		zap.String("storage", cfg.Storage.Driver))

	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close store", zap.Error(err))
		}
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Error("Failed to flush traces", zap.Error(err))
		}
		_ = log.Sync()
	}
	return a, cleanup, nil
}

// activeWallet restores the session and requires a wallet to be held
func (a *app) activeWallet(ctx context.Context) (string, error) {
	if err := a.session.Initialize(ctx); err != nil {
		return "", err
	}
	w, ok := a.session.Wallet()
	if !ok {
		return "", errNoWallet
	}
	return w.ID, nil
}

var errNoWallet = errors.New("no wallet is set up, run `walletctl setup` first")

func (a *app) writeMetrics() error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.stdout, mf); err != nil {
			return err
		}
	}
	return nil
}

// flagSet creates a sub command flag set that reports errors instead of exiting
func (a *app) flagSet(name, usage string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: walletctl %s %s\n", name, usage)
		fmt.Fprint(a.stderr, fs.FlagUsages())
	}
	return fs
}
