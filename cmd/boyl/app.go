package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"boyl/internal/config"
	"boyl/internal/copier"
	"boyl/internal/eventloop"
	"boyl/internal/logging"
	"boyl/internal/platform"
	"boyl/internal/progress"
	"boyl/internal/registry"
	"boyl/internal/telemetry"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	console   *logging.Console
	logger    *log.Logger
	paths     platform.Paths
	cfg       config.Config
	reg       *registry.Registry
	telemetry *telemetry.Provider
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	console := logging.NewConsole(stderr)
	return &app{
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		console: console,
		logger:  logging.New(console, platform.AppName, log.InfoLevel),
	}
}

// load resolves paths, reads the config file and the registry, and installs
// tracing when an OTLP endpoint is configured.
func (a *app) load(ctx context.Context) error {
	paths, err := platform.DefaultPaths()
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}
	a.paths = paths

	cfg, err := config.Load(paths.ConfigPath, config.Default(paths.TemplatesDir))
	if err != nil {
		return fmt.Errorf("load config %s: %w", paths.ConfigPath, err)
	}
	a.cfg = cfg
	a.logger.SetLevel(cfg.LogLevel())
	log.SetDefault(a.logger)

	reg, err := registry.Load(paths.RegistryPath, registry.NewStore(cfg.Templates.Dir))
	if err != nil {
		return err
	}
	a.reg = reg

	tp, err := telemetry.Setup(ctx)
	if err != nil {
		a.logger.Warn("tracing disabled", "err", err)
	}
	a.telemetry = tp
	a.logger.Debug("loaded", "config", paths.ConfigPath, "registry", paths.RegistryPath,
		"templates", cfg.Templates.Dir, "workers", cfg.Copy.Workers)
	return nil
}

func (a *app) close() {
	if a.telemetry == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.Warn("flush traces", "err", err)
	}
}

// runScreen takes over the terminal and runs screen until it exits. Log
// output is held back meanwhile and printed once the terminal is restored.
func (a *app) runScreen(ctx context.Context, screen eventloop.Screen) error {
	tty, err := eventloop.OpenTTY(os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("this command needs an interactive terminal: %w", err)
	}
	loop := eventloop.New(tty, eventloop.Options{
		QueueSize:  a.cfg.UI.QueueSize,
		ResizePoll: a.cfg.ResizePoll(),
		Logger:     a.logger,
	})
	return logging.Muted(a.console, func() error {
		return loop.Run(ctx, screen)
	})
}

// replicate copies src to dst through filter with the configured worker
// pool, showing a progress line when stderr is a terminal.
func (a *app) replicate(ctx context.Context, src, dst string, filter copier.Filter) error {
	opts := []copier.Option{
		copier.WithWorkers(a.cfg.Copy.Workers),
		copier.WithLogger(a.logger),
	}

	f, ok := a.stderr.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return copier.New(opts...).Replicate(ctx, src, dst, filter)
	}

	events := make(chan progress.Event, 64)
	ind := progress.NewIndicator(f, func() int {
		w, _, err := term.GetSize(int(f.Fd()))
		if err != nil {
			return 0
		}
		return w
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ind.Run(ctx, events)
	}()
	opts = append(opts, copier.WithProgress(&progress.ChanEmitter{Ch: events}))

	return logging.Muted(a.console, func() error {
		err := copier.New(opts...).Replicate(ctx, src, dst, filter)
		close(events)
		<-done
		return err
	})
}

// confirm asks a yes/no question on stdin. Anything but y/yes is no.
func (a *app) confirm(question string) (bool, error) {
	fmt.Fprintf(a.stdout, "%s [y/N] ", question)
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// terminalWidth reports stdout's width, or fallback when it is not a
// terminal.
func (a *app) terminalWidth(fallback int) int {
	f, ok := a.stdout.(*os.File)
	if !ok {
		return fallback
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
