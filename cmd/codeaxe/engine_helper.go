package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"codeaxe/internal/commands"
	"codeaxe/internal/config"
	"codeaxe/internal/errors"
	"codeaxe/internal/history"
	"codeaxe/internal/host"
	"codeaxe/internal/paths"
	"codeaxe/internal/profile"
	"codeaxe/internal/slogutil"
	"codeaxe/internal/symbols"
)

// environment is what every command needs: workspace root, configuration,
// logger and the optional history store.
type environment struct {
	root     string
	cfg      *config.Config
	logger   *slog.Logger
	profiles *profile.Set
	history  *history.Store
	closers  []io.Closer
}

// newEnvironment loads configuration for the workspace containing target
// (a file or directory; the current directory when empty).
func newEnvironment(target string, withHistory bool) (*environment, error) {
	if target == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.New(errors.InternalError, "failed to get current directory", err)
		}
		target = cwd
	}
	env := &environment{root: paths.FindWorkspaceRoot(target)}

	var err error
	if configFlag != "" {
		env.cfg, err = config.LoadConfigFile(configFlag)
	} else {
		env.cfg, err = config.LoadConfig(env.root)
	}
	if err != nil {
		return nil, errors.New(errors.ConfigError, "failed to load config", err)
	}
	if err := env.cfg.Validate(); err != nil {
		return nil, errors.New(errors.ConfigError, err.Error(), err)
	}

	logFile := config.ResolvePath(env.root, env.cfg.Logging.File)
	logger, closer, err := slogutil.Setup(os.Stderr, slogutil.LevelFromVerbosity(verboseFlag, quietFlag), logFile, env.cfg.Logging)
	env.logger = logger
	env.closers = append(env.closers, closer)
	if err != nil {
		logger.Warn("Failed to open log file", "path", logFile, "error", err)
	}

	env.profiles = profile.Default()
	if p := env.cfg.Analysis.ProfilesPath; p != "" {
		set, err := profile.LoadFile(config.ResolvePath(env.root, p))
		if err != nil {
			env.Close()
			return nil, errors.New(errors.ConfigError, "failed to load language profiles", err)
		}
		env.profiles = set
	}

	if withHistory && env.cfg.History.Enabled {
		store, err := history.Open(config.ResolvePath(env.root, env.cfg.History.Path), env.cfg.History.Compress, logger)
		if err != nil {
			// Edits still work without a history log.
			logger.Warn("Failed to open edit history", "error", err)
		} else {
			env.history = store
			env.closers = append(env.closers, store)
		}
	}

	logger.Debug("Environment ready", "root", env.root, "provider", env.cfg.Provider.Default)
	return env, nil
}

// Close releases the history store and log file.
func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
	e.closers = nil
}

func (e *environment) provider(name string) (symbols.Provider, error) {
	if name == "" {
		name = providerFlag
	}
	return host.NewProvider(e.cfg, e.root, name, symbolsFlag, e.logger)
}

func (e *environment) providerName() string {
	switch {
	case symbolsFlag != "":
		return config.ProviderFile
	case providerFlag != "":
		return providerFlag
	}
	return e.cfg.Provider.Default
}

func (e *environment) options() commands.Options {
	return commands.OptionsFromConfig(e.cfg, e.profiles)
}

// fileHost builds a host for file with the cursor taken from --line/--col.
func (e *environment) fileHost(file string, line, col int) (*host.FileHost, error) {
	provider, err := e.provider("")
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", file, err)
	}
	return &host.FileHost{
		Root:    e.root,
		Path:    abs,
		Cursor:  host.CursorFromFlags(line, col),
		Symbols: provider,
		History: e.history,
		Logger:  e.logger,
	}, nil
}

// newContext returns a context cancelled on interrupt.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
