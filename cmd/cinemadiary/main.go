package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/sebastiantruijens/cinemadiary/internal/config"
	"github.com/sebastiantruijens/cinemadiary/internal/logging"
	"github.com/sebastiantruijens/cinemadiary/internal/omdb"
	"github.com/sebastiantruijens/cinemadiary/internal/poster"
	"github.com/sebastiantruijens/cinemadiary/internal/tui"
	"github.com/sebastiantruijens/cinemadiary/internal/watched"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := config.NewFlagSet()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, err := config.FromFlags(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		if config.Code(err) == config.ErrCodeMissingAPIKey {
			fmt.Fprintln(os.Stderr, "Get a free key at https://www.omdbapi.com/apikey.aspx and set OMDB_API_KEY.")
		}
		return 2
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	defer closer.Close()
	slog.SetDefault(logger)
	logger.Info("starting", "data_dir", cfg.DataDir, "config_file", cfg.File)

	storage, err := watched.NewFSStorage(afero.NewOsFs(), cfg.DataDir)
	if err != nil {
		logger.Error("open data directory", "error", err)
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	store := watched.Open(storage, watched.DefaultKey, logger)
	if cfg.ResetWatched {
		if err := store.Reset(); err != nil {
			logger.Error("reset watched list", "error", err)
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			return 1
		}
		logger.Info("watched list cleared")
	}

	client, err := omdb.NewClient(omdb.Options{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		Timeout:   cfg.Timeout,
		CacheSize: cfg.CacheSize,
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 2
	}

	opts := tui.Options{
		Lookup:         client,
		Store:          store,
		Debounce:       cfg.Debounce,
		MinQueryLength: cfg.MinQueryLength,
		Logger:         logger,
	}
	if cfg.Posters {
		opts.Posters = poster.NewRenderer(nil, cfg.Timeout, logger)
	}

	p := tea.NewProgram(tui.New(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("program exited", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		return 1
	}
	return 0
}
