// inkwell TUI - a terminal front-end for the inkwell writing assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/inkwell-tui/internal/backend"
	"github.com/morganforge/inkwell-tui/internal/cli"
	"github.com/morganforge/inkwell-tui/internal/config"
	"github.com/morganforge/inkwell-tui/internal/session"
	"github.com/morganforge/inkwell-tui/internal/storage"
	"github.com/morganforge/inkwell-tui/internal/ui/app"
	"github.com/morganforge/inkwell-tui/internal/ui/chat"
	"github.com/morganforge/inkwell-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args, err := cli.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cli.PrintUsage()
		os.Exit(2)
	}

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	case cli.CmdRepl:
		runRepl(args)
	default:
		runTUI(args)
	}
}

// loadConfig resolves the effective configuration: file, then environment,
// then CLI flags.
func loadConfig(args cli.Args) (*config.Config, string, error) {
	var cfg *config.Config
	var err error
	path := args.ConfigPath

	if path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
		if p, perr := config.ConfigPath(); perr == nil {
			path = p
		}
	}
	if err != nil {
		return nil, "", err
	}

	cfg.ApplyEnvOverrides()
	if args.BackendURL != "" {
		cfg.Backend.URL = args.BackendURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// openArchive opens the transcript archive, or returns nil when the database
// cannot be opened. Saving is simply disabled then.
func openArchive(cfg *config.Config) *storage.Archive {
	path, err := cfg.ArchivePath()
	if err != nil {
		return nil
	}
	archive, err := storage.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: transcript archive unavailable: %v\n", err)
		return nil
	}
	return archive
}

func newBackendClient(cfg *config.Config) *backend.Client {
	return backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL: cfg.Backend.URL,
		Timeout: time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
	})
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(args cli.Args) {
	cfg, cfgPath, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	theme := styles.NewTheme()
	client := newBackendClient(cfg)
	archive := openArchive(cfg)
	if archive != nil {
		defer archive.Close()
	}

	m := app.New(session.New(), client, cfg, archive, theme)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	chat.SetProgram(p)

	// Hot-reload the config file while the TUI runs.
	if cfgPath != "" && !args.NoWatch {
		watcher, werr := config.NewWatcher(cfgPath, 500*time.Millisecond, func(updated *config.Config) {
			p.Send(chat.ConfigReloadedMsg{Config: updated})
		})
		if werr == nil {
			if werr = watcher.Watch(); werr == nil {
				defer watcher.Close()
			}
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running inkwell: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// REPL
// =============================================================================

func runRepl(args cli.Args) {
	cfg, _, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := newBackendClient(cfg)
	archive := openArchive(cfg)
	if archive != nil {
		defer archive.Close()
	}

	if err := cli.Run(cfg, client, archive, args.Quiet); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
