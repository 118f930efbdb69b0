// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Command is the top-level inkwell command.
type Command int

const (
	CmdTUI Command = iota // default: full-screen interface
	CmdRepl
	CmdVersion
	CmdHelp
)

// Args holds the parsed invocation.
type Args struct {
	ConfigPath string // --config PATH
	BackendURL string // --backend URL (overrides config)
	Quiet      bool   // --quiet
	NoWatch    bool   // --no-watch (disable config hot reload)
}

// Version information, set from main at startup.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Parse reads os.Args into a command and its flags. Unknown flags are an
// error; unknown commands fall through to help.
func Parse() (Command, Args, error) {
	raw := os.Args[1:]

	cmd := CmdTUI
	var args Args

	i := 0
	if len(raw) > 0 && !strings.HasPrefix(raw[0], "-") {
		switch raw[0] {
		case "repl", "chat":
			cmd = CmdRepl
		case "version":
			cmd = CmdVersion
		case "help":
			cmd = CmdHelp
		default:
			return CmdHelp, args, fmt.Errorf("unknown command: %s", raw[0])
		}
		i = 1
	}

	for i < len(raw) {
		arg := raw[i]
		name, value, hasValue := splitFlag(arg)

		switch name {
		case "config":
			if !hasValue {
				value, i = takeValue(raw, i)
				if value == "" {
					return cmd, args, fmt.Errorf("--config requires a path")
				}
			} else {
				i++
			}
			args.ConfigPath = value

		case "backend", "b":
			if !hasValue {
				value, i = takeValue(raw, i)
				if value == "" {
					return cmd, args, fmt.Errorf("--backend requires a URL")
				}
			} else {
				i++
			}
			args.BackendURL = value

		case "quiet", "q":
			args.Quiet = true
			i++

		case "no-watch":
			args.NoWatch = true
			i++

		case "version", "v":
			cmd = CmdVersion
			i++

		case "help", "h":
			cmd = CmdHelp
			i++

		default:
			return cmd, args, fmt.Errorf("unknown flag: %s", arg)
		}
	}

	return cmd, args, nil
}

// splitFlag handles both --flag and --flag=value forms.
func splitFlag(arg string) (name, value string, hasValue bool) {
	trimmed := strings.TrimLeft(arg, "-")
	if idx := strings.Index(trimmed, "="); idx >= 0 {
		return trimmed[:idx], trimmed[idx+1:], true
	}
	return trimmed, "", false
}

// takeValue consumes the next raw argument as this flag's value.
func takeValue(raw []string, i int) (string, int) {
	if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
		return raw[i+1], i + 2
	}
	return "", i + 1
}

// PrintVersion writes the build information.
func PrintVersion() {
	fmt.Printf("inkwell %s (%s, built %s)\n", Version, GitCommit, BuildDate)
}

// PrintUsage writes top-level usage.
func PrintUsage() {
	fmt.Println(`inkwell - terminal front-end for the inkwell writing assistant

Usage:
  inkwell [flags]          Start the full-screen interface
  inkwell repl [flags]     Start the line-mode REPL
  inkwell version          Show version information
  inkwell help             Show this help

Flags:
  --config PATH    Use an alternate config file
  --backend URL    Override the backend origin
  --quiet, -q      Suppress informational output
  --no-watch       Disable config hot reload`)
}
