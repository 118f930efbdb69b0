// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the line-mode interface: a readline REPL over the
// same backend and session reducer the TUI uses.
//
// Interactive commands (during a session):
//   /help, /h           Show available commands
//   /clear, /c          Start a fresh session
//   /facts              List story facts by category
//   /fact add CAT TEXT  Add a story fact
//   /fact del ID        Delete a story fact
//   /style              Show the writing-style profile
//   /context            Show the promoted retrieval context
//   /history            Show the transcript
//   /save [title]       Archive the transcript
//   /sessions           List archived sessions
//   /export ID          Print an archived session as Markdown
//   /quit, /q           Exit
//   Ctrl+C              Cancel the in-flight generation
//   Ctrl+D              Exit
package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/morganforge/inkwell-tui/internal/backend"
	"github.com/morganforge/inkwell-tui/internal/config"
	"github.com/morganforge/inkwell-tui/internal/model"
	"github.com/morganforge/inkwell-tui/internal/session"
	"github.com/morganforge/inkwell-tui/internal/storage"
	"github.com/morganforge/inkwell-tui/internal/ui/components"
)

var titleCaser = cases.Title(language.English)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ReplInput wraps liner with persistent input history.
type ReplInput struct {
	line         *liner.State
	historyFile  string
	historyLimit int
}

// NewReplInput creates the input reader and loads saved history.
func NewReplInput(cfg *config.Config) *ReplInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile, err := cfg.HistoryPath()
	if err != nil {
		historyFile = ""
	}

	r := &ReplInput{
		line:         line,
		historyFile:  historyFile,
		historyLimit: cfg.REPL.HistoryLimit,
	}
	r.loadHistory()
	return r
}

func (r *ReplInput) loadHistory() {
	if r.historyFile == "" {
		return
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line, recording non-empty input in the history.
func (r *ReplInput) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// saveHistory persists the last historyLimit input lines with 0600 perms.
func (r *ReplInput) saveHistory() {
	if r.historyFile == "" {
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	var buf bytes.Buffer
	if _, err := r.line.WriteHistory(&buf); err != nil {
		return
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if r.historyLimit > 0 && len(lines) > r.historyLimit {
		lines = lines[len(lines)-r.historyLimit:]
	}

	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	for _, l := range lines {
		fmt.Fprintln(f, l)
	}
}

// Close saves history and restores the terminal.
func (r *ReplInput) Close() {
	r.saveHistory()
	r.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ReplSession holds the state of one REPL run.
type ReplSession struct {
	Session *session.Session
	Client  *backend.Client
	Archive *storage.Archive // nil disables /save and friends
	Config  *config.Config
	Quiet   bool

	StartTime time.Time
	Turns     int

	CancelFunc context.CancelFunc
	Input      *ReplInput
}

// NewReplSession creates a REPL session over the given backend.
func NewReplSession(cfg *config.Config, client *backend.Client, archive *storage.Archive, quiet bool) *ReplSession {
	return &ReplSession{
		Session:   session.New(),
		Client:    client,
		Archive:   archive,
		Config:    cfg,
		Quiet:     quiet,
		StartTime: time.Now(),
		Input:     NewReplInput(cfg),
	}
}

// =============================================================================
// REPL LOOP
// =============================================================================

// Run starts the interactive loop and blocks until the user exits.
func Run(cfg *config.Config, client *backend.Client, archive *storage.Archive, quiet bool) error {
	s := NewReplSession(cfg, client, archive, quiet)
	defer s.Input.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	err := client.CheckRunning(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s backend not reachable at %s; start it first\n",
			warningStyle.Render("[Warning]"), cfg.Backend.URL)
	}

	if !s.Quiet {
		printWelcome(s)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			if s.CancelFunc != nil {
				s.CancelFunc()
				s.CancelFunc = nil
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
		}
	}()

	for {
		input, err := s.Input.ReadInput(promptStyle.Render("inkwell> "))
		if err != nil {
			// liner.ErrPromptAborted on Ctrl+C, io.EOF on Ctrl+D.
			fmt.Println()
			printExitSummary(s)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, s)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				printExitSummary(s)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(s)
			return nil
		}

		if err := processPrompt(s, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// =============================================================================
// GENERATION
// =============================================================================

// processPrompt runs one turn: begin, stream, commit or fail.
func processPrompt(s *ReplSession, input string) error {
	turn, err := s.Session.Begin(input)
	if err != nil {
		return err
	}
	token := turn.Token()

	ctx, cancel := context.WithCancel(context.Background())
	s.CancelFunc = cancel
	defer func() {
		s.CancelFunc = nil
		cancel()
	}()

	useMarkdown := IsStdoutTTY()
	startTime := time.Now()
	passages := 0

	fmt.Println()

	handler := backend.StreamHandler{
		OnQueries: func(queries []string) {
			s.Session.ApplyQueries(token, queries)
			if !s.Quiet && len(queries) > 0 {
				fmt.Fprintf(os.Stderr, "%s %s\n",
					infoStyle.Render("[Retrieving]"),
					strings.Join(queries, "; "))
			}
		},
		OnContext: func(passage string) {
			s.Session.ApplyContext(token, passage)
			passages++
		},
		OnText: func(chunk string) {
			s.Session.ApplyText(token, chunk)
			if !useMarkdown {
				fmt.Print(chunk)
			}
		},
	}

	if err := s.Client.Generate(ctx, s.Session.History(), s.Session.Context(), handler); err != nil {
		s.Session.Fail(token)
		return err
	}

	answer := turn.Text()
	s.Session.CommitEnd(token)
	s.Turns++

	if useMarkdown {
		renderer := components.NewMarkdownRenderer(TerminalWidth() - 4)
		fmt.Println(renderer.Render(answer))
	} else {
		fmt.Println()
	}
	fmt.Println()

	if !s.Quiet {
		fmt.Fprintf(os.Stderr, "%s %d passages | %s\n",
			infoStyle.Render("[Done]"),
			passages,
			time.Since(startTime).Round(time.Millisecond))
	}
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands. Returns (shouldContinue, error)
// where shouldContinue=false means exit.
func handleSlashCommand(cmd string, s *ReplSession) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		printHelp()
		return true, nil

	case "/clear", "/c":
		s.Session = session.New()
		fmt.Println(commandStyle.Render("[Session cleared]"))
		return true, nil

	case "/facts":
		return true, printFacts(s)

	case "/fact":
		return true, handleFactCommand(s, args)

	case "/style":
		return true, printStyle(s)

	case "/context":
		printContext(s)
		return true, nil

	case "/history":
		printHistory(s)
		return true, nil

	case "/save":
		return true, handleSaveCommand(s, args)

	case "/sessions":
		return true, printSessions(s)

	case "/export":
		return true, handleExportCommand(s, args)

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

func printFacts(s *ReplSession) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(s))
	defer cancel()

	facts, err := s.Client.ListFacts(ctx)
	if err != nil {
		return err
	}
	if len(facts) == 0 {
		fmt.Println(infoStyle.Render("No story facts yet. Add one with /fact add CATEGORY TEXT"))
		return nil
	}

	categories, grouped := model.GroupFactsByCategory(facts)
	fmt.Println()
	for _, cat := range categories {
		fmt.Println(summaryHeaderStyle.Render(titleCaser.String(cat)))
		for _, fact := range grouped[cat] {
			fmt.Printf("  %s  %s\n", infoStyle.Render(fact.ID), fact.Text)
		}
	}
	fmt.Println()
	return nil
}

func handleFactCommand(s *ReplSession, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: /fact add CATEGORY TEXT | /fact del ID")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(s))
	defer cancel()

	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 3 {
			return fmt.Errorf("usage: /fact add CATEGORY TEXT")
		}
		category := strings.ToLower(args[1])
		if !validCategory(category) {
			return fmt.Errorf("category must be one of: %s", strings.Join(model.FactCategories, ", "))
		}
		text := strings.Join(args[2:], " ")
		if err := s.Client.CreateFact(ctx, model.Fact{Text: text, Category: category}); err != nil {
			return err
		}
		fmt.Println(commandStyle.Render("[Fact added]"))
		return nil

	case "del", "delete", "rm":
		if err := s.Client.DeleteFact(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println(commandStyle.Render("[Fact deleted]"))
		return nil
	}
	return fmt.Errorf("unknown subcommand: %s", args[0])
}

func printStyle(s *ReplSession) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(s))
	defer cancel()

	style, err := s.Client.GetStyle(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Writing Style"))
	fmt.Printf("  %s %s\n", infoStyle.Render("Point of view:"), style.POV)
	fmt.Printf("  %s %s\n", infoStyle.Render("Tense:"), style.Tense)
	notes := style.Style
	if notes == "" {
		notes = "(none)"
	}
	fmt.Printf("  %s %s\n", infoStyle.Render("Notes:"), notes)
	fmt.Println()
	return nil
}

func printContext(s *ReplSession) {
	contextText := s.Session.Context()
	if strings.TrimSpace(contextText) == "" {
		fmt.Println(infoStyle.Render("No retrieval context promoted yet."))
		return
	}
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Retrieved Context"))
	fmt.Println(contextText)
}

func printHistory(s *ReplSession) {
	messages := s.Session.History()
	if len(messages) == 0 {
		fmt.Println(infoStyle.Render("No messages yet."))
		return
	}
	fmt.Println()
	for _, msg := range messages {
		label := "you"
		if msg.Role == model.RoleAssistant {
			label = "inkwell"
		}
		fmt.Printf("%s %s\n", commandStyle.Render("["+label+"]"), msg.Content)
	}
	fmt.Println()
}

func handleSaveCommand(s *ReplSession, args []string) error {
	if s.Archive == nil {
		return fmt.Errorf("transcript archive is unavailable")
	}
	if s.Session.Transcript().Len() == 0 {
		return fmt.Errorf("nothing to save yet")
	}

	title := strings.Join(args, " ")
	id, err := s.Archive.Save(s.Session.Transcript(), s.Session.Context(), title)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", commandStyle.Render("[Saved]"), id)
	return nil
}

func printSessions(s *ReplSession) error {
	if s.Archive == nil {
		return fmt.Errorf("transcript archive is unavailable")
	}

	metas, err := s.Archive.List()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println(infoStyle.Render("No archived sessions."))
		return nil
	}

	fmt.Println()
	for _, meta := range metas {
		fmt.Printf("  %s  %s  %s (%d messages)\n",
			infoStyle.Render(meta.ID),
			meta.CreatedAt.Format("2006-01-02 15:04"),
			meta.Title,
			meta.MessageCount)
	}
	fmt.Println()
	return nil
}

func handleExportCommand(s *ReplSession, args []string) error {
	if s.Archive == nil {
		return fmt.Errorf("transcript archive is unavailable")
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: /export ID")
	}

	markdown, err := s.Archive.ExportMarkdown(args[0])
	if err != nil {
		return err
	}
	fmt.Println(markdown)
	return nil
}

// =============================================================================
// DISPLAY
// =============================================================================

func printWelcome(s *ReplSession) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("inkwell writing assistant"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n", infoStyle.Render("Backend:"), commandStyle.Render(s.Config.Backend.URL))
	fmt.Println()
	fmt.Println(infoStyle.Render("Type a prompt and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

func printHelp() {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/clear, /c", "Start a fresh session"},
		{"/facts", "List story facts by category"},
		{"/fact add CAT TEXT", "Add a story fact"},
		{"/fact del ID", "Delete a story fact"},
		{"/style", "Show the writing-style profile"},
		{"/context", "Show the promoted retrieval context"},
		{"/history", "Show the transcript"},
		{"/save [title]", "Archive the transcript"},
		{"/sessions", "List archived sessions"},
		{"/export ID", "Print an archived session as Markdown"},
		{"/quit, /q", "Exit"},
	}
	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-20s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+C cancels the current generation, Ctrl+D exits"))
	fmt.Println()
}

func printExitSummary(s *ReplSession) {
	if s.Quiet {
		return
	}
	elapsed := time.Since(s.StartTime).Round(time.Second)
	fmt.Println()
	fmt.Printf("%s %d turns | %s\n",
		infoStyle.Render("[Session]"),
		s.Turns,
		elapsed)
}

// =============================================================================
// HELPERS
// =============================================================================

func requestTimeout(s *ReplSession) time.Duration {
	secs := s.Config.Backend.TimeoutSecs
	if secs <= 0 {
		secs = 30
	}
	return time.Duration(secs) * time.Second
}

func validCategory(category string) bool {
	for _, c := range model.FactCategories {
		if c == category {
			return true
		}
	}
	return false
}
