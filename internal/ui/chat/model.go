// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/inkwell-tui/internal/backend"
	"github.com/morganforge/inkwell-tui/internal/config"
	"github.com/morganforge/inkwell-tui/internal/session"
	"github.com/morganforge/inkwell-tui/internal/storage"
	"github.com/morganforge/inkwell-tui/internal/ui/components"
	"github.com/morganforge/inkwell-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving a generation stream
	StateError                  // Showing an error
)

// programRef is the running Bubble Tea program, set from main once the
// program exists. Stream goroutines send their events through it.
var programRef *tea.Program

// SetProgram wires the running program into the chat view. Must be called
// before the first submit.
func SetProgram(p *tea.Program) {
	programRef = p
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state   State
	session *session.Session

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Streaming
	streamingBuffer *StreamingBuffer
	streamingText   string // flushed portion of the active answer
	cancelStream    context.CancelFunc

	// Backend
	client *backend.Client
	cfg    *config.Config

	// Transcript archive (nil when unavailable)
	archive *storage.Archive

	// UI components
	viewport    viewport.Model
	input       textinput.Model
	spinner     components.Spinner
	statusBar   *components.StatusBar
	queriesPane *components.QueriesPane
	contextPane *components.ContextPane
	markdown    *components.MarkdownRenderer

	// Key bindings
	keyMap KeyMap

	// Error state
	lastError error
}

// New creates the chat model. archive may be nil; saving is then disabled.
func New(sess *session.Session, client *backend.Client, cfg *config.Config, archive *storage.Archive, theme *styles.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Write a prompt..."
	ti.CharLimit = 0
	ti.Focus()

	vp := viewport.New(80, 20)

	queriesPane := components.NewQueriesPane(theme)
	queriesPane.Expanded = cfg.UI.ShowQueries
	contextPane := components.NewContextPane(theme)
	contextPane.Expanded = cfg.UI.ShowContext

	var markdown *components.MarkdownRenderer
	if cfg.UI.Markdown {
		markdown = components.NewMarkdownRenderer(76)
	}

	return Model{
		state:           StateReady,
		session:         sess,
		theme:           theme,
		width:           80,
		height:          24,
		streamingBuffer: NewStreamingBufferWithConfig(15, cfg.UI.StreamFPS),
		client:          client,
		cfg:             cfg,
		archive:         archive,
		viewport:        vp,
		input:           ti,
		spinner:         components.NewSpinner(theme),
		statusBar:       components.NewStatusBar(theme),
		queriesPane:     queriesPane,
		contextPane:     contextPane,
		markdown:        markdown,
		keyMap:          DefaultKeyMap(),
	}
}

// Init starts the cursor blink and the backend health check.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, CheckBackendCmd(m.client))
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case BackendStatusMsg:
		if msg.Err != nil {
			m.statusBar.Status = components.StatusOffline
		} else {
			m.statusBar.Status = components.StatusReady
		}
		return m, nil

	case StreamQueriesMsg:
		if m.session.ApplyQueries(msg.TurnID, msg.Queries) {
			if turn := m.session.Active(); turn != nil {
				m.queriesPane.Queries = turn.Queries()
			}
			m.statusBar.Status = components.StatusRetrieving
		}
		return m, nil

	case StreamContextMsg:
		if m.session.ApplyContext(msg.TurnID, msg.Passage) {
			if turn := m.session.Active(); turn != nil {
				m.contextPane.Context = turn.Context()
			}
		}
		return m, nil

	case StreamTokenMsg:
		if m.session.Active() == nil || m.session.Active().Token() != msg.TurnID {
			return m, nil
		}
		m.streamingBuffer.Write(msg.Token)
		m.statusBar.Status = components.StatusStreaming
		return m, nil

	case StreamTickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		if content, ok := m.streamingBuffer.Flush(); ok {
			if turn := m.session.Active(); turn != nil {
				m.session.ApplyText(turn.Token(), content)
				m.streamingText = turn.Text()
			}
			m.refreshViewport()
		}
		return m, streamTickCmd()

	case StreamEndMsg:
		return m.handleStreamEnd(msg)

	case StreamErrorMsg:
		return m.handleStreamError(msg)

	case SnapshotSavedMsg:
		if msg.Err != nil {
			m.lastError = msg.Err
			m.statusBar.Status = components.StatusError
			return m, nil
		}
		m.statusBar.Status = components.StatusReady
		m.statusBar.Message = "Transcript saved"
		return m, clearStatusCmd()

	case ConfigReloadedMsg:
		m.cfg = msg.Config
		m.streamingBuffer.SetMaxFPS(msg.Config.UI.StreamFPS)
		if msg.Config.UI.Markdown {
			m.markdown = components.NewMarkdownRenderer(maxInt(m.width-12, 20))
		} else {
			m.markdown = nil
		}
		m.refreshViewport()
		return m, nil

	case StatusClearMsg:
		m.statusBar.Message = ""
		return m, nil

	case ErrorDismissMsg:
		m.lastError = nil
		if m.state == StateError {
			m.state = StateReady
			m.statusBar.Status = components.StatusReady
		}
		return m, nil
	}

	// Spinner animation and input updates.
	var cmds []tea.Cmd
	if cmd := m.spinner.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	m.viewport.Width = msg.Width
	m.viewport.Height = maxInt(msg.Height-6, 3)
	m.input.Width = maxInt(msg.Width-6, 10)
	m.statusBar.Width = msg.Width
	m.queriesPane.Width = msg.Width
	m.contextPane.Width = msg.Width

	if m.markdown != nil && m.cfg.UI.Markdown {
		m.markdown = components.NewMarkdownRenderer(maxInt(msg.Width-12, 20))
	}
	m.refreshViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		if m.cancelStream != nil {
			m.cancelStream()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.Cancel):
		return m.cancelActiveTurn()

	case key.Matches(msg, m.keyMap.ToggleQueries):
		m.queriesPane.Toggle()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleContext):
		m.contextPane.Toggle()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.SaveSnapshot):
		return m.saveSnapshot()

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

// submit starts a new turn for the typed prompt. Submits are ignored while a
// turn is streaming.
func (m Model) submit() (Model, tea.Cmd) {
	if m.session.Loading() {
		return m, nil
	}
	prompt := strings.TrimSpace(m.input.Value())
	if prompt == "" {
		return m, nil
	}

	turn, err := m.session.Begin(prompt)
	if err != nil {
		return m, nil
	}

	m.input.Reset()
	m.lastError = nil
	m.streamingBuffer.Reset()
	m.streamingText = ""
	m.queriesPane.Queries = nil
	m.contextPane.Context = ""
	m.state = StateStreaming
	m.statusBar.Status = components.StatusRetrieving
	m.refreshViewport()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelStream = cancel

	runner := NewStreamRunner(programRef, m.client)
	history := m.session.History()
	oldContext := m.session.Context()
	token := turn.Token()
	go runner.Run(ctx, history, oldContext, token)

	return m, tea.Batch(m.spinner.Start("Retrieving"), streamTickCmd())
}

// cancelActiveTurn tears down the in-flight stream. The turn is failed, not
// committed: the session keeps its prior context and gains no message.
func (m Model) cancelActiveTurn() (Model, tea.Cmd) {
	turn := m.session.Active()
	if turn == nil {
		return m, nil
	}
	if m.cancelStream != nil {
		m.cancelStream()
		m.cancelStream = nil
	}
	m.session.Fail(turn.Token())
	m.streamingBuffer.Reset()
	m.streamingText = ""
	m.state = StateReady
	m.spinner.Stop()
	m.statusBar.Status = components.StatusReady
	m.refreshViewport()
	return m, nil
}

func (m Model) handleStreamEnd(msg StreamEndMsg) (Model, tea.Cmd) {
	// Drain whatever the buffer still holds before committing.
	if content, ok := m.streamingBuffer.ForceFlush(); ok {
		m.session.ApplyText(msg.TurnID, content)
	}
	if !m.session.CommitEnd(msg.TurnID) {
		return m, nil
	}

	m.streamingText = ""
	m.state = StateReady
	m.cancelStream = nil
	m.spinner.Stop()
	m.statusBar.Status = components.StatusReady
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) handleStreamError(msg StreamErrorMsg) (Model, tea.Cmd) {
	if !m.session.Fail(msg.TurnID) {
		return m, nil
	}

	m.streamingBuffer.Reset()
	m.streamingText = ""
	m.state = StateError
	m.cancelStream = nil
	m.lastError = msg.Error
	m.spinner.Stop()
	m.statusBar.Status = components.StatusError
	m.refreshViewport()
	return m, nil
}

// saveSnapshot writes the current transcript to the archive.
func (m Model) saveSnapshot() (Model, tea.Cmd) {
	if m.archive == nil || m.session.Transcript().Len() == 0 {
		return m, nil
	}

	archive := m.archive
	transcript := m.session.Transcript()
	contextText := m.session.Context()
	m.statusBar.Status = components.StatusSaving

	return m, func() tea.Msg {
		id, err := archive.Save(transcript, contextText, "")
		return SnapshotSavedMsg{ID: id, Err: err}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
