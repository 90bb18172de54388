// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     repl
// Description: Local terminal REPL. Drives an interpreter session from
//              the keyboard with input history navigation and tab
//              completion, mirroring what the browser terminal does over
//              WebSocket.
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package repl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/chainterm/internal/handlers"
	"github.com/msto63/chainterm/internal/interp"
	"github.com/msto63/chainterm/internal/session"
	"github.com/msto63/chainterm/pkg/core/version"
)

const maxInputHistory = 100

// Logo is the REPL banner
const Logo = "⛓ chainterm"

// Model is the Bubbletea model for the local REPL
type Model struct {
	// State
	width   int
	height  int
	ready   bool
	running bool

	// Components
	input    textinput.Model
	viewport viewport.Model

	// Session
	session *session.Session
	network string

	// Transcript
	lines []transcriptLine

	// Input history navigation
	inputHistory []string
	historyIndex int    // -1 = no navigation active
	currentInput string // stashed input while navigating

	// Completion state
	suggestions []string
	suggestIdx  int
	suggestBase string
}

// Config holds REPL configuration
type Config struct {
	Session *session.Session
	Network string
}

// New creates a REPL model bound to a session
func New(cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a command, 'help' lists everything"
	ti.Prompt = PromptStyle.Render("chainterm> ")
	ti.Focus()
	ti.CharLimit = 2000

	return Model{
		input:        ti,
		session:      cfg.Session,
		network:      cfg.Network,
		historyIndex: -1,
		lines: []transcriptLine{
			{text: fmt.Sprintf("%s v%s on %s", Logo, version.Platform, cfg.Network)},
			{text: "Type 'help' for commands, Tab completes, ↑/↓ browse input history."},
		},
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 1
		footerHeight := 4 // input + status bar + help
		viewportHeight := msg.Height - headerHeight - footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = viewportHeight
		}
		m.input.Width = msg.Width - 16
		m.updateViewportContent()

	case dispatchDoneMsg:
		m.running = false
		m.appendResult(msg)
		m.updateViewportContent()
		m.viewport.GotoBottom()
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyCtrlL:
		m.lines = nil
		m.updateViewportContent()
		return m, nil

	case tea.KeyTab:
		m.completeInput()
		return m, nil

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		input := strings.TrimSpace(m.input.Value())
		if input == "" {
			return m, nil
		}
		m.rememberInput(input)
		m.input.Reset()
		m.resetCompletion()
		m.running = true

		m.lines = append(m.lines, transcriptLine{prompt: true, text: input})
		m.updateViewportContent()
		m.viewport.GotoBottom()

		return m, m.dispatch(input)

	case tea.KeyUp:
		if len(m.inputHistory) > 0 {
			if m.historyIndex == -1 {
				m.currentInput = m.input.Value()
				m.historyIndex = len(m.inputHistory) - 1
			} else if m.historyIndex > 0 {
				m.historyIndex--
			}
			m.input.SetValue(m.inputHistory[m.historyIndex])
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyDown:
		if m.historyIndex != -1 {
			if m.historyIndex < len(m.inputHistory)-1 {
				m.historyIndex++
				m.input.SetValue(m.inputHistory[m.historyIndex])
			} else {
				m.historyIndex = -1
				m.input.SetValue(m.currentInput)
			}
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyPgUp:
		m.viewport.ViewUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.ViewDown()
		return m, nil
	}

	m.resetCompletion()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// rememberInput appends input to the REPL's own navigation history
func (m *Model) rememberInput(input string) {
	if len(m.inputHistory) == 0 || m.inputHistory[len(m.inputHistory)-1] != input {
		m.inputHistory = append(m.inputHistory, input)
		if len(m.inputHistory) > maxInputHistory {
			m.inputHistory = m.inputHistory[len(m.inputHistory)-maxInputHistory:]
		}
	}
	m.historyIndex = -1
	m.currentInput = ""
}

// completeInput cycles through completion candidates for the current input
func (m *Model) completeInput() {
	if m.suggestions == nil {
		m.suggestBase = m.input.Value()
		m.suggestions = m.session.Suggest(m.suggestBase)
		m.suggestIdx = 0
	} else {
		m.suggestIdx = (m.suggestIdx + 1) % (len(m.suggestions) + 1)
	}

	if len(m.suggestions) == 0 {
		return
	}

	// one step past the end restores the typed prefix
	if m.suggestIdx == len(m.suggestions) {
		m.input.SetValue(m.suggestBase)
	} else {
		m.input.SetValue(m.suggestions[m.suggestIdx])
	}
	m.input.CursorEnd()
}

func (m *Model) resetCompletion() {
	m.suggestions = nil
	m.suggestIdx = 0
	m.suggestBase = ""
}

// dispatch runs one line through the session off the UI loop
func (m Model) dispatch(input string) tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		start := time.Now()
		result := sess.Dispatch(context.Background(), input)
		return dispatchDoneMsg{
			input:    input,
			result:   result,
			duration: time.Since(start),
		}
	}
}

// appendResult adds a dispatch result to the transcript
func (m *Model) appendResult(msg dispatchDoneMsg) {
	result := msg.result

	if result.Output == handlers.ClearScreenOutput {
		m.lines = nil
		return
	}

	if result.Output != "" {
		for _, line := range strings.Split(result.Output, "\n") {
			m.lines = append(m.lines, transcriptLine{
				err:  !result.Success,
				text: line,
			})
		}
	}
	if !result.Success && result.Error != interp.KindNone {
		m.lines = append(m.lines, transcriptLine{
			err:     true,
			errCode: string(result.Error),
		})
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Starting chainterm..."
	}

	var b strings.Builder

	b.WriteString(LogoStyle.Render(Logo))
	b.WriteString("\n")
	b.WriteString(ViewportStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return b.String()
}

// renderStatusBar renders network and session information
func (m Model) renderStatusBar() string {
	left := fmt.Sprintf("network: %s", m.network)
	right := fmt.Sprintf("session %s | v%s", shortID(m.session.ID()), version.Platform)

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if padding < 1 {
		padding = 1
	}
	return StatusBarStyle.Width(m.width - 2).Render(left + strings.Repeat(" ", padding) + right)
}

// renderHelpBar renders the keyboard shortcuts
func (m Model) renderHelpBar() string {
	items := []string{
		RenderKeyHint("Enter", "run"),
		RenderKeyHint("Tab", "complete"),
		RenderKeyHint("↑/↓", "history"),
		RenderKeyHint("Ctrl+L", "clear"),
		RenderKeyHint("Ctrl+C", "quit"),
	}
	return HelpStyle.Render(strings.Join(items, "  "))
}

// updateViewportContent rebuilds the scrollback from the transcript
func (m *Model) updateViewportContent() {
	var content strings.Builder

	for _, line := range m.lines {
		switch {
		case line.prompt:
			content.WriteString(PromptStyle.Render("chainterm> ") + InputLineStyle.Render(line.text))
		case line.errCode != "":
			content.WriteString(ErrorCodeStyle.Render("[" + line.errCode + "]"))
		case line.err:
			content.WriteString(ErrorStyle.Render(line.text))
		case strings.HasPrefix(line.text, "Alias expanded:") || strings.HasPrefix(line.text, "Repeating:"):
			content.WriteString(NoteStyle.Render(line.text))
		default:
			content.WriteString(OutputStyle.Render(line.text))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Run starts the REPL
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
