package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/gemchat/internal/chat"
	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/models"
	"github.com/diogo/gemchat/internal/render"
	"github.com/diogo/gemchat/internal/session"
)

// Controller is the slice of the chat controller the TUI drives.
type Controller interface {
	Sessions() []*session.ChatSession
	Session(id string) (*session.ChatSession, bool)
	ActiveID() string
	Select(id string) error
	NewChat() *session.ChatSession
	Delete(id string) error
	Settings() config.Settings
	UpdateSettings(config.Settings)
	Send(sessionID, text string, notify func(chat.StreamEvent)) (string, error)
}

type mode int

const (
	modeChat mode = iota
	modePicker
	modeSettings
)

// streamEventMsg wraps controller stream events for the bubbletea loop
type streamEventMsg chat.StreamEvent

// Model is the TUI state
type Model struct {
	ctrl Controller

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	mode     mode
	picker   pickerState
	settings settingsState

	streaming   bool
	streamMsgID string
	events      chan chat.StreamEvent
	err         error

	width  int
	height int
	ready  bool
}

// New creates the chat TUI model.
func New(ctrl Controller) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.CharLimit = 8000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		ctrl:     ctrl,
		textarea: ta,
		spinner:  s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// waitForEvent pumps one stream event into the update loop.
func waitForEvent(events <-chan chat.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		return streamEventMsg(<-events)
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	// Stream events must keep flowing while an overlay is open, or the
	// pump never re-arms and the send control stays disabled forever.
	if event, ok := msg.(streamEventMsg); ok {
		return m.handleStreamEvent(chat.StreamEvent(event))
	}

	switch m.mode {
	case modePicker:
		return m.updatePicker(msg)
	case modeSettings:
		return m.updateSettings(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshTranscript()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			return m, tea.Quit

		case "ctrl+n":
			m.ctrl.NewChat()
			m.err = nil
			m.refreshTranscript()

		case "ctrl+h":
			m.openPicker()
			return m, nil

		case "ctrl+e":
			m.openSettings()
			return m, nil

		case "ctrl+y":
			m.copyLastReply()

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if m.streaming || input == "" {
				break
			}
			if input == "/exit" || input == "/quit" {
				return m, tea.Quit
			}
			return m.startSend(input)
		}

	case spinner.TickMsg:
		if m.streaming {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.streaming {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleStreamEvent folds one stream event into the model, independent
// of the current mode.
func (m Model) handleStreamEvent(event chat.StreamEvent) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	m.streamMsgID = event.MessageID
	if event.Done {
		m.streaming = false
		m.streamMsgID = ""
		m.events = nil
		if m.ctrl.Settings().CopyToClipboard && event.Content != "" {
			clipboard.WriteAll(event.Content)
		}
	} else {
		cmd = waitForEvent(m.events)
	}

	if m.mode == modeChat {
		m.refreshTranscript()
		m.viewport.GotoBottom()
	}

	return m, cmd
}

// startSend submits the input and begins pumping stream events.
func (m Model) startSend(input string) (tea.Model, tea.Cmd) {
	events := make(chan chat.StreamEvent, 64)
	_, err := m.ctrl.Send("", input, func(e chat.StreamEvent) { events <- e })
	if err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.streaming = true
	m.events = events
	m.textarea.Reset()
	m.refreshTranscript()
	m.viewport.GotoBottom()

	return m, tea.Batch(waitForEvent(events), m.spinner.Tick)
}

// copyLastReply puts the most recent model reply on the clipboard.
func (m *Model) copyLastReply() {
	sess, ok := m.ctrl.Session(m.ctrl.ActiveID())
	if !ok {
		return
	}
	for i := len(sess.Messages) - 1; i >= 0; i-- {
		if sess.Messages[i].Role == models.RoleModel {
			clipboard.WriteAll(sess.Messages[i].Content)
			return
		}
	}
}

func (m *Model) layout() {
	headerHeight := 3
	inputHeight := 4
	statusHeight := 1

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - 1
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := m.width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
}

// refreshTranscript rebuilds the viewport from the active session. The
// message still being streamed is shown raw; completed replies are
// rendered as markdown.
func (m *Model) refreshTranscript() {
	sess, ok := m.ctrl.Session(m.ctrl.ActiveID())
	if !ok {
		m.viewport.SetContent("")
		return
	}

	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	var content strings.Builder
	for i, msg := range sess.Messages {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Role == models.RoleUser {
			content.WriteString(userLabelStyle.Render("You") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Content))
		} else {
			content.WriteString(modelLabelStyle.Render("Gemini") + "\n")
			body := msg.Content
			if msg.ID != m.streamMsgID {
				if rendered, err := render.MarkdownWithWidth(body, bubbleWidth-2); err == nil {
					body = strings.TrimRight(rendered, "\n")
				}
			}
			content.WriteString(modelBubbleStyle.Width(bubbleWidth).Render(body))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Starting...")
	}

	switch m.mode {
	case modePicker:
		return m.viewPicker()
	case modeSettings:
		return m.viewSettings()
	}

	contentWidth := m.width - 4
	var sections []string

	settings := m.ctrl.Settings()
	headerParts := []string{
		titleStyle.Render("gemchat"),
		hintStyle.Render("  |  "),
		subtitleStyle.Render(settings.Model),
	}
	if sess, ok := m.ctrl.Session(m.ctrl.ActiveID()); ok {
		headerParts = append(headerParts,
			hintStyle.Render("  |  "),
			subtitleStyle.Render(sess.Title),
		)
	}
	sections = append(sections, headerStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)))

	if sess, ok := m.ctrl.Session(m.ctrl.ActiveID()); !ok || len(sess.Messages) == 0 {
		sections = append(sections, m.renderWelcome())
	} else {
		sections = append(sections, m.viewport.View())
	}

	var inputContent string
	if m.streaming {
		inputContent = fmt.Sprintf("%s %s", m.spinner.View(),
			loadingStyle.Render("Gemini is replying..."))
	} else {
		inputContent = m.textarea.View()
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeTitleStyle.Width(width).Render("Welcome to gemchat"),
		"",
		welcomeStyle.Width(width).Render("Type a message below to start a conversation"),
		"",
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content +
		strings.Repeat("\n", maxInt(0, height-lipgloss.Height(content)-topPadding))
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"^N", "New"},
		{"^H", "Sessions"},
		{"^E", "Settings"},
		{"^Y", "Copy"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusBarStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).
		Render(strings.Join(items, "   "))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Run starts the chat TUI.
func Run(ctrl Controller) error {
	p := tea.NewProgram(New(ctrl), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
