package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/gemchat/internal/session"
)

// pickerState is the session picker overlay. Row 0 is "New Chat";
// stored sessions follow, most recently updated first.
type pickerState struct {
	sessions []*session.ChatSession
	cursor   int
}

func (m *Model) openPicker() {
	m.mode = modePicker
	m.picker = pickerState{sessions: m.ctrl.Sessions()}
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc", "q":
			m.mode = modeChat
			m.refreshTranscript()

		case "up", "k":
			m.picker.cursor--
			if m.picker.cursor < 0 {
				m.picker.cursor = len(m.picker.sessions)
			}

		case "down", "j":
			m.picker.cursor++
			if m.picker.cursor > len(m.picker.sessions) {
				m.picker.cursor = 0
			}

		case "enter":
			if m.picker.cursor == 0 {
				m.ctrl.NewChat()
			} else {
				target := m.picker.sessions[m.picker.cursor-1]
				if err := m.ctrl.Select(target.ID); err != nil {
					m.err = err
				}
			}
			m.mode = modeChat
			m.refreshTranscript()
			m.viewport.GotoBottom()

		case "d", "x":
			if m.picker.cursor > 0 {
				target := m.picker.sessions[m.picker.cursor-1]
				if err := m.ctrl.Delete(target.ID); err != nil {
					m.err = err
				}
				m.picker.sessions = m.ctrl.Sessions()
				if m.picker.cursor > len(m.picker.sessions) {
					m.picker.cursor = len(m.picker.sessions)
				}
			}
		}
	}

	return m, nil
}

func (m Model) viewPicker() string {
	var b strings.Builder

	b.WriteString(overlayTitleStyle.Render("Sessions"))
	b.WriteString("\n\n")

	rows := []string{pickerRow(m.picker.cursor == 0, "+ New Chat", "")}
	for i, sess := range m.picker.sessions {
		meta := fmt.Sprintf("%d messages, %s",
			len(sess.Messages), sess.UpdatedAt.Format("Jan 2 15:04"))
		rows = append(rows, pickerRow(m.picker.cursor == i+1, sess.Title, meta))
	}
	b.WriteString(strings.Join(rows, "\n"))

	b.WriteString("\n\n")
	b.WriteString(statusBarStyle.Render("enter select  d delete  esc back"))

	overlay := overlayStyle.Width(minInt(m.width-4, 70)).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
}

func pickerRow(selected bool, title, meta string) string {
	label := title
	if meta != "" {
		label += "  " + itemMetaStyle.Render(meta)
	}
	if selected {
		return selectedItemStyle.Render("> " + label)
	}
	return itemStyle.Render(label)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
