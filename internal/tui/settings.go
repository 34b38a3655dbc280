package tui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/models"
)

// Settings overlay rows
const (
	rowModel = iota
	rowPersona
	rowInstruction
	rowClipboard
	rowSave
	settingsRows
)

// settingsState is the settings editor overlay. Edits accumulate in a
// draft and apply only on save; escape discards them.
type settingsState struct {
	draft    config.Settings
	personas []config.Persona
	cursor   int
	editing  bool
	input    textinput.Model
}

func (m *Model) openSettings() {
	personas := config.DefaultPersonas()
	if cfg, err := config.LoadPersonas(); err == nil {
		personas = cfg.Personas
	} else {
		log.Printf("Failed to load personas: %v", err)
	}

	ti := textinput.New()
	ti.CharLimit = 2000
	ti.Width = 60

	m.mode = modeSettings
	m.settings = settingsState{
		draft:    m.ctrl.Settings(),
		personas: personas,
		input:    ti,
	}
}

func (m Model) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case tea.KeyMsg:
		if m.settings.editing {
			switch msg.String() {
			case "enter":
				m.settings.draft.SystemInstruction = m.settings.input.Value()
				m.settings.editing = false
			case "esc":
				m.settings.editing = false
			default:
				m.settings.input, cmd = m.settings.input.Update(msg)
			}
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc", "q":
			m.mode = modeChat
			m.refreshTranscript()

		case "up", "k":
			m.settings.cursor--
			if m.settings.cursor < 0 {
				m.settings.cursor = settingsRows - 1
			}

		case "down", "j":
			m.settings.cursor++
			if m.settings.cursor >= settingsRows {
				m.settings.cursor = 0
			}

		case "left", "h":
			m.cycleSetting(-1)

		case "right", "l":
			m.cycleSetting(1)

		case "enter", " ":
			switch m.settings.cursor {
			case rowInstruction:
				m.settings.input.SetValue(m.settings.draft.SystemInstruction)
				m.settings.input.Focus()
				m.settings.editing = true
				return m, textinput.Blink
			case rowClipboard:
				m.settings.draft.CopyToClipboard = !m.settings.draft.CopyToClipboard
			case rowSave:
				m.ctrl.UpdateSettings(m.settings.draft)
				m.mode = modeChat
				m.refreshTranscript()
			default:
				m.cycleSetting(1)
			}
		}
	}

	return m, nil
}

// cycleSetting steps the value under the cursor in the given direction.
func (m *Model) cycleSetting(dir int) {
	switch m.settings.cursor {
	case rowModel:
		all := models.AllModels()
		idx := 0
		for i, mo := range all {
			if mo.Name == m.settings.draft.Model {
				idx = i
				break
			}
		}
		idx = (idx + dir + len(all)) % len(all)
		m.settings.draft.Model = all[idx].Name

	case rowPersona:
		if len(m.settings.personas) == 0 {
			return
		}
		idx := -1
		for i, p := range m.settings.personas {
			if p.SystemInstruction == m.settings.draft.SystemInstruction {
				idx = i
				break
			}
		}
		idx = (idx + dir + len(m.settings.personas)) % len(m.settings.personas)
		m.settings.draft.SystemInstruction = m.settings.personas[idx].SystemInstruction

	case rowClipboard:
		m.settings.draft.CopyToClipboard = !m.settings.draft.CopyToClipboard
	}
}

// personaName maps the draft instruction back to a persona, or "custom".
func (m Model) personaName() string {
	for _, p := range m.settings.personas {
		if p.SystemInstruction == m.settings.draft.SystemInstruction {
			return p.Name
		}
	}
	return "custom"
}

func (m Model) viewSettings() string {
	var b strings.Builder

	b.WriteString(overlayTitleStyle.Render("Settings"))
	b.WriteString("\n\n")

	instruction := m.settings.draft.SystemInstruction
	if len(instruction) > 50 {
		instruction = instruction[:50] + "..."
	}

	clipboard := "off"
	if m.settings.draft.CopyToClipboard {
		clipboard = "on"
	}

	rows := []struct {
		label string
		value string
	}{
		{"Model", m.settings.draft.Model},
		{"Persona", m.personaName()},
		{"Instruction", instruction},
		{"Copy replies", clipboard},
		{"Save", ""},
	}

	for i, row := range rows {
		line := row.label
		if row.value != "" {
			line = fmt.Sprintf("%-14s %s", row.label, itemMetaStyle.Render(row.value))
		}
		if i == m.settings.cursor {
			b.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.settings.editing {
		b.WriteString("\n")
		b.WriteString(itemStyle.Render("System instruction:"))
		b.WriteString("\n")
		b.WriteString(m.settings.input.View())
	}

	b.WriteString("\n")
	b.WriteString(statusBarStyle.Render("arrows change  enter apply  esc back"))

	overlay := overlayStyle.Width(minInt(m.width-4, 76)).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
}
