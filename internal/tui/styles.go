// Package tui provides the interactive chat interface for gemchat.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorBorder   = lipgloss.Color("#3b4261")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorAccent   = lipgloss.Color("#bb9af7")
	colorError    = lipgloss.Color("#f7768e")
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#414868")
)

var (
	headerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorTextMute)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	modelLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	userBubbleStyle = lipgloss.NewStyle().
			Foreground(colorText).
			PaddingLeft(2)

	modelBubbleStyle = lipgloss.NewStyle().
				PaddingLeft(2)

	inputPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	loadingStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	statusKeyStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	overlayStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	overlayTitleStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	itemStyle = lipgloss.NewStyle().
			Foreground(colorText).
			PaddingLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	itemMetaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Align(lipgloss.Center)

	welcomeTitleStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				Align(lipgloss.Center)
)
