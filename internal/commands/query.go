package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/diogo/gemchat/internal/api"
	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/models"
	"github.com/diogo/gemchat/internal/render"
)

var (
	colorSuccess = lipgloss.Color("#9ece6a")
	colorSpin    = lipgloss.Color("#bb9af7")
)

// spinner is the loading indicator for one-shot queries. It writes to
// stderr so piped stdout stays clean.
type spinner struct {
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	stopped bool
}

func newSpinner(message string) *spinner {
	return &spinner{
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *spinner) start() {
	go func() {
		defer close(s.done)

		chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		fmt.Fprint(os.Stderr, "\033[?25l")
		frame := 0
		for {
			select {
			case <-s.stop:
				fmt.Fprint(os.Stderr, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				c := lipgloss.NewStyle().Foreground(colorSpin).Render(chars[frame%len(chars)])
				fmt.Fprintf(os.Stderr, "\r\033[K%s %s", c, s.message)
				frame++
			}
		}
	}()
}

func (s *spinner) stopOnce() {
	s.mu.Lock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
	s.mu.Unlock()
	<-s.done
}

// runQuery sends a single prompt and prints the reply. On a terminal
// the reply is rendered as markdown after the stream finishes; when
// piped or redirected, fragments are written raw as they arrive.
func runQuery(prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	settings := loadSettings()
	instruction := settings.SystemInstruction
	if personaFlag != "" {
		persona, err := config.GetPersona(personaFlag)
		if err != nil {
			return fmt.Errorf("failed to load persona %q: %w", personaFlag, err)
		}
		instruction = persona.SystemInstruction
	}

	client := api.NewClient(config.LoadAPIKey(),
		api.WithModel(models.ModelFromName(getModel())))

	req := &api.GenerateRequest{
		SystemInstruction: instruction,
		Contents:          []api.Content{api.TextContent(models.RoleUser, prompt)},
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd())) && outputFlag == ""

	var spin *spinner
	if interactive {
		spin = newSpinner("Waiting for Gemini...")
		spin.start()
	}

	fragments, err := client.GenerateStream(context.Background(), req)
	if err != nil {
		if spin != nil {
			spin.stopOnce()
		}
		return err
	}

	var reply strings.Builder
	for f := range fragments {
		if f.Err != nil {
			if spin != nil {
				spin.stopOnce()
			}
			return f.Err
		}
		reply.WriteString(f.Text)
		if !interactive && outputFlag == "" {
			fmt.Print(f.Text)
		}
	}

	if spin != nil {
		spin.stopOnce()
	}

	text := reply.String()
	if text == "" {
		return fmt.Errorf("empty response")
	}

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		ok := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓")
		fmt.Fprintf(os.Stderr, "%s Saved to %s\n", ok, outputFlag)
	} else if interactive {
		rendered, err := render.MarkdownWithWidth(text, terminalWidth())
		if err != nil {
			rendered = text
		}
		fmt.Print(rendered)
	} else {
		fmt.Println()
	}

	if settings.CopyToClipboard {
		if err := clipboard.WriteAll(text); err == nil {
			fmt.Fprintln(os.Stderr, "Copied to clipboard")
		}
	}

	return nil
}

func loadSettings() config.Settings {
	store, err := config.DefaultStore()
	if err != nil {
		return config.DefaultSettings()
	}
	return store.Get()
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || width > 120 {
		return 100
	}
	return width
}
