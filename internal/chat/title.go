package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/diogo/gemchat/internal/models"
)

// titleTimeout bounds the one-shot title request so a hung call cannot
// leak the goroutine forever.
const titleTimeout = 30 * time.Second

// maxTitleRunes caps generated titles to a length that fits the session
// picker.
const maxTitleRunes = 60

// autoTitle asks the model to name the session after its first
// exchange. Fire and forget: failures fall back to the default title,
// and renaming a session deleted in the meantime is a no-op.
func (c *Controller) autoTitle(sessionID, userText, reply string) {
	ctx, cancel := context.WithTimeout(context.Background(), titleTimeout)
	defer cancel()

	prompt := fmt.Sprintf(models.TitlePrompt, userText, reply)
	raw, err := c.gen.GenerateText(ctx, c.settings.Get().Model, prompt)
	if err != nil {
		log.Printf("Title generation failed: %v", err)
		raw = ""
	}

	c.sessions.Rename(sessionID, SanitizeTitle(raw))
}

// SanitizeTitle normalizes a model-generated title: quotes and
// backticks are stripped, newlines collapse to spaces, and the result
// is truncated to a display-friendly length. Anything empty after
// cleanup yields the default title.
func SanitizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, "\"'`")
	title = strings.Join(strings.Fields(title), " ")

	if runes := []rune(title); len(runes) > maxTitleRunes {
		title = strings.TrimSpace(string(runes[:maxTitleRunes]))
	}

	if title == "" {
		return models.DefaultTitle
	}
	return title
}
