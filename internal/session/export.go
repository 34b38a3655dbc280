package session

import (
	"fmt"
	"strings"

	"github.com/diogo/gemchat/internal/models"
)

// ExportMarkdown renders a session as a Markdown transcript
func (s *Store) ExportMarkdown(id string) (string, error) {
	sess, ok := s.Get(id)
	if !ok {
		return "", fmt.Errorf("session not found: %s", id)
	}

	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(sess.Title)
	sb.WriteString("\n\n")

	sb.WriteString("**Created:** ")
	sb.WriteString(sess.CreatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n**Updated:** ")
	sb.WriteString(sess.UpdatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString(fmt.Sprintf("\n**Messages:** %d\n\n---\n\n", len(sess.Messages)))

	for i, msg := range sess.Messages {
		role := "User"
		if msg.Role == models.RoleModel {
			role = "Gemini"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		if !msg.CreatedAt.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.CreatedAt.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(sess.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String(), nil
}
