package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/gemchat/internal/api"
	"github.com/diogo/gemchat/internal/chat"
	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/models"
	"github.com/diogo/gemchat/internal/session"
	"github.com/diogo/gemchat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat TUI",
	Long: `Start an interactive chat session with Gemini.

Sessions are saved locally and can be resumed later from the session
picker (ctrl+h). Press Esc or Ctrl+C to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	settings, err := config.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}
	sessions, err := session.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open sessions: %w", err)
	}

	modelName := getModel()
	client := api.NewClient(config.LoadAPIKey(),
		api.WithModel(models.ModelFromName(modelName)))

	ctrl := chat.NewController(sessions, settings, client)
	return tui.Run(ctrl)
}
