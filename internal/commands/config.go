package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/models"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting. Available keys:

  model        Gemini model identifier (e.g. gemini-2.5-flash)
  instruction  System instruction applied to every conversation
  clipboard    Copy completed replies to the clipboard (on/off)`,
	Args: cobra.MinimumNArgs(2),
	RunE: runConfigSet,
}

var configModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models",
	RunE:  runConfigModels,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configModelsCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	store, err := config.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}
	settings := store.Get()

	clipboard := "off"
	if settings.CopyToClipboard {
		clipboard = "on"
	}

	fmt.Printf("model:        %s\n", settings.Model)
	fmt.Printf("instruction:  %s\n", settings.SystemInstruction)
	fmt.Printf("clipboard:    %s\n", clipboard)

	if config.LoadAPIKey() == "" {
		fmt.Println("\nNo API key configured. Run 'gemchat auth' to set one.")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	store, err := config.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}
	settings := store.Get()

	key := strings.ToLower(args[0])
	value := strings.Join(args[1:], " ")

	switch key {
	case "model":
		settings.Model = models.ModelFromName(value).Name
	case "instruction":
		settings.SystemInstruction = value
	case "clipboard":
		switch strings.ToLower(value) {
		case "on", "true", "yes":
			settings.CopyToClipboard = true
		case "off", "false", "no":
			settings.CopyToClipboard = false
		default:
			return fmt.Errorf("clipboard must be on or off, got %q", value)
		}
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	store.Set(settings)
	fmt.Printf("%s = %s\n", key, value)
	return nil
}

func runConfigModels(cmd *cobra.Command, args []string) error {
	current := getModel()
	for _, m := range models.AllModels() {
		marker := " "
		if m.Name == current {
			marker = "*"
		}
		fmt.Printf("%s %-24s %s\n", marker, m.Name, m.Description)
	}
	return nil
}
