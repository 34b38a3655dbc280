package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/gemchat/internal/config"
)

var authCmd = &cobra.Command{
	Use:   "auth [key]",
	Short: "Store your Gemini API key",
	Long: `Store the Gemini API key used for requests.

With no argument the key is read from a hidden prompt. The key is
written to ` + "~/.gemchat/api_key" + ` with owner-only permissions.
The GEMINI_API_KEY environment variable, when set, takes precedence
over the stored key.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuth,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an API key is configured",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	var key string

	if len(args) > 0 {
		key = args[0]
	} else {
		fmt.Fprint(os.Stderr, "API key: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
		key = string(raw)
	}

	key = strings.TrimSpace(key)
	if err := config.SaveAPIKey(key); err != nil {
		return err
	}

	fmt.Println("API key saved.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	if os.Getenv(config.EnvAPIKey) != "" {
		fmt.Printf("Using API key from %s.\n", config.EnvAPIKey)
		return nil
	}

	if config.LoadAPIKey() != "" {
		path, _ := config.GetAPIKeyPath()
		fmt.Printf("Using API key from %s.\n", path)
		return nil
	}

	fmt.Println("No API key configured. Run 'gemchat auth' to set one.")
	return nil
}
