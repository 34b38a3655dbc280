// Package commands provides the CLI commands for gemchat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/gemchat/internal/config"
)

var (
	// Global flags
	modelFlag   string
	outputFlag  string
	fileFlag    string
	personaFlag string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gemchat [prompt]",
	Short: "Chat with Google Gemini from the terminal",
	Long: `gemchat is a terminal client for the Google Gemini API.

Examples:
  gemchat chat                       Start the interactive chat TUI
  gemchat "What is Go?"              Send a single query
  gemchat -f prompt.md               Read prompt from file
  cat prompt.md | gemchat            Read prompt from stdin
  gemchat "Hello" -o response.md     Save response to file
  gemchat auth                       Store your API key
  gemchat history list               List saved sessions`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("gemchat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		if fileFlag != "" {
			data, err := os.ReadFile(fileFlag)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			return runQuery(string(data))
		}

		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runQuery(string(data))
		}

		if len(args) > 0 {
			return runQuery(args[0])
		}

		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., gemini-2.5-flash)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().StringVarP(&personaFlag, "persona", "p", "", "Persona to use for this query")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(personaCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(authCmd)
}

// getModel returns the model to use, flag first, then settings.
func getModel() string {
	if modelFlag != "" {
		return modelFlag
	}

	store, err := config.DefaultStore()
	if err != nil {
		return config.DefaultSettings().Model
	}
	return store.Get().Model
}
