package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/gemchat/internal/models"
	"github.com/diogo/gemchat/internal/session"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved chat sessions",
	Long: `View and manage locally saved chat sessions.

Sessions can be referenced by index from 'history list', by id, by a
title substring, or with @last / @first.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all sessions",
	RunE:  runHistoryClear,
}

var historyExportCmd = &cobra.Command{
	Use:   "export <ref>",
	Short: "Export a session as markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryExport,
}

var exportOutputFlag string

func init() {
	historyExportCmd.Flags().StringVarP(&exportOutputFlag, "output", "o", "", "Write to file instead of stdout")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
}

func openSessions() (*session.Store, error) {
	store, err := session.DefaultStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open sessions: %w", err)
	}
	return store, nil
}

func resolveSession(store *session.Store, ref string) (string, error) {
	return session.NewResolver(store).Resolve(ref)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openSessions()
	if err != nil {
		return err
	}

	sessions := store.List()
	if len(sessions) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTITLE\tMESSAGES\tUPDATED")
	for i, sess := range sessions {
		title := sess.Title
		if len([]rune(title)) > 40 {
			title = string([]rune(title)[:40]) + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n",
			i+1, title, len(sess.Messages), sess.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openSessions()
	if err != nil {
		return err
	}

	id, err := resolveSession(store, args[0])
	if err != nil {
		return err
	}
	sess, ok := store.Get(id)
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}

	fmt.Printf("Title: %s\n", sess.Title)
	fmt.Printf("Created: %s\n", sess.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated: %s\n", sess.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Println()

	for _, msg := range sess.Messages {
		speaker := "You"
		if msg.Role == models.RoleModel {
			speaker = "Gemini"
		}
		fmt.Printf("[%s] %s\n%s\n\n", msg.CreatedAt.Format("15:04"), speaker, msg.Content)
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, err := openSessions()
	if err != nil {
		return err
	}

	id, err := resolveSession(store, args[0])
	if err != nil {
		return err
	}
	if err := store.Delete(id); err != nil {
		return err
	}

	fmt.Println("Session deleted.")
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := openSessions()
	if err != nil {
		return err
	}

	count := len(store.List())
	store.Clear()
	fmt.Printf("Deleted %d sessions.\n", count)
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := openSessions()
	if err != nil {
		return err
	}

	id, err := resolveSession(store, args[0])
	if err != nil {
		return err
	}
	markdown, err := store.ExportMarkdown(id)
	if err != nil {
		return err
	}

	if exportOutputFlag != "" {
		if err := os.WriteFile(exportOutputFlag, []byte(markdown), 0o644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Exported to %s\n", exportOutputFlag)
		return nil
	}

	fmt.Print(markdown)
	return nil
}
