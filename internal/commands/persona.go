package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/gemchat/internal/config"
)

var personaCmd = &cobra.Command{
	Use:   "persona",
	Short: "Manage system-instruction presets",
}

var personaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available personas",
	RunE:  runPersonaList,
}

var personaShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a persona's instruction",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonaShow,
}

var personaAddCmd = &cobra.Command{
	Use:   "add <name> <instruction>",
	Short: "Add a persona",
	Long: `Add a new persona. Persona names must be unique; delete an
existing persona first to change its instruction.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runPersonaAdd,
}

var personaDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a persona",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonaDelete,
}

var personaDescFlag string

func init() {
	personaAddCmd.Flags().StringVarP(&personaDescFlag, "description", "d", "", "Short description")

	personaCmd.AddCommand(personaListCmd)
	personaCmd.AddCommand(personaShowCmd)
	personaCmd.AddCommand(personaAddCmd)
	personaCmd.AddCommand(personaDeleteCmd)
}

func runPersonaList(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadPersonas()
	if err != nil {
		return fmt.Errorf("failed to load personas: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, p := range cfg.Personas {
		fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Description)
	}
	return w.Flush()
}

func runPersonaShow(cmd *cobra.Command, args []string) error {
	persona, err := config.GetPersona(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Name: %s\n", persona.Name)
	if persona.Description != "" {
		fmt.Printf("Description: %s\n", persona.Description)
	}
	fmt.Printf("\n%s\n", persona.SystemInstruction)
	return nil
}

func runPersonaAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	instruction := ""
	for i, arg := range args[1:] {
		if i > 0 {
			instruction += " "
		}
		instruction += arg
	}

	err := config.AddPersona(config.Persona{
		Name:              name,
		Description:       personaDescFlag,
		SystemInstruction: instruction,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Persona %q saved.\n", name)
	return nil
}

func runPersonaDelete(cmd *cobra.Command, args []string) error {
	if err := config.DeletePersona(args[0]); err != nil {
		return err
	}
	fmt.Printf("Persona %q deleted.\n", args[0])
	return nil
}
