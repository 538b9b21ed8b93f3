package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Inspect and edit the intern note files",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every saved note in intern id order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()
		notes, err := rt.openNotes(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, note := range notes.List() {
			fmt.Fprintf(out, "%s\t%s\n", note.InternID, strings.ReplaceAll(note.Note, "\n", "\\n"))
		}
		return nil
	},
}

var notesGetCmd = &cobra.Command{
	Use:   "get <intern-id>",
	Short: "Print the note for one intern (empty when none is saved)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()
		notes, err := rt.openNotes(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), notes.Text(args[0]))
		return nil
	},
}

var notesSetCmd = &cobra.Command{
	Use:   "set <intern-id> <note>",
	Short: "Save a note and rewrite both note files",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()
		notes, err := rt.openNotes(cmd.Context())
		if err != nil {
			return err
		}
		saved, err := notes.Save(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved note for intern %s\n", saved.InternID)
		return nil
	},
}

var notesVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare the CSV and JSON note files and report differing ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()
		notes, err := rt.openNotes(cmd.Context())
		if err != nil {
			return err
		}
		result, err := notes.Verify(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		csvPath, jsonPath := rt.noteFiles.Paths()
		fmt.Fprintf(out, "csv: %s: %d notes (present=%t)\n", csvPath, result.CSVCount, result.CSVPresent)
		fmt.Fprintf(out, "json: %s: %d notes (present=%t)\n", jsonPath, result.JSONCount, result.JSONPresent)
		if result.Consistent {
			fmt.Fprintln(out, "consistent")
			return nil
		}
		printIDs(cmd, "missing from csv", result.MissingFromCSV)
		printIDs(cmd, "missing from json", result.MissingFromJSON)
		printIDs(cmd, "text mismatch", result.TextMismatch)
		return fmt.Errorf("note files disagree")
	},
}

func printIDs(cmd *cobra.Command, label string, ids []string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", label, strings.Join(ids, ", "))
}

func init() {
	notesCmd.AddCommand(notesListCmd, notesGetCmd, notesSetCmd, notesVerifyCmd)
	rootCmd.AddCommand(notesCmd)
}
