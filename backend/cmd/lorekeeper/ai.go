package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lore-keeper/backend/internal/orchestrator"
)

func checkCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "check <campaign-id> <text|->",
		Short: "Check proposed lore against a campaign's existing lore",
		Long:  "Check proposed lore against a campaign's existing lore. Pass - to read the text from stdin.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := argOrStdin(cmd, args[1])
			if err != nil {
				return err
			}
			checker := orchestrator.NewConsistencyChecker(opts.client())
			result, err := checker.Check(cmd.Context(), opts.caller(), args[0], text)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), format, result, func(w io.Writer) error {
				if result.IsConsistent {
					fmt.Fprintln(w, "Consistent.")
				} else {
					fmt.Fprintln(w, "Inconsistent.")
				}
				for _, warning := range result.Warnings {
					fmt.Fprintf(w, "  - %s\n", warning)
				}
				return nil
			})
		},
	}
	addOutputFlag(cmd, &format)
	return cmd
}

func deepDiveCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "deep-dive <json|->",
		Short: "Suggest expansions for a JSON lore fragment",
		Long:  "Suggest expansions for a JSON object describing a character, place or event. Pass - to read it from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := argOrStdin(cmd, args[0])
			if err != nil {
				return err
			}
			expander := orchestrator.NewDeepDiveExpander(opts.client())
			result, err := expander.ExpandRaw(cmd.Context(), opts.caller(), raw)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), format, result, func(w io.Writer) error {
				if len(result.Suggestions) == 0 {
					fmt.Fprintln(w, "No suggestions.")
					return nil
				}
				for i, s := range result.Suggestions {
					fmt.Fprintf(w, "%d. %s\n", i+1, s)
				}
				return nil
			})
		},
	}
	addOutputFlag(cmd, &format)
	return cmd
}
