package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lore-keeper/backend/internal/diagram"
	"lore-keeper/backend/internal/models"
	"lore-keeper/backend/internal/store"
)

// graphView is what `graph -o yaml|json` prints
type graphView struct {
	Campaign models.Campaign  `json:"campaign" yaml:"campaign"`
	Graph    diagram.Graph    `json:"graph" yaml:"graph"`
	Warnings []models.Warning `json:"warnings" yaml:"warnings"`
}

// loadStore loads one campaign through the API into a fresh store
func loadStore(cmd *cobra.Command, opts *options, campaignID string) (*store.Store, error) {
	st := store.New(opts.client())
	if err := st.Load(cmd.Context(), opts.caller(), campaignID); err != nil {
		return nil, err
	}
	return st, nil
}

func graphCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "graph <campaign-id>",
		Short: "Show the character relationship graph of a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, opts, args[0], format)
		},
	}
	addOutputFlag(cmd, &format)
	return cmd
}

func runGraph(cmd *cobra.Command, opts *options, campaignID, format string) error {
	st, err := loadStore(cmd, opts, campaignID)
	if err != nil {
		return err
	}
	campaign, _ := st.Campaign()
	view := graphView{Campaign: campaign, Graph: st.Diagram(), Warnings: st.Warnings()}
	if view.Warnings == nil {
		view.Warnings = []models.Warning{}
	}

	return writeOutput(cmd.OutOrStdout(), format, view, func(w io.Writer) error {
		fmt.Fprintf(w, "%s (%d characters, %d relationships)\n", campaign.Title, len(view.Graph.Nodes), len(view.Graph.Edges))

		labels := make(map[string]string, len(view.Graph.Nodes))
		for _, n := range view.Graph.Nodes {
			labels[n.ID] = n.Label
			fmt.Fprintf(w, "  [%s] %s @ (%.1f, %.1f)\n", n.Role, n.Label, n.Position.X, n.Position.Y)
		}
		for _, e := range view.Graph.Edges {
			fmt.Fprintf(w, "  %s -%s-> %s\n", labels[e.Source], e.Label, labels[e.Target])
		}
		printWarnings(w, view.Warnings)
		return nil
	})
}

func warningsCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "warnings <campaign-id>",
		Short: "List data-quality warnings of a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(cmd, opts, args[0])
			if err != nil {
				return err
			}
			warnings := st.Warnings()
			if warnings == nil {
				warnings = []models.Warning{}
			}
			return writeOutput(cmd.OutOrStdout(), format, warnings, func(w io.Writer) error {
				if len(warnings) == 0 {
					fmt.Fprintln(w, "No warnings.")
					return nil
				}
				printWarnings(w, warnings)
				return nil
			})
		},
	}
	addOutputFlag(cmd, &format)
	return cmd
}

func printWarnings(w io.Writer, warnings []models.Warning) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "  warning %s: %s\n", warn.Code, warn.Message)
	}
}
