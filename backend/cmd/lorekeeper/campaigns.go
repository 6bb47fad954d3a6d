package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lore-keeper/backend/internal/models"
)

func campaignsCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "List your campaigns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCampaigns(cmd, opts, format)
		},
	}
	addOutputFlag(cmd, &format)
	cmd.AddCommand(campaignsCreateCmd(opts))
	return cmd
}

func runCampaigns(cmd *cobra.Command, opts *options, format string) error {
	campaigns, err := opts.client().ListCampaigns(cmd.Context(), opts.caller())
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), format, campaigns, func(w io.Writer) error {
		if len(campaigns) == 0 {
			fmt.Fprintln(w, "No campaigns.")
			return nil
		}
		for _, c := range campaigns {
			fmt.Fprintf(w, "%s  %s\n", c.ID, c.Title)
		}
		return nil
	})
}

func campaignsCreateCmd(opts *options) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client().CreateCampaign(cmd.Context(), opts.caller(), models.CampaignInput{
				Title:       args[0],
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Campaign description")
	return cmd
}
