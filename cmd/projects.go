package main

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/matiin1402/InternalLinkBot/internal/domain"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the projects offered in the selection menu",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := configFrom(cmd)
		if err != nil {
			return err
		}
		reg, err := buildRegistry(cfg)
		if err != nil {
			return err
		}
		printProjects(cmd.OutOrStdout(), reg.List())
		return nil
	},
}

func printProjects(w io.Writer, projects []domain.Project) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Sitemap"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, p := range projects {
		table.Append([]string{p.ID, p.Name, p.SitemapURL})
	}
	table.Render()
}
