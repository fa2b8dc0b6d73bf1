package main

import (
	"fmt"

	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/dangerclosesec/peloton/internal/service"
	"github.com/spf13/cobra"
)

var (
	orgKind     string
	orgParent   string
	orgRef      int64
	orgNote     string
	orgFilter   repository.OrganizationFilter
	orgListKind string
)

func init() {
	orgCreateCmd.Flags().StringVar(&orgKind, "kind", string(model.OrgKindClub), "Organization kind: club or team")
	orgCreateCmd.Flags().StringVar(&orgParent, "parent", "", "Parent club of a team (id or name)")
	orgCreateCmd.Flags().Int64Var(&orgRef, "external-ref", 0, "External reference id")
	orgCreateCmd.Flags().StringVar(&orgNote, "note", "", "Free-text note")

	orgListCmd.Flags().StringVar(&orgListKind, "kind", "", "Only list this kind")
	orgListCmd.Flags().StringVar(&orgFilter.NamePrefix, "prefix", "", "Only names starting with prefix")
	orgListCmd.Flags().BoolVar(&orgFilter.ActiveOnly, "active", false, "Only active organizations")
	orgListCmd.Flags().IntVar(&orgFilter.Limit, "limit", 100, "Maximum number of results")
	orgListCmd.Flags().IntVar(&orgFilter.Offset, "offset", 0, "Results to skip")

	orgCmd.AddCommand(orgCreateCmd)
	orgCmd.AddCommand(orgListCmd)
	orgCmd.AddCommand(orgShowCmd)
	orgCmd.AddCommand(orgActiveCmd("activate", true))
	orgCmd.AddCommand(orgActiveCmd("deactivate", false))
}

var orgCmd = &cobra.Command{
	Use:     "org",
	Aliases: []string{"organization"},
	Short:   "Manage clubs and teams",
}

var orgCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a club or team with the --as rider as admin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := actor()
		if err != nil {
			return err
		}

		input := service.CreateOrganizationInput{
			Kind: model.OrganizationKind(orgKind),
			Name: args[0],
			Note: orgNote,
		}
		if orgRef > 0 {
			input.ExternalRefID = &orgRef
		}
		if orgParent != "" {
			parent, err := resolveOrg(cmd.Context(), orgParent)
			if err != nil {
				return fmt.Errorf("resolving parent: %w", err)
			}
			input.ParentID = &parent.ID
		}

		org, err := app.engine.CreateOrganization(cmd.Context(), a, input)
		if err != nil {
			return err
		}
		return printJSON(org)
	},
}

var orgListCmd = &cobra.Command{
	Use:   "list",
	Short: "List organizations",
	RunE: func(cmd *cobra.Command, args []string) error {
		orgFilter.Kind = model.OrganizationKind(orgListKind)
		page, err := app.queries.ListOrganizations(cmd.Context(), orgFilter)
		if err != nil {
			return err
		}

		if !verbose {
			for _, org := range page.Organizations {
				fmt.Printf("%s  %-5s  %-6t  %s\n", org.ID, org.Kind, org.Active, org.Name)
			}
			fmt.Printf("%d of %d\n", len(page.Organizations), page.Total)
			return nil
		}
		return printJSON(page)
	},
}

var orgShowCmd = &cobra.Command{
	Use:   "show [org]",
	Short: "Show an organization and its members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		org, err := resolveOrg(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		members, err := app.queries.Members(cmd.Context(), org.ID)
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{"organization": org, "members": members})
	},
}

func orgActiveCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [org]",
		Short: fmt.Sprintf("%s an organization; memberships are kept", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := actor()
			if err != nil {
				return err
			}
			org, err := resolveOrg(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := app.engine.SetOrgActive(cmd.Context(), a, org.ID, active)
			if err != nil {
				return err
			}
			return printJSON(updated)
		},
	}
}
