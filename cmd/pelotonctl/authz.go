package main

import (
	"errors"
	"fmt"

	"github.com/dangerclosesec/peloton/internal/auth"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	authzCmd.AddCommand(authzSchemaCmd)
	authzCmd.AddCommand(authzCheckCmd)
}

var authzCmd = &cobra.Command{
	Use:   "authz",
	Short: "Work with the Permify relationship mirror",
}

var authzSchemaCmd = &cobra.Command{
	Use:         "schema",
	Short:       "Write the embedded authorization schema to Permify",
	Annotations: map[string]string{"offline": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		permify, err := permifyService()
		if err != nil {
			return err
		}
		version, err := permify.WriteSchema(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Schema written, version %s\n", version)
		if verbose {
			fmt.Println(auth.Schema)
		}
		return nil
	},
}

var authzCheckCmd = &cobra.Command{
	Use:   "check [org] [permission] [rider]",
	Short: "Ask Permify whether a rider holds a permission on an organization",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		permify, err := permifyService()
		if err != nil {
			return err
		}
		org, err := resolveOrg(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		rider, err := resolveRider(cmd.Context(), args[2])
		if err != nil {
			return err
		}

		allowed, err := permify.CheckPermission(cmd.Context(),
			model.Entity{Type: string(org.Kind), ID: org.ID.String()},
			args[1],
			model.Subject{Type: model.SubjectRider, ID: rider.ID.String()},
		)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s %s: %t\n", rider.DisplayName, args[1], org.Name, allowed)
		return nil
	},
}

func permifyService() (*auth.PermifyService, error) {
	if app.cfg.Permify.Host == "" {
		return nil, errors.New("PERMIFY_HOST is not set")
	}
	opts := []func(*auth.PermifyService){auth.WithTenant(app.cfg.Permify.TenantID)}
	if app.cfg.Permify.SchemaVersion != "" {
		opts = append(opts, auth.WithSchemaVersion(app.cfg.Permify.SchemaVersion))
	}
	return auth.NewPermifyService(app.cfg.Permify.Host, opts...)
}
