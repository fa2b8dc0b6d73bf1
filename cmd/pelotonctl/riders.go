package main

import (
	"fmt"

	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/service"
	"github.com/spf13/cobra"
)

var registerInput service.RegisterInput

func init() {
	registerCmd.Flags().StringVar(&registerInput.ExternalID, "external-id", "", "Chat platform user id")
	registerCmd.Flags().StringVar(&registerInput.DisplayName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&registerInput.PlatformName, "platform-name", "", "Name on the riding platform")
	registerCmd.Flags().Int64Var(&registerInput.RatingID, "rating-id", 0, "Rating service rider id")
	registerCmd.Flags().BoolVar(&registerInput.TermsAccepted, "accept-terms", false, "Record acceptance of the terms of service")

	riderCmd.AddCommand(registerCmd)
	riderCmd.AddCommand(riderActiveCmd("deactivate", false))
	riderCmd.AddCommand(riderActiveCmd("activate", true))
	riderCmd.AddCommand(riderShowCmd)
}

var riderCmd = &cobra.Command{
	Use:   "rider",
	Short: "Manage riders",
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a rider",
	RunE: func(cmd *cobra.Command, args []string) error {
		rider, err := app.engine.Register(cmd.Context(), registerInput)
		if err != nil {
			return err
		}
		return printJSON(rider)
	},
}

func riderActiveCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [rider]",
		Short: fmt.Sprintf("%s a rider; memberships are kept", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rider, err := resolveRider(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var updated *model.Rider
			if active {
				updated, err = app.engine.ActivateRider(cmd.Context(), rider.ID)
			} else {
				updated, err = app.engine.DeactivateRider(cmd.Context(), rider.ID)
			}
			if err != nil {
				return err
			}
			return printJSON(updated)
		},
	}
}

var riderShowCmd = &cobra.Command{
	Use:   "show [rider]",
	Short: "Show a rider's profile with club and team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rider, err := resolveRider(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		profile, err := app.queries.Profile(cmd.Context(), rider.ID)
		if err != nil {
			return err
		}
		return printJSON(profile)
	},
}
