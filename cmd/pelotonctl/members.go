package main

import (
	"context"
	"fmt"

	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var leaveAdminOnly bool

func init() {
	leaveCmd.Flags().BoolVar(&leaveAdminOnly, "admin-only", false, "Give up admin rights but stay a member")

	memberCmd.AddCommand(joinCmd)
	memberCmd.AddCommand(approveCmd)
	memberCmd.AddCommand(rejectCmd)
	memberCmd.AddCommand(grantCmd("add", "Add a rider as an approved member", func(e *service.Engine) grantFunc { return e.AddMember }))
	memberCmd.AddCommand(revokeCmd("remove", "Remove a rider from an organization", func(e *service.Engine) revokeFunc { return e.RemoveMember }))
	memberCmd.AddCommand(leaveCmd)

	adminCmd.AddCommand(grantCmd("add", "Grant a rider admin rights", func(e *service.Engine) grantFunc { return e.AddAdmin }))
	adminCmd.AddCommand(revokeCmd("remove", "Revoke a rider's admin rights", func(e *service.Engine) revokeFunc { return e.RemoveAdmin }))
}

type (
	grantFunc  func(ctx context.Context, approver service.ActorIdentity, targetRiderID, orgID uuid.UUID) (*model.Membership, error)
	revokeFunc func(ctx context.Context, approver service.ActorIdentity, targetRiderID, orgID uuid.UUID) error
)

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Manage memberships and join requests",
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage organization admins",
}

var joinCmd = &cobra.Command{
	Use:   "join [org]",
	Short: "Request to join an organization as the --as rider",
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
		m, err := app.engine.RequestJoin(cmd.Context(), a, org.ID, "")
		if err != nil {
			return err
		}
		return printJSON(m)
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve [org] [rider]",
	Short: "Approve a pending join request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, org, rider, err := targetArgs(cmd.Context(), args)
		if err != nil {
			return err
		}
		m, err := app.engine.ApproveJoin(cmd.Context(), a, rider.ID, org.ID)
		if err != nil {
			return err
		}
		return printJSON(m)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject [org] [rider]",
	Short: "Reject a pending join request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, org, rider, err := targetArgs(cmd.Context(), args)
		if err != nil {
			return err
		}
		if err := app.engine.RejectJoin(cmd.Context(), a, rider.ID, org.ID); err != nil {
			return err
		}
		fmt.Printf("Rejected %s for %s\n", rider.DisplayName, org.Name)
		return nil
	},
}

var leaveCmd = &cobra.Command{
	Use:   "leave [org]",
	Short: "Leave an organization as the --as rider",
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

		role := model.RoleMember
		if leaveAdminOnly {
			role = model.RoleAdmin
		}
		if err := app.engine.Leave(cmd.Context(), a, org.ID, model.KindFor(org.Kind, role)); err != nil {
			return err
		}
		fmt.Printf("Left %s as %s\n", org.Name, role)
		return nil
	},
}

func grantCmd(use, short string, pick func(*service.Engine) grantFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [org] [rider]",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, org, rider, err := targetArgs(cmd.Context(), args)
			if err != nil {
				return err
			}
			m, err := pick(app.engine)(cmd.Context(), a, rider.ID, org.ID)
			if err != nil {
				return err
			}
			return printJSON(m)
		},
	}
}

func revokeCmd(use, short string, pick func(*service.Engine) revokeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [org] [rider]",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, org, rider, err := targetArgs(cmd.Context(), args)
			if err != nil {
				return err
			}
			if err := pick(app.engine)(cmd.Context(), a, rider.ID, org.ID); err != nil {
				return err
			}
			fmt.Printf("Updated %s in %s\n", rider.DisplayName, org.Name)
			return nil
		},
	}
}

func targetArgs(ctx context.Context, args []string) (service.ActorIdentity, *model.Organization, *model.Rider, error) {
	a, err := actor()
	if err != nil {
		return a, nil, nil, err
	}
	org, err := resolveOrg(ctx, args[0])
	if err != nil {
		return a, nil, nil, err
	}
	rider, err := resolveRider(ctx, args[1])
	if err != nil {
		return a, nil, nil, err
	}
	return a, org, rider, nil
}
