package main

import (
	"fmt"

	"github.com/dangerclosesec/peloton/internal/auth"
	"github.com/spf13/cobra"
)

var tokenName string

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenName, "name", "", "Display name carried in the token")

	tokenCmd.AddCommand(tokenIssueCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue API bearer tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:         "issue [external-id]",
	Short:       "Issue a bearer token for a chat platform user",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"offline": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens := auth.NewTokenManager(app.cfg.JWT.Secret, app.cfg.JWT.ExpiryPeriod)
		token, err := tokens.Generate(args[0], tokenName)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}
