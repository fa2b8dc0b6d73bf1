package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dangerclosesec/peloton/internal/config"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/notify"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/spf13/cobra"
)

var (
	activityParams repository.QueryParams
	activityOrg    string
	activitySince  time.Duration
)

func init() {
	activityListCmd.Flags().StringVar(&activityOrg, "org", "", "Only events for this organization (id or name)")
	activityListCmd.Flags().StringVar(&activityParams.Operation, "operation", "", "Only this operation")
	activityListCmd.Flags().StringVar(&activityParams.Outcome, "outcome", "", "Only this outcome")
	activityListCmd.Flags().DurationVar(&activitySince, "since", 0, "Only events newer than this")
	activityListCmd.Flags().IntVar(&activityParams.Limit, "limit", 50, "Maximum number of events")

	activityCmd.AddCommand(activityListCmd)
	activityCmd.AddCommand(activityTailCmd)
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Inspect the activity log",
}

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		if activityOrg != "" {
			org, err := resolveOrg(cmd.Context(), activityOrg)
			if err != nil {
				return err
			}
			activityParams.OrganizationID = &org.ID
		}
		if activitySince > 0 {
			activityParams.StartTime = time.Now().Add(-activitySince)
		}

		events, total, err := app.queries.Activity(cmd.Context(), activityParams)
		if err != nil {
			return err
		}
		for _, event := range events {
			printEvent(event)
		}
		fmt.Printf("%d of %d\n", len(events), total)
		return nil
	},
}

var activityTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow activity as it commits (postgres only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if app.cfg.Database.Driver != config.DriverPostgres {
			return fmt.Errorf("activity tail requires the %s driver", config.DriverPostgres)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		listener := notify.NewListener(app.cfg.DSN(), app.logger)
		return listener.Listen(ctx, func(event model.ActivityEvent) error {
			printEvent(event)
			return nil
		})
	},
}

func printEvent(event model.ActivityEvent) {
	actor := event.ActorExternalID
	if actor == "" && event.ActorID != nil {
		actor = event.ActorID.String()
	}
	org := "-"
	if event.OrganizationID != nil {
		org = event.OrganizationID.String()
	}
	fmt.Printf("%s  %-20s  %-24s  actor=%s org=%s\n",
		event.Timestamp.Format(time.RFC3339), event.Operation, event.Outcome, actor, org)
	if verbose && len(event.Context) > 0 {
		_ = printJSON(event.Context)
	}
}
