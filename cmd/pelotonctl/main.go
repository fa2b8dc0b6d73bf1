package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dangerclosesec/peloton/internal/audit"
	"github.com/dangerclosesec/peloton/internal/config"
	"github.com/dangerclosesec/peloton/internal/database"
	"github.com/dangerclosesec/peloton/internal/domain"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/dangerclosesec/peloton/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	actorExternalID string
	verbose         bool
)

// app holds what commands share once PersistentPreRunE has run.
var app struct {
	cfg     *config.Config
	store   *repository.Store
	engine  *service.Engine
	queries *service.QueryService
	logger  *slog.Logger
}

func init() {
	rootCmd.PersistentFlags().StringVar(&actorExternalID, "as", "", "External id of the rider performing the operation")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(riderCmd)
	rootCmd.AddCommand(orgCmd)
	rootCmd.AddCommand(memberCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(authzCmd)
}

var rootCmd = &cobra.Command{
	Use:           "pelotonctl",
	Short:         "pelotonctl manages riders, clubs and teams",
	Long:          `pelotonctl runs membership operations directly against the peloton database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		app.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(app.logger)

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		app.cfg = cfg

		// token issuing needs no database
		if cmd.Annotations["offline"] == "true" {
			return nil
		}

		db, err := database.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		app.store = repository.NewStore(db)
		app.engine = service.NewEngine(app.store,
			service.WithLogger(app.logger),
			service.WithForwarder(audit.LogForwarder{Logger: app.logger}),
			service.WithOperationTimeout(cfg.Engine.OperationTimeout),
			service.WithMaxRetries(cfg.Engine.MaxRetries),
		)
		app.queries = service.NewQueryService(app.store, cfg.Engine.OperationTimeout)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repository.Migrate(cmd.Context(), app.store.DB()); err != nil {
			return err
		}
		fmt.Println("Schema migrated successfully")
		return nil
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if kind := domain.KindOf(err); kind != domain.KindStoreUnavailable {
			fmt.Fprintf(os.Stderr, "Outcome: %s\n", domain.OutcomeOf(err))
		}
		os.Exit(1)
	}
}

// actor is the rider named by --as.
func actor() (service.ActorIdentity, error) {
	if actorExternalID == "" {
		return service.ActorIdentity{}, errors.New("--as is required for this command")
	}
	return service.ActorByExternalID(actorExternalID), nil
}

// resolveRider accepts a rider id, external id or display name.
func resolveRider(ctx context.Context, ref string) (*model.Rider, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return app.queries.Rider(ctx, id)
	}
	rider, err := app.queries.FindRiderByExternalID(ctx, ref)
	if err == nil || !errors.Is(err, domain.ErrRiderNotFound) {
		return rider, err
	}
	return app.queries.FindRiderByName(ctx, ref)
}

// resolveOrg accepts an organization id or name.
func resolveOrg(ctx context.Context, ref string) (*model.Organization, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return app.queries.Organization(ctx, id)
	}
	return app.queries.FindOrganizationByName(ctx, ref)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
