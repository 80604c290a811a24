// Command feedbackctl runs operator tasks against the feedback database:
// provisioning admins and cleaning up trial submissions.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"feedback-backend/internal/config"
	"feedback-backend/internal/database"
	"feedback-backend/internal/logger"
	"feedback-backend/internal/repository"
	"feedback-backend/internal/service"
)

// app is the state shared by every subcommand once the root command has run.
type app struct {
	log         zerolog.Logger
	db          *mongo.Database
	maintenance *service.MaintenanceService
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "feedbackctl",
		Short:         "Operator tasks for the feedback backend",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.log = logger.New(cfg.LogLevel, "dev")

			db, err := database.Connect(cmd.Context(), cfg.MongoURI, cfg.DBName)
			if err != nil {
				return err
			}
			a.db = db
			a.maintenance = service.NewMaintenanceService(
				repository.NewAdminRepo(db),
				repository.NewFeedbackRepo(db),
			)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.db == nil {
				return nil
			}
			return database.Disconnect(context.WithoutCancel(cmd.Context()), a.db)
		},
	}

	root.AddCommand(newAdminCmd(a), newFeedbackCmd(a))
	return root
}
