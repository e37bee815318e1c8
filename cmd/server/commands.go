package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/blog-api/internal/config"
	"github.com/iliyamo/blog-api/internal/database"
	"github.com/iliyamo/blog-api/internal/mailer"
	"github.com/iliyamo/blog-api/internal/queue"
	"github.com/iliyamo/blog-api/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		db, err := database.Open(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Printf("migrations applied (%s)", cfg.DBDriver)
		return nil
	},
}

// mailWorkerCmd delivers verification e-mails published by the API when
// NOTIFY_DRIVER=amqp.
var mailWorkerCmd = &cobra.Command{
	Use:   "mail-worker",
	Short: "Consume user.registered events and send verification e-mails",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		sender, err := mailer.New(cfg.Mail)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		consumer := &queue.VerificationConsumer{
			URL:         cfg.Notify.RabbitMQURL,
			Sender:      sender,
			FrontendURL: cfg.FrontendURL,
			SendTimeout: 15 * time.Second,
			RetryDelay:  10 * time.Second,
		}
		log.Printf("mail worker started (driver=%s)", cfg.Mail.Driver)
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

var promoteAdminCmd = &cobra.Command{
	Use:   "promote-admin <email>",
	Short: "Grant the admin role to an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		db, err := database.Open(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := repository.NewUserRepo(db).PromoteByEmail(ctx, args[0]); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("no account with e-mail %q", args[0])
			}
			return err
		}
		log.Printf("%s is now an admin", args[0])
		return nil
	},
}
