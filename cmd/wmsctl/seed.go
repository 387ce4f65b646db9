package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

const adminPasswordEnv = config.EnvPrefix + "_ADMIN_PASSWORD"

var (
	adminUsername string
	adminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the status catalog and the initial admin user",
	Long: `Seeding is idempotent: statuses are upserted and an existing admin
user is left untouched. The password may also be supplied with ` + adminPasswordEnv + `.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() {
			_ = log.Sync()
		}()

		password := adminPassword
		if password == "" {
			password = os.Getenv(adminPasswordEnv)
		}
		if adminUsername != "" && password == "" {
			return errors.New("an admin password is required (--admin-password or " + adminPasswordEnv + ")")
		}

		db, err := persistence.NewDatabase(&cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Warn("Failed to close database", zap.Error(err))
			}
		}()
		if db.Driver == "sqlite" {
			if err := db.AutoMigrate(); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return persistence.NewSeeder(db.DB, log).Seed(ctx, persistence.SeedInput{
			AdminUsername: adminUsername,
			AdminPassword: password,
		})
	},
}

func init() {
	seedCmd.Flags().StringVar(&adminUsername, "admin-username", "admin", "username of the admin to create; empty seeds statuses only")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "", "password of the admin to create")
}
