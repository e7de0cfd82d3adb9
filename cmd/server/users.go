package main

import (
	"fmt"

	"task-tracker-api/internal/config"
	"task-tracker-api/internal/database"
	"task-tracker-api/internal/store"

	"github.com/spf13/cobra"
)

var createSuperuserCmd = &cobra.Command{
	Use:   "create-superuser",
	Short: "Create a superuser in the admin company",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if username == "" || password == "" {
			return fmt.Errorf("--username and --password are required")
		}

		identity, closeDB, err := openIdentityStore()
		if err != nil {
			return err
		}
		defer closeDB()
		user, err := identity.ProvisionSuperuser(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		fmt.Printf("Superuser %s created (id %s)\n", user.Username, user.ID)
		return nil
	},
}

var deactivateUserCmd = &cobra.Command{
	Use:   "deactivate-user",
	Short: "Disable a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		if username == "" {
			return fmt.Errorf("--username is required")
		}

		identity, closeDB, err := openIdentityStore()
		if err != nil {
			return err
		}
		defer closeDB()
		if err := identity.SetUserActive(cmd.Context(), username, false); err != nil {
			return err
		}
		fmt.Printf("User %s deactivated\n", username)
		return nil
	},
}

func init() {
	createSuperuserCmd.Flags().String("username", "", "superuser name")
	createSuperuserCmd.Flags().String("password", "", "superuser password")
	deactivateUserCmd.Flags().String("username", "", "user to deactivate")
}

// openIdentityStore connects to the configured database. The returned func
// closes the connection pool.
func openIdentityStore() (*store.IdentityStore, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("database handle: %w", err)
	}
	return store.NewIdentityStore(db), func() { _ = sqlDB.Close() }, nil
}
