package main

import (
	"fmt"

	"github.com/hugh/go-crm/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	logger.Info("migrations applied successfully")
	return nil
}
