package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hugh/go-crm/internal/database"
	"github.com/hugh/go-crm/pkg/config"
	"github.com/hugh/go-crm/pkg/util"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "crm",
	Short: "Multi-tenant CRM for small service businesses",
	Long:  "crm serves the team-scoped CRM API: contacts, projects, tasks, activities, files and the dashboard.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, installs the process logger and opens the
// database. Every subcommand that touches data starts here.
func bootstrap() (*config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)
	slog.SetDefault(logger)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
