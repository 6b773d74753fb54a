package main

import (
	"fmt"

	"github.com/hugh/go-crm/internal/auth"
	"github.com/hugh/go-crm/internal/users"
	"github.com/spf13/cobra"
)

var verifyEmail string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Mark a password account's email as verified",
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyEmail, "email", "", "email of the account to verify")
	_ = verifyCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry(), cfg.JWT.Issuer)
	authService := auth.NewService(db, jwtService, users.NewService(db, logger), nil)

	user, err := authService.MarkVerified(cmd.Context(), verifyEmail)
	if err != nil {
		return fmt.Errorf("verifying %s: %w", verifyEmail, err)
	}

	logger.Info("email verified", "user_id", user.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Verified %s\n", user.Email)
	return nil
}
