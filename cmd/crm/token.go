package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hugh/go-crm/internal/auth"
	"github.com/hugh/go-crm/internal/database/models"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var tokenEmail string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a session token for an existing user",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email of the user to sign in as")
	_ = tokenCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, _, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)

	var user models.User
	if err := db.WithContext(cmd.Context()).
		Where("email = ?", strings.TrimSpace(tokenEmail)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no user with email %q", tokenEmail)
		}
		return err
	}
	if user.EmailVerifiedAt == nil {
		return fmt.Errorf("%s has not verified their email; run crm verify first", user.Email)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry(), cfg.JWT.Issuer)
	token, err := jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
