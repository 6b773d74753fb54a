package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/auth"
	"github.com/hugh/go-crm/internal/crm"
	"github.com/hugh/go-crm/internal/database"
	"github.com/hugh/go-crm/internal/database/models"
	"github.com/hugh/go-crm/internal/teams"
	"github.com/hugh/go-crm/internal/users"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	seedEmail    string
	seedPassword string
	seedName     string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo account with sample CRM data",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "demo@example.com", "demo account email")
	seedCmd.Flags().StringVar(&seedPassword, "password", "demo password 1", "demo account password")
	seedCmd.Flags().StringVar(&seedName, "name", "Demo", "demo account name")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	userService := users.NewService(db, logger)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry(), cfg.JWT.Issuer)
	authService := auth.NewService(db, jwtService, userService, nil)

	resp, err := authService.Register(cmd.Context(), auth.RegisterInput{
		Email:    seedEmail,
		Password: seedPassword,
		Name:     seedName,
	})
	if errors.Is(err, auth.ErrUserExists) {
		fmt.Fprintf(cmd.OutOrStdout(), "Demo user already exists: %s\n", seedEmail)
		return nil
	}
	if err != nil {
		return fmt.Errorf("registering demo user: %w", err)
	}
	user, err := authService.MarkVerified(cmd.Context(), resp.User.Email)
	if err != nil {
		return fmt.Errorf("verifying demo user: %w", err)
	}
	token, err := jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return err
	}

	// Act as the demo user so the seed goes through the same access checks as
	// the API.
	ctx := auth.WithIdentity(cmd.Context(), auth.Identity{
		Email:    user.Email,
		Subject:  user.ID.String(),
		Provider: auth.ProviderSession,
	})

	list, err := teams.NewService(db, logger).List(ctx)
	if err != nil {
		return fmt.Errorf("finding demo team: %w", err)
	}
	if len(list) == 0 {
		return errors.New("demo user has no team")
	}
	teamID := list[0].ID

	if err := seedRecords(ctx, db, logger, teamID, user.ID); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Demo data created.\nEmail: %s\nTeam: %s\nToken: %s\n",
		user.Email, list[0].Name, token)
	return nil
}

func seedRecords(ctx context.Context, db *gorm.DB, logger *slog.Logger, teamID, userID uuid.UUID) error {
	contacts := crm.NewContacts(db, logger)
	projects := crm.NewProjects(db, logger)
	tasks := crm.NewTasks(db, logger)
	activities := crm.NewActivities(db, logger)

	jane, err := contacts.Create(ctx, teamID, crm.ContactInput{
		Name:    "Jane Cooper",
		Email:   "jane.cooper@example.com",
		Phone:   "+1 555 0100",
		Company: "Cooper Residence",
		Tags:    []string{"kitchen", "referral"},
	})
	if err != nil {
		return fmt.Errorf("seeding contacts: %w", err)
	}
	mark, err := contacts.Create(ctx, teamID, crm.ContactInput{
		Name:    "Mark Ellis",
		Email:   "mark@ellisproperties.example",
		Company: "Ellis Properties",
		Tags:    []string{"commercial"},
	})
	if err != nil {
		return fmt.Errorf("seeding contacts: %w", err)
	}

	now := time.Now()
	start := now.AddDate(0, 0, -14).UnixMilli()
	kitchenValue, officeValue := 18500.0, 42000.0

	kitchen, err := projects.Create(ctx, teamID, crm.ProjectInput{
		ContactID:  jane.ID,
		Title:      "Kitchen remodel",
		Status:     models.ProjectStatusActive,
		Value:      &kitchenValue,
		StartDate:  &start,
		AssignedTo: &userID,
	})
	if err != nil {
		return fmt.Errorf("seeding projects: %w", err)
	}
	if _, err := projects.Create(ctx, teamID, crm.ProjectInput{
		ContactID: mark.ID,
		Title:     "Office fit-out",
		Status:    models.ProjectStatusQuote,
		Value:     &officeValue,
	}); err != nil {
		return fmt.Errorf("seeding projects: %w", err)
	}

	due := now.AddDate(0, 0, 3).UnixMilli()
	if _, err := tasks.Create(ctx, teamID, crm.TaskInput{
		ProjectID:  &kitchen.ID,
		ContactID:  &jane.ID,
		Title:      "Order cabinets",
		Priority:   models.TaskPriorityHigh,
		DueDate:    &due,
		AssignedTo: &userID,
	}); err != nil {
		return fmt.Errorf("seeding tasks: %w", err)
	}
	if _, err := tasks.Create(ctx, teamID, crm.TaskInput{
		ContactID: &mark.ID,
		Title:     "Send revised quote",
	}); err != nil {
		return fmt.Errorf("seeding tasks: %w", err)
	}

	for _, in := range []crm.ActivityInput{
		{ContactID: &jane.ID, ProjectID: &kitchen.ID, Type: models.ActivityTypeSiteVisit, Subject: "Measured kitchen", Date: start},
		{ContactID: &mark.ID, Type: models.ActivityTypeCall, Subject: "Discussed office layout", Date: now.AddDate(0, 0, -2).UnixMilli()},
		{ContactID: &jane.ID, Type: models.ActivityTypeEmail, Subject: "Sent cabinet samples", Date: now.UnixMilli()},
	} {
		if _, err := activities.Create(ctx, teamID, in); err != nil {
			return fmt.Errorf("seeding activities: %w", err)
		}
	}
	return nil
}
