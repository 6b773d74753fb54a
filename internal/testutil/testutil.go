package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-crm/internal/auth"
	"github.com/hugh/go-crm/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing. The pool is
// pinned to one connection because every sqlite :memory: connection is its
// own database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })

	return db
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// AsUser returns a context carrying the user's identity, as the auth
// middleware would.
func AsUser(user *models.User) context.Context {
	return AsEmail(user.Email)
}

func AsEmail(email string) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{
		Email:    email,
		Subject:  email,
		Provider: auth.ProviderSession,
	})
}

// CreateTestUser creates a verified user with a unique email.
func CreateTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	verified := models.NowMillis()
	user := &models.User{
		Email:           "test-" + uuid.New().String()[:8] + "@example.com",
		Name:            name,
		Role:            models.UserRoleMember,
		EmailVerifiedAt: &verified,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPasswordUser creates a verified user that can log in with password.
func CreateTestPasswordUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	verified := models.NowMillis()
	user := &models.User{
		Email:           email,
		Name:            "Test User",
		Role:            models.UserRoleOwner,
		PasswordHash:    hash,
		EmailVerifiedAt: &verified,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTeam creates a team owned by owner with owner as admin.
func CreateTestTeam(t *testing.T, db *gorm.DB, owner *models.User, name string) *models.Team {
	t.Helper()

	team := &models.Team{Name: name, OwnerID: owner.ID}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("failed to create test team: %v", err)
	}
	AddTestMember(t, db, team, owner, models.MemberRoleAdmin)
	return team
}

func AddTestMember(t *testing.T, db *gorm.DB, team *models.Team, user *models.User, role models.MemberRole) *models.TeamMembership {
	t.Helper()

	m := &models.TeamMembership{TeamID: team.ID, UserID: user.ID, Role: role}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

func CreateTestContact(t *testing.T, db *gorm.DB, teamID uuid.UUID, createdBy *models.User, name string) *models.Contact {
	t.Helper()

	c := &models.Contact{
		TeamID:    teamID,
		Name:      name,
		Tags:      models.Tags{},
		CreatedBy: createdBy.ID,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("failed to create test contact: %v", err)
	}
	return c
}

func CreateTestProject(t *testing.T, db *gorm.DB, contact *models.Contact, createdBy *models.User, status models.ProjectStatus, value float64) *models.Project {
	t.Helper()

	p := &models.Project{
		TeamID:    contact.TeamID,
		ContactID: contact.ID,
		Title:     "Project for " + contact.Name,
		Status:    status,
		Value:     &value,
		CreatedBy: createdBy.ID,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

func CreateTestTask(t *testing.T, db *gorm.DB, teamID uuid.UUID, createdBy *models.User, status models.TaskStatus) *models.Task {
	t.Helper()

	task := &models.Task{
		TeamID:    teamID,
		Title:     "Follow up",
		Status:    status,
		Priority:  models.TaskPriorityMedium,
		CreatedBy: createdBy.ID,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// CreateTestActivity creates an activity recorded at createdAt.
func CreateTestActivity(t *testing.T, db *gorm.DB, teamID uuid.UUID, createdBy *models.User, subject string, createdAt int64) *models.Activity {
	t.Helper()

	a := &models.Activity{
		Base:      models.Base{CreatedAt: createdAt},
		TeamID:    teamID,
		Type:      models.ActivityTypeCall,
		Subject:   subject,
		Date:      createdAt,
		CreatedBy: createdBy.ID,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("failed to create test activity: %v", err)
	}
	return a
}

// Outbox records verification tokens instead of sending them.
type Outbox struct {
	mu     sync.Mutex
	tokens map[string]string
}

var _ auth.VerificationSender = (*Outbox)(nil)

func (o *Outbox) SendVerification(_ context.Context, user *models.User, token string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.tokens == nil {
		o.tokens = make(map[string]string)
	}
	o.tokens[user.Email] = token
	return nil
}

// Token returns the last token sent to email, failing the test if none was.
func (o *Outbox) Token(t *testing.T, email string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	token, ok := o.tokens[email]
	if !ok {
		t.Fatalf("no verification sent to %s", email)
	}
	return token
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour, "go-crm")
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	Team       *models.Team
	User       *models.User
	Token      string
}

// NewTestContext creates a DB with one team owned by one user, plus that
// user's token.
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	user := CreateTestUser(t, db, "Owner")
	team := CreateTestTeam(t, db, user, "Acme")
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		Team:       team,
		User:       user,
		Token:      token,
	}
}

// NewMember adds a fresh user to the setup's team and returns it with a token.
func (ts *TestSetup) NewMember(t *testing.T, role models.MemberRole) (*models.User, string) {
	t.Helper()
	user := CreateTestUser(t, ts.DB, "Member")
	AddTestMember(t, ts.DB, ts.Team, user, role)
	return user, GenerateTestToken(t, ts.JWTService, user)
}

// Outsider creates a user with no membership in the setup's team.
func (ts *TestSetup) Outsider(t *testing.T) (*models.User, string) {
	t.Helper()
	user := CreateTestUser(t, ts.DB, "Outsider")
	return user, GenerateTestToken(t, ts.JWTService, user)
}
