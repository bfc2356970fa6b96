package services_test

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taskflow/backend/internal/auth"
	"github.com/taskflow/backend/internal/models"
	"github.com/taskflow/backend/internal/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Project{}, &models.Board{}, &models.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// testHasher uses pbkdf2 to keep test runs fast; argon2 parameters are
// tuned for production.
func testHasher() *auth.Hasher {
	return auth.NewHasher(auth.SchemePBKDF2)
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	svc := services.NewUserService(testHasher())
	user, err := svc.Register(db, services.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "Str0ng-password!",
	})
	if err != nil {
		t.Fatalf("failed to create test user %q: %v", username, err)
	}
	return user
}

func createTestProject(t *testing.T, db *gorm.DB, owner models.GUID, name string) *models.Project {
	t.Helper()

	svc := services.NewProjectService()
	project, err := svc.Create(db, services.ProjectCreate{Name: name}, owner)
	if err != nil {
		t.Fatalf("failed to create test project %q: %v", name, err)
	}
	return project
}

func createTestBoard(t *testing.T, db *gorm.DB, projectID models.GUID, name string) *models.Board {
	t.Helper()

	svc := services.NewBoardService()
	board, err := svc.Create(db, services.BoardCreate{ProjectID: projectID, Name: name})
	if err != nil {
		t.Fatalf("failed to create test board %q: %v", name, err)
	}
	return board
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
