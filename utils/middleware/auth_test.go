package middleware

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub-ng/api/model"
	"github.com/learnhub-ng/api/utils/auth"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthTestApp(t *testing.T, expiry time.Duration) (*fiber.App, *auth.JWTManager, *model.User) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	user := model.User{
		Email:        fmt.Sprintf("%s@test.learnhub.ng", t.Name()),
		PasswordHash: "not-a-real-hash",
		Name:         "Test Student",
		Role:         model.RoleStudent,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: "test-secret",
		Expiry: expiry,
		Issuer: "learnhub-ng-api",
	})

	app := fiber.New()
	app.Get("/protected", NewAuthMiddleware(jwtManager, db).Required(), func(c *fiber.Ctx) error {
		userID, ok := GetUserID(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"user_id": userID})
	})

	return app, jwtManager, &user
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	app, jwtManager, user := newAuthTestApp(t, time.Hour)

	token, jti, err := jwtManager.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if jti == "" {
		t.Error("expected a token id")
	}

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 for a valid token, got %d", resp.StatusCode)
	}
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	app, _, _ := newAuthTestApp(t, time.Hour)

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", resp.StatusCode)
	}
}

func TestAuthRequiredRejectsMalformedHeader(t *testing.T) {
	app, _, _ := newAuthTestApp(t, time.Hour)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 for a malformed header, got %d", resp.StatusCode)
	}
}

func TestAuthRequiredRejectsExpiredToken(t *testing.T) {
	app, jwtManager, user := newAuthTestApp(t, -time.Hour)

	token, _, err := jwtManager.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 for an expired token, got %d", resp.StatusCode)
	}
}

func TestAuthRequiredRejectsUnknownUser(t *testing.T) {
	app, jwtManager, user := newAuthTestApp(t, time.Hour)

	token, _, err := jwtManager.GenerateAccessToken(user.ID+42, user.Email, string(user.Role))
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 for a token without a matching user, got %d", resp.StatusCode)
	}
}
