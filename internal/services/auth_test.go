package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/coursebridge/coursebridge-backend/internal/repos"
	"github.com/coursebridge/coursebridge-backend/internal/requestdata"
	"github.com/coursebridge/coursebridge-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Category{},
		&types.Level{},
		&types.Tag{},
		&types.Course{},
		&types.Lesson{},
		&types.Enrollment{},
		&types.Rating{},
		&types.ChatMessage{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newAuthService(t *testing.T, db *gorm.DB) AuthService {
	t.Helper()
	log := mustTestLogger(t)
	userRepo := repos.NewUserRepo(db, log)
	userTokenRepo := repos.NewUserTokenRepo(db, log)
	return NewAuthService(db, log, userRepo, userTokenRepo, "test-secret", time.Hour, 24*time.Hour)
}

func registerTestUser(t *testing.T, svc AuthService, email string) *types.User {
	t.Helper()
	user := &types.User{
		Email:     email,
		Password:  "hunter22",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
	if err := svc.RegisterUser(context.Background(), user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	return user
}

func TestRegisterLoginContextRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	user := registerTestUser(t, svc, "Ada@Example.COM")
	if user.Role != types.RoleStudent {
		t.Fatalf("default role = %q, want %q", user.Role, types.RoleStudent)
	}

	// Email is folded on registration, so login with the folded form works.
	access, refresh, err := svc.LoginUser(ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("LoginUser returned empty tokens")
	}

	authedCtx, err := svc.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil {
		t.Fatal("no request data in context")
	}
	if rd.UserID != user.ID {
		t.Fatalf("context user = %s, want %s", rd.UserID, user.ID)
	}
	if rd.Role != types.RoleStudent {
		t.Fatalf("context role = %q, want %q", rd.Role, types.RoleStudent)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)

	registerTestUser(t, svc, "ada@example.com")

	if _, _, err := svc.LoginUser(context.Background(), "ada@example.com", "wrong"); err == nil {
		t.Fatal("LoginUser accepted a wrong password")
	}
	if _, _, err := svc.LoginUser(context.Background(), "nobody@example.com", "hunter22"); err == nil {
		t.Fatal("LoginUser accepted an unknown email")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)

	registerTestUser(t, svc, "ada@example.com")

	dup := &types.User{Email: "ADA@example.com", Password: "pw", FirstName: "A", LastName: "L"}
	if err := svc.RegisterUser(context.Background(), dup); err == nil {
		t.Fatal("RegisterUser accepted a duplicate email")
	}
}

func TestRefreshIssuesWorkingTokens(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	user := registerTestUser(t, svc, "ada@example.com")
	_, refresh, err := svc.LoginUser(ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	access2, refresh2, err := svc.RefreshUser(ctx, refresh)
	if err != nil {
		t.Fatalf("RefreshUser: %v", err)
	}
	if access2 == "" || refresh2 == "" {
		t.Fatal("RefreshUser returned empty tokens")
	}

	authedCtx, err := svc.SetContextFromToken(ctx, access2)
	if err != nil {
		t.Fatalf("SetContextFromToken after refresh: %v", err)
	}
	if rd := requestdata.GetRequestData(authedCtx); rd == nil || rd.UserID != user.ID {
		t.Fatal("refreshed access token does not resolve to the user")
	}
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	user := registerTestUser(t, svc, "ada@example.com")
	_, refresh, err := svc.LoginUser(ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	authedCtx := requestdata.WithRequestData(ctx, &requestdata.RequestData{UserID: user.ID})
	if err := svc.LogoutUser(authedCtx); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}

	if _, _, err := svc.RefreshUser(ctx, refresh); err == nil {
		t.Fatal("RefreshUser accepted a token deleted at logout")
	}
}

func TestSetContextFromTokenRejectsForgery(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	registerTestUser(t, svc, "ada@example.com")
	access, _, err := svc.LoginUser(ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	otherSecret := NewAuthService(db, mustTestLogger(t),
		repos.NewUserRepo(db, mustTestLogger(t)),
		repos.NewUserTokenRepo(db, mustTestLogger(t)),
		"other-secret", time.Hour, 24*time.Hour)
	if _, err := otherSecret.SetContextFromToken(ctx, access); err == nil {
		t.Fatal("token signed with a different secret was accepted")
	}

	if _, err := svc.SetContextFromToken(ctx, "not-a-jwt"); err == nil {
		t.Fatal("garbage token was accepted")
	}
}
