package resettoken_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkpress/inkpress/internal/admins"
	"github.com/inkpress/inkpress/internal/resettoken"
)

func setupResetIntegrationTest(t *testing.T) (*admins.Service, *resettoken.Service, *admins.Store, func()) {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("skip integration test: TEST_POSTGRES_DSN is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("skip integration test: cannot connect to database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skip integration test: database ping failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	store := admins.NewStore(pool)
	adminSvc := admins.NewService(logger, store)
	resetSvc := resettoken.NewService(logger, store)
	return adminSvc, resetSvc, store, func() { pool.Close() }
}

func createResetTestAdmin(t *testing.T, svc *admins.Service) admins.Admin {
	t.Helper()
	ctx := context.Background()
	email := fmt.Sprintf("reset-%d@integration.test", time.Now().UnixNano())
	admin, err := svc.Create(ctx, email, "Secret1", "")
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func TestIssueAndConsumeResetToken(t *testing.T) {
	adminSvc, resetSvc, _, cleanup := setupResetIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	admin := createResetTestAdmin(t, adminSvc)

	plain, expiresAt, err := resetSvc.Issue(ctx, admin.ID)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if time.Until(expiresAt) > resettoken.TTL {
		t.Errorf("expiry beyond TTL: %v", expiresAt)
	}

	updated, err := resetSvc.Consume(ctx, plain, "NewPass1")
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if updated.ID != admin.ID {
		t.Errorf("consume returned wrong account: %s", updated.ID)
	}

	// Old password no longer works, new one does.
	if _, err := adminSvc.Login(ctx, admin.Email, "Secret1"); !errors.Is(err, admins.ErrInvalidCredentials) {
		t.Errorf("old password still valid: %v", err)
	}
	if _, err := adminSvc.Login(ctx, admin.Email, "NewPass1"); err != nil {
		t.Errorf("new password login failed: %v", err)
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	adminSvc, resetSvc, _, cleanup := setupResetIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	admin := createResetTestAdmin(t, adminSvc)

	plain, _, err := resetSvc.Issue(ctx, admin.ID)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := resetSvc.Consume(ctx, plain, "NewPass1"); err != nil {
		t.Fatalf("first consume failed: %v", err)
	}
	if _, err := resetSvc.Consume(ctx, plain, "NewPass2"); !errors.Is(err, resettoken.ErrInvalidOrExpired) {
		t.Errorf("second consume: got %v, want ErrInvalidOrExpired", err)
	}
}

func TestReissueInvalidatesPriorToken(t *testing.T) {
	adminSvc, resetSvc, _, cleanup := setupResetIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	admin := createResetTestAdmin(t, adminSvc)

	first, _, err := resetSvc.Issue(ctx, admin.ID)
	if err != nil {
		t.Fatalf("first issue failed: %v", err)
	}
	if _, _, err := resetSvc.Issue(ctx, admin.ID); err != nil {
		t.Fatalf("second issue failed: %v", err)
	}
	if _, err := resetSvc.Consume(ctx, first, "NewPass1"); !errors.Is(err, resettoken.ErrInvalidOrExpired) {
		t.Errorf("stale token consume: got %v, want ErrInvalidOrExpired", err)
	}
}

func TestConsumeExpiredToken(t *testing.T) {
	adminSvc, resetSvc, store, cleanup := setupResetIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	admin := createResetTestAdmin(t, adminSvc)

	// Plant a token whose expiry has already elapsed.
	plain, err := resettoken.NewToken()
	if err != nil {
		t.Fatalf("new token failed: %v", err)
	}
	expiredAt := time.Now().UTC().Add(-time.Minute)
	if err := store.SetResetToken(ctx, admin.ID, resettoken.HashToken(plain), expiredAt); err != nil {
		t.Fatalf("set reset token failed: %v", err)
	}

	if _, err := resetSvc.Consume(ctx, plain, "NewPass1"); !errors.Is(err, resettoken.ErrInvalidOrExpired) {
		t.Errorf("expired token consume: got %v, want ErrInvalidOrExpired", err)
	}

	// The password must be untouched.
	if _, err := adminSvc.Login(ctx, admin.Email, "Secret1"); err != nil {
		t.Errorf("original password login failed after expired consume: %v", err)
	}
}

func TestConsumeGarbageToken(t *testing.T) {
	_, resetSvc, _, cleanup := setupResetIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := resetSvc.Consume(ctx, "definitely-not-a-token", "NewPass1"); !errors.Is(err, resettoken.ErrInvalidOrExpired) {
		t.Errorf("garbage token: got %v, want ErrInvalidOrExpired", err)
	}
}
