package admins_test

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
)

func setupAdminsIntegrationTest(t *testing.T) (*admins.Service, func()) {
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
	svc := admins.NewService(logger, admins.NewStore(pool))
	return svc, func() { pool.Close() }
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@integration.test", prefix, time.Now().UnixNano())
}

func TestLoginRoundTrip(t *testing.T) {
	svc, cleanup := setupAdminsIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	email := uniqueEmail("login")

	created, err := svc.Create(ctx, email, "Secret1", "")
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if created.PasswordHash == "Secret1" {
		t.Fatal("password stored in plaintext")
	}

	admin, err := svc.Login(ctx, email, "Secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if admin.ID != created.ID {
		t.Errorf("login returned wrong account: %s != %s", admin.ID, created.ID)
	}

	// Email match is case-insensitive.
	if _, err := svc.Login(ctx, "LOGIN"+email[5:], "Secret1"); err != nil {
		t.Errorf("case-insensitive login failed: %v", err)
	}

	if _, err := svc.Login(ctx, email, "wrong"); !errors.Is(err, admins.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, uniqueEmail("nobody"), "x"); !errors.Is(err, admins.ErrNotFound) {
		t.Errorf("unknown email: got %v, want ErrNotFound", err)
	}
}

func TestCreateDerivesDisplayName(t *testing.T) {
	svc, cleanup := setupAdminsIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	email := fmt.Sprintf("jane.doe-%d@integration.test", time.Now().UnixNano())
	admin, err := svc.Create(ctx, email, "Secret1", "")
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if admin.DisplayName == "" {
		t.Error("expected derived display name, got empty")
	}
}
