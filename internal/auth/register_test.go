package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/config"
	"github.com/oakmart/storefront-backend/pkg/db"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
)

func newTestDB(t *testing.T) *db.Client {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared",
	}, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := client.DB().AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestRegisterService(t *testing.T, client *db.Client) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{
		DB: client,
		PasswordConfig: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return svc
}

func TestRegisterCreatesUser(t *testing.T) {
	client := newTestDB(t)
	svc := newTestRegisterService(t, client)

	view, err := svc.Register(context.Background(), RegisterRequest{
		Username: "jamie",
		Email:    "Jamie@Example.com",
		Password: "Secret123!",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if view.Username != "jamie" {
		t.Fatalf("unexpected username %q", view.Username)
	}
	if view.Email != "jamie@example.com" {
		t.Fatalf("expected email to be lowercased, got %q", view.Email)
	}

	var stored models.User
	if err := client.DB().First(&stored, "username = ?", "jamie").Error; err != nil {
		t.Fatalf("load stored user: %v", err)
	}
	if stored.PasswordHash == "Secret123!" || stored.PasswordHash == "" {
		t.Fatal("expected password to be hashed")
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	client := newTestDB(t)
	svc := newTestRegisterService(t, client)

	req := RegisterRequest{Username: "jamie", Email: "jamie@example.com", Password: "Secret123!"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	req.Email = "other@example.com"
	_, err := svc.Register(context.Background(), req)
	if err == nil {
		t.Fatal("expected duplicate username to be rejected")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	client := newTestDB(t)
	svc := newTestRegisterService(t, client)

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Username: "jamie", Email: "jamie@example.com", Password: "Secret123!",
	}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "other", Email: "JAMIE@example.com", Password: "Secret123!",
	})
	if err == nil {
		t.Fatal("expected duplicate email to be rejected")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}
