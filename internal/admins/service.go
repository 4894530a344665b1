// Package admins provides admin account and credential management.
package admins

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Errors returned by admin account operations.
var (
	ErrNotFound           = errors.New("admin not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service provides account lookup, login, and provisioning for admins.
type Service struct {
	store  *Store
	logger *slog.Logger
}

// NewService creates a new admins service.
func NewService(log *slog.Logger, store *Store) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:  store,
		logger: log.With(slog.String("service", "admins")),
	}
}

// Store exposes the underlying store to collaborating services.
func (s *Service) Store() *Store {
	return s.store
}

// Login authenticates by email (case-insensitive) and password.
// A missing account surfaces as ErrNotFound, a wrong password as
// ErrInvalidCredentials; callers map them to distinct HTTP statuses.
func (s *Service) Login(ctx context.Context, email, password string) (Admin, error) {
	if s.store == nil {
		return Admin{}, errors.New("admin store not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Admin{}, ErrInvalidCredentials
	}
	admin, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return Admin{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return Admin{}, ErrInvalidCredentials
	}
	return admin, nil
}

// GetByEmail returns the account for the given email.
func (s *Service) GetByEmail(ctx context.Context, email string) (Admin, error) {
	if s.store == nil {
		return Admin{}, errors.New("admin store not configured")
	}
	return s.store.GetByEmail(ctx, email)
}

// Get returns the account for the given id.
func (s *Service) Get(ctx context.Context, id string) (Admin, error) {
	if s.store == nil {
		return Admin{}, errors.New("admin store not configured")
	}
	return s.store.GetByID(ctx, id)
}

// Count returns the number of provisioned admin accounts.
func (s *Service) Count(ctx context.Context) (int64, error) {
	if s.store == nil {
		return 0, errors.New("admin store not configured")
	}
	return s.store.Count(ctx)
}

// Create provisions a new admin account. When name is empty it is derived
// from the email local-part.
func (s *Service) Create(ctx context.Context, email, password, name string) (Admin, error) {
	if s.store == nil {
		return Admin{}, errors.New("admin store not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return Admin{}, errors.New("email is required")
	}
	if strings.TrimSpace(password) == "" {
		return Admin{}, errors.New("password is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DisplayNameFromEmail(email)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Admin{}, err
	}
	admin, err := s.store.Create(ctx, email, name, string(hashed))
	if err != nil {
		return Admin{}, err
	}
	s.logger.Info("admin account created", slog.String("email", admin.Email))
	return admin, nil
}

// DisplayNameFromEmail derives a readable name from the email local-part:
// "jane.doe@x.com" becomes "Jane Doe".
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "Admin"
	}
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_'
	})
	if len(parts) == 0 {
		return "Admin"
	}
	for i, part := range parts {
		r := []rune(part)
		parts[i] = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(parts, " ")
}
