// Package resettoken issues and consumes single-use, time-bounded password
// reset tokens for admin accounts.
package resettoken

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/inkpress/inkpress/internal/admins"
)

// TTL is the validity window of a reset token from issuance.
const TTL = 15 * time.Minute

const tokenBytes = 32

// ErrInvalidOrExpired is returned when a presented token matches no account,
// has expired, or was already consumed.
var ErrInvalidOrExpired = errors.New("invalid or expired reset token")

// Service manages the reset token lifecycle against the admin store.
type Service struct {
	store  *admins.Store
	logger *slog.Logger
}

// NewService creates a reset token service.
func NewService(log *slog.Logger, store *admins.Store) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:  store,
		logger: log.With(slog.String("service", "resettoken")),
	}
}

// NewToken generates a 256-bit random token, hex-encoded.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken computes the deterministic digest stored in place of the token.
// The token is high-entropy, so a fast digest suffices; the slow adaptive
// hash is reserved for passwords.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// Issue stores a fresh token hash and expiry on the account, replacing any
// outstanding token, and returns the plaintext for out-of-band delivery.
func (s *Service) Issue(ctx context.Context, adminID string) (string, time.Time, error) {
	if s.store == nil {
		return "", time.Time{}, errors.New("reset token store not configured")
	}
	plain, err := NewToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := time.Now().UTC().Add(TTL)
	if err := s.store.SetResetToken(ctx, adminID, HashToken(plain), expiresAt); err != nil {
		return "", time.Time{}, err
	}
	s.logger.Info("reset token issued", slog.String("admin_id", adminID), slog.Time("expires_at", expiresAt))
	return plain, expiresAt, nil
}

// Consume validates the plaintext token and, in a single atomic store
// update, replaces the account password and clears the token. A token that
// matches nothing, has expired, or was already consumed yields
// ErrInvalidOrExpired.
func (s *Service) Consume(ctx context.Context, plainToken, newPassword string) (admins.Admin, error) {
	if s.store == nil {
		return admins.Admin{}, errors.New("reset token store not configured")
	}
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return admins.Admin{}, ErrInvalidOrExpired
	}
	if strings.TrimSpace(newPassword) == "" {
		return admins.Admin{}, errors.New("new password is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return admins.Admin{}, err
	}
	admin, err := s.store.ConsumeResetToken(ctx, HashToken(plainToken), string(hashed))
	if err != nil {
		if errors.Is(err, admins.ErrNotFound) {
			return admins.Admin{}, ErrInvalidOrExpired
		}
		return admins.Admin{}, err
	}
	s.logger.Info("reset token consumed", slog.String("admin_id", admin.ID))
	return admin, nil
}
