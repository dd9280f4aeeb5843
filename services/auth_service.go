package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/Mil05h/calories-ai/apperr"
	"github.com/Mil05h/calories-ai/models"
	"github.com/Mil05h/calories-ai/utils"
)

// ResetMailer delivers password-reset codes. Satisfied by utils.Mailer.
type ResetMailer interface {
	SendResetEmail(ctx context.Context, to, code string) error
}

type AuthService struct {
	db     *gorm.DB
	jwt    *utils.JWTManager
	mailer ResetMailer
	logger *slog.Logger
}

func NewAuthService(db *gorm.DB, jwt *utils.JWTManager, mailer ResetMailer, logger *slog.Logger) *AuthService {
	return &AuthService{db: db, jwt: jwt, mailer: mailer, logger: logger}
}

// Register creates the account, then writes the display name as a
// secondary step. A failed secondary write is logged but does not fail
// registration: the account exists either way.
func (s *AuthService) Register(email, password, displayName string) (*models.User, error) {
	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, apperr.New(apperr.InvalidArgument, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.PersistenceFailed, "failed to check account", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailed, "failed to hash password", err)
	}

	user := &models.User{Email: email, PasswordHash: hash}
	if err := s.db.Create(user).Error; err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailed, "failed to create account", err)
	}

	if displayName != "" {
		if err := s.db.Model(user).Update("display_name", displayName).Error; err != nil {
			s.logger.Warn("display name update failed after registration",
				"user_id", user.ID, "error", err)
		} else {
			user.DisplayName = displayName
		}
	}
	return user, nil
}

// Login verifies credentials and mints a session token.
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return "", nil, apperr.New(apperr.Unauthenticated, "invalid email or password")
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, apperr.New(apperr.Unauthenticated, "invalid email or password")
	}

	token, err := s.jwt.Generate(user.ID, user.Email)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.PersistenceFailed, "could not generate token", err)
	}
	return token, &user, nil
}

// CurrentUser resolves the session principal by id. One bounded lookup,
// no subscription.
func (s *AuthService) CurrentUser(userID string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, apperr.New(apperr.Unauthenticated, "session user not found")
	}
	return &user, nil
}

// ForgotPassword stores a short-lived reset code and mails it. Callers
// always get a success response so the endpoint does not leak whether an
// account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil
	}

	code := utils.GenerateRandomToken(6)
	user.ResetToken = code
	user.ResetTokenExp = time.Now().Add(15 * time.Minute)
	if err := s.db.Save(&user).Error; err != nil {
		return apperr.Wrap(apperr.PersistenceFailed, "failed to store reset code", err)
	}

	if s.mailer == nil {
		s.logger.Warn("no mailer configured, reset code not sent", "user_id", user.ID)
		return nil
	}
	if err := s.mailer.SendResetEmail(ctx, user.Email, code); err != nil {
		return apperr.Wrap(apperr.PersistenceFailed, "failed to send reset code", err)
	}
	return nil
}

// ResetPassword consumes a reset code and sets the new password.
func (s *AuthService) ResetPassword(code, newPassword string) error {
	var user models.User
	if err := s.db.Where("reset_token = ?", code).First(&user).Error; err != nil || code == "" {
		return apperr.New(apperr.InvalidArgument, "invalid or expired token")
	}
	if time.Now().After(user.ResetTokenExp) {
		return apperr.New(apperr.InvalidArgument, "invalid or expired token")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.PersistenceFailed, "failed to hash password", err)
	}

	user.PasswordHash = hash
	user.ResetToken = ""
	user.ResetTokenExp = time.Time{}
	if err := s.db.Save(&user).Error; err != nil {
		return apperr.Wrap(apperr.PersistenceFailed, "failed to update password", err)
	}
	return nil
}
