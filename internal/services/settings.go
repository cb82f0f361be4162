package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/honeynil/finboard/internal/models"
	pkgerrors "github.com/honeynil/finboard/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"min=8,eqfield=NewPassword"`
}

var passwordMessages = map[string]string{
	"CurrentPassword.required": "Current password is required.",
	"NewPassword.min":          "New password must be at least 8 characters.",
	"ConfirmPassword.min":      "Confirm password must be at least 8 characters.",
	"ConfirmPassword.eqfield":  "New passwords don't match",
}

var profileMessages = map[string]string{
	"FullName.required": "Full name is required.",
	"Email.required":    "Email is required.",
	"Email.email":       "Invalid email address.",
}

func (s *dashboardService) Profile(ctx context.Context) models.Profile {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.profile
}

func (s *dashboardService) UpdateProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "UpdateProfile")
	defer span.End()

	p.FullName = strings.TrimSpace(p.FullName)
	p.Email = strings.TrimSpace(p.Email)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	if err := validateForm(p, profileMessages).orNil(); err != nil {
		span.SetStatus(codes.Error, "invalid profile")
		return models.Profile{}, err
	}

	s.settingsMu.Lock()
	s.profile = p
	s.settingsMu.Unlock()

	s.notify(ctx, models.LevelSuccess, "Profile Updated", "Your profile information has been saved.")
	slog.Info("profile updated", "email", p.Email)
	return p, nil
}

func (s *dashboardService) ChangePassword(ctx context.Context, req PasswordChangeRequest) error {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "ChangePassword")
	defer span.End()

	if err := validateForm(req, passwordMessages).orNil(); err != nil {
		span.SetStatus(codes.Error, "invalid password change")
		return err
	}

	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.CurrentPassword)); err != nil {
		span.SetStatus(codes.Error, "current password mismatch")
		slog.Warn("password change rejected", "reason", "current password mismatch")
		return pkgerrors.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.opts.BcryptCost)
	if err != nil {
		span.RecordError(err)
		slog.Error("failed to hash password", "error", err)
		return fmt.Errorf("%w: failed to hash password", pkgerrors.ErrInternal)
	}
	s.passwordHash = hash

	s.notify(ctx, models.LevelSuccess, "Password Changed", "Your password has been updated successfully.")
	slog.Info("password changed")
	return nil
}

func (s *dashboardService) NotificationPreferences(ctx context.Context) models.NotificationPreferences {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.prefs
}

func (s *dashboardService) UpdateNotificationPreferences(ctx context.Context, p models.NotificationPreferences) models.NotificationPreferences {
	s.settingsMu.Lock()
	s.prefs = p
	s.settingsMu.Unlock()

	s.notify(ctx, models.LevelSuccess, "Preferences Saved", "Your notification preferences have been updated.")
	return p
}
