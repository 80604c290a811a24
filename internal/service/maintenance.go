package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/auth"
	"feedback-backend/internal/models"
)

// AdminWriter is the admin persistence used by provisioning.
type AdminWriter interface {
	CreateIfAbsent(ctx context.Context, admin *models.Admin) (bool, error)
	UpsertPassword(ctx context.Context, email, name, passwordHash string) error
}

// TrialCleaner is the feedback persistence used by trial cleanup.
type TrialCleaner interface {
	FindLiveByEmail(ctx context.Context, emails, domains []string) ([]models.Feedback, error)
	SoftDeleteByEmail(ctx context.Context, emails, domains []string, at time.Time) (int64, error)
}

var ErrNoPatterns = errors.New("at least one email or domain is required")

// MaintenanceService backs the out-of-band operator commands.
type MaintenanceService struct {
	admins    AdminWriter
	feedbacks TrialCleaner
	now       func() time.Time
}

func NewMaintenanceService(admins AdminWriter, feedbacks TrialCleaner) *MaintenanceService {
	return &MaintenanceService{
		admins:    admins,
		feedbacks: feedbacks,
		now:       time.Now,
	}
}

func checkCredentials(email, password string) error {
	var fields []apperr.FieldError
	if strings.TrimSpace(email) == "" {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "Email is required"})
	}
	if len(password) < 8 {
		fields = append(fields, apperr.FieldError{Field: "password", Message: "Password must be at least 8 characters"})
	}
	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

// ProvisionAdmin creates an admin unless the email is already taken.
// It reports whether a record was created.
func (s *MaintenanceService) ProvisionAdmin(ctx context.Context, email, name, password string) (bool, error) {
	if err := checkCredentials(email, password); err != nil {
		return false, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	created, err := s.admins.CreateIfAbsent(ctx, &models.Admin{
		Email:    strings.TrimSpace(email),
		Name:     name,
		Password: hash,
	})
	if err != nil {
		return false, apperr.Persistence("create admin", err)
	}
	return created, nil
}

// ResetPassword rotates an admin's password hash, creating the admin if needed.
func (s *MaintenanceService) ResetPassword(ctx context.Context, email, name, password string) error {
	if err := checkCredentials(email, password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.admins.UpsertPassword(ctx, strings.TrimSpace(email), name, hash); err != nil {
		return apperr.Persistence("reset admin password", err)
	}
	return nil
}

// PurgeResult lists what a trial cleanup matched and how many records it soft-deleted.
type PurgeResult struct {
	Matched     []models.Feedback
	SoftDeleted int64
}

// PurgeTrial soft-deletes live feedback sent from the given addresses or
// domains. With dryRun it only reports the matches.
func (s *MaintenanceService) PurgeTrial(ctx context.Context, emails, domains []string, dryRun bool) (*PurgeResult, error) {
	if len(emails) == 0 && len(domains) == 0 {
		return nil, ErrNoPatterns
	}

	matched, err := s.feedbacks.FindLiveByEmail(ctx, emails, domains)
	if err != nil {
		return nil, apperr.Persistence("preview trial feedback", err)
	}
	result := &PurgeResult{Matched: matched}
	if dryRun || len(matched) == 0 {
		return result, nil
	}

	n, err := s.feedbacks.SoftDeleteByEmail(ctx, emails, domains, s.now().UTC())
	if err != nil {
		return nil, apperr.Persistence("soft delete trial feedback", err)
	}
	result.SoftDeleted = n
	return result, nil
}
