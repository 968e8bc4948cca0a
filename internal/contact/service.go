// Package contact persists contact-form and consultation requests.
package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

// ErrValidation wraps every rejected request; the message names the field.
var ErrValidation = errors.New("invalid contact request")

const DefaultSubmissionType = "gtm_consultation"

type Submission struct {
	ID             string
	Request        models.ContactRequest
	SubmissionType string
	CreatedAt      time.Time
}

type Service struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the submissions table on db if needed.
func NewService(ctx context.Context, db *sql.DB, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	const ddl = `
CREATE TABLE IF NOT EXISTS contact_submissions (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL,
  email TEXT NOT NULL,
  company_name TEXT,
  message TEXT,
  schedule_call INTEGER NOT NULL DEFAULT 0,
  agency_slug TEXT,
  submission_type TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create contact_submissions table: %w", err)
	}
	return &Service{db: db, logger: logger, now: time.Now}, nil
}

// Validate trims the request and checks the required fields.
func Validate(req models.ContactRequest) (models.ContactRequest, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.AgencySlug = strings.TrimSpace(req.AgencySlug)
	req.SubmissionType = strings.TrimSpace(req.SubmissionType)

	if req.FullName == "" || req.Email == "" {
		return req, fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		return req, fmt.Errorf("%w: email %q is not a valid address", ErrValidation, req.Email)
	}
	if req.SubmissionType == "" {
		req.SubmissionType = DefaultSubmissionType
	}
	return req, nil
}

// Submit validates and stores req, returning the new submission id.
func (s *Service) Submit(ctx context.Context, req models.ContactRequest) (string, error) {
	req, err := Validate(req)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO contact_submissions (id, full_name, email, company_name, message, schedule_call, agency_slug, submission_type, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, req.FullName, req.Email, req.CompanyName, req.Message, req.ScheduleCall, req.AgencySlug,
		req.SubmissionType, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert contact submission: %w", err)
	}

	fields := []zap.Field{zap.String("id", id), zap.String("type", req.SubmissionType)}
	if req.AgencySlug != "" {
		fields = append(fields, zap.String("agency", req.AgencySlug))
	}
	s.logger.Info("contact submission stored", fields...)
	return id, nil
}

// Get loads a stored submission.
func (s *Service) Get(ctx context.Context, id string) (Submission, error) {
	var (
		sub                      Submission
		company, message, agency sql.NullString
		created                  string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, full_name, email, company_name, message, schedule_call, agency_slug, submission_type, created_at
FROM contact_submissions WHERE id = ?`, id).Scan(
		&sub.ID, &sub.Request.FullName, &sub.Request.Email, &company, &message,
		&sub.Request.ScheduleCall, &agency, &sub.SubmissionType, &created)
	if err != nil {
		return Submission{}, fmt.Errorf("get contact submission %s: %w", id, err)
	}
	sub.Request.CompanyName = company.String
	sub.Request.Message = message.String
	sub.Request.AgencySlug = agency.String
	sub.Request.SubmissionType = sub.SubmissionType
	if sub.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return Submission{}, fmt.Errorf("parse created_at: %w", err)
	}
	return sub, nil
}
