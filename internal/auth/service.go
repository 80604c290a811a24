package auth

import (
	"context"
	"strings"
	"time"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"
)

// AdminStore is the slice of the admin repository authentication needs.
type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
}

// Session is the result of a successful login.
type Session struct {
	Identity  Identity
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	admins AdminStore
	tokens *TokenManager
}

func NewService(admins AdminStore, tokens *TokenManager) *Service {
	return &Service{
		admins: admins,
		tokens: tokens,
	}
}

// Authenticate checks the credentials and issues a session token. Every
// credential problem yields apperr.ErrAuthenticationFailed; store failures
// come back as a PersistenceError.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.ErrAuthenticationFailed
	}

	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Persistence("find admin by email", err)
	}
	if admin == nil {
		burnCompare(password)
		return nil, apperr.ErrAuthenticationFailed
	}
	if !CheckPassword(password, admin.Password) {
		return nil, apperr.ErrAuthenticationFailed
	}

	id := identityOf(admin)
	token, expiresAt, err := s.tokens.Issue(id.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Identity: id, Token: token, ExpiresAt: expiresAt}, nil
}

// CurrentSession resolves a presented token. A missing, invalid or expired
// token, or one naming an admin that no longer exists, yields (nil, nil).
func (s *Service) CurrentSession(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil
	}

	admin, err := s.admins.FindByID(ctx, claims.AdminID)
	if err != nil {
		return nil, apperr.Persistence("find admin by id", err)
	}
	if admin == nil {
		return nil, nil
	}
	id := identityOf(admin)
	return &id, nil
}

// TokenTTL is the lifetime of issued session tokens.
func (s *Service) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func identityOf(admin *models.Admin) Identity {
	return Identity{
		ID:    admin.ID.Hex(),
		Email: admin.Email,
		Name:  admin.Name,
	}
}
