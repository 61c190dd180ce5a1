package auth

import (
	"context"
	"net/mail"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SanathKumar1997/teez/internal/domain"
)

// Password length bounds Register accepts. bcrypt rejects anything past
// 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// RegisterRequest holds the input for registering a user.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// Result is returned by Register and Login.
type Result struct {
	Token   string
	User    *User
	Session *Session
}

// Service registers users, logs them in and verifies session tokens.
type Service struct {
	users     Repository
	tokens    *Tokens
	passwords *Passwords
	policy    AdminPolicy
}

// NewService creates an auth Service.
func NewService(users Repository, tokens *Tokens, passwords *Passwords, policy AdminPolicy) *Service {
	return &Service{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		policy:    policy,
	}
}

// Register creates an account and returns a session token for it.
//
// The admin flag is decided by the AdminPolicy inside the insert transaction.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRegister(req); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u, s.policy.Decide(u.Email)); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, errors.Wrap(err, "create user")
	}

	if u.IsAdmin {
		zctx.From(ctx).Info("Registered admin user", zap.String("user_id", u.ID))
	}
	return s.issue(u)
}

// Login checks the credentials and returns a fresh session token.
// An unknown email and a wrong password both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	switch {
	case errors.Is(err, ErrUserNotFound):
		s.passwords.burn(password)
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, errors.Wrap(err, "find user")
	}

	if !s.passwords.Match(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// Verify returns the session carried by token.
func (s *Service) Verify(token string) (*Session, error) {
	return s.tokens.Verify(token)
}

func (s *Service) issue(u *User) (*Result, error) {
	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Result{
		Token: token,
		User:  u,
		Session: &Session{
			UserID:    u.ID,
			Email:     u.Email,
			IsAdmin:   u.IsAdmin,
			ExpiresAt: exp,
		},
	}, nil
}

func validateRegister(req RegisterRequest) error {
	if req.Name == "" {
		return domain.Invalid("name", "required")
	}
	if req.Email == "" {
		return domain.Invalid("email", "required")
	}
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		return domain.Invalid("email", "malformed address")
	}
	if len(req.Password) < MinPasswordLength {
		return domain.Invalid("password", "too short")
	}
	if len(req.Password) > MaxPasswordLength {
		return domain.Invalid("password", "too long")
	}
	return nil
}
