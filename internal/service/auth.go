// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shoply/shoply/internal/auth"
	"github.com/shoply/shoply/internal/metrics"
	"github.com/shoply/shoply/internal/model"
	"github.com/shoply/shoply/internal/repository"
)

// Service errors.
var (
	// ErrMissingFields indicates a required registration field was absent.
	ErrMissingFields = errors.New("all fields are required")
	// ErrMissingCredentials indicates email or password was absent at login.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidRole indicates an unknown role was supplied.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore is the slice of the repository the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthService composes the password hasher, token issuer and credential store
// into the registration and login flows.
type AuthService struct {
	store   UserStore
	tokens  *auth.Tokens
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewAuthService creates an AuthService.
func NewAuthService(store UserStore, tokens *auth.Tokens, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:   store,
		tokens:  tokens,
		logger:  logger,
		metrics: recorder,
	}
}

// Register creates a new account. The role defaults to "user" when not
// supplied. The plaintext password is hashed before anything is stored and is
// never logged.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncRegistration()
	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password both come back as ErrInvalidCredentials so a caller cannot
// probe which emails are registered.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		s.metrics.IncLoginFailure()
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLoginSuccess()
	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &model.LoginResponse{Token: token, Role: user.Role}, nil
}
