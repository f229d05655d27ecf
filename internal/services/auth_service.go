package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/repository/sqlite"
	"task-manager/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenBytes              = 32
	invalidCredentials      = "invalid credentials"
	invalidOrExpiredSession = "session is invalid or has expired"
)

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	repo          sqlite.Repository
	cfg           config.AuthConfig
	clock         Clock
	logger        *slog.Logger
	mapper        *domain.Mapper
	userValidator *validation.UserValidator
}

// NewAuthService creates a new AuthService instance
func NewAuthService(repo sqlite.Repository, cfg *config.Config, clock Clock, logger *slog.Logger) AuthService {
	return &authServiceImpl{
		repo:          repo,
		cfg:           cfg.Auth,
		clock:         clock,
		logger:        logger,
		mapper:        domain.NewMapper(),
		userValidator: validation.NewUserValidatorWithConfig(cfg),
	}
}

// Register creates a new user with a bcrypt-hashed password.
// A blank name falls back to the email address.
func (s *authServiceImpl) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	if err := s.userValidator.ValidateRegistration(email, password, name); err != nil {
		return nil, asAppError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, "password could not be hashed")
	}

	if name == "" {
		name = email
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.now().UTC(),
	}

	dbUser := s.mapper.User.ToDatabase(user)
	if err := s.repo.CreateUser(ctx, &dbUser); err != nil {
		logIfSystemError(ctx, s.logger, "register failed", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return &user, nil
}

// Login checks the credentials and opens a session. The raw token is
// returned once; only its hash is stored.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(email)
	if err := s.userValidator.ValidateCredentials(email, password); err != nil {
		return nil, "", asAppError(err)
	}

	dbUser, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			s.logger.DebugContext(ctx, "login rejected", "reason", "unknown email")
			return nil, "", errors.NewUnauthenticatedError(invalidCredentials)
		}
		logIfSystemError(ctx, s.logger, "login failed", err)
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(password)); err != nil {
		s.logger.DebugContext(ctx, "login rejected", "reason", "password mismatch", "user_id", dbUser.ID)
		return nil, "", errors.NewUnauthenticatedError(invalidCredentials)
	}

	token, err := generateRandomToken(tokenBytes)
	if err != nil {
		return nil, "", errors.WrapError(err, errors.ErrorTypeDatabase, "generate session token")
	}

	now := s.clock.now().UTC()
	session := domain.Session{
		TokenHash: hashSHA256(token),
		UserID:    dbUser.ID,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
		CreatedAt: now,
	}
	dbSession := s.mapper.Session.ToDatabase(session)
	if err := s.repo.CreateSession(ctx, &dbSession); err != nil {
		logIfSystemError(ctx, s.logger, "create session failed", err)
		return nil, "", err
	}

	user := s.mapper.User.FromDatabase(*dbUser)
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return &user, token, nil
}

// Logout ends the session of token. Unknown tokens are ignored.
func (s *authServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.repo.DeleteSession(ctx, hashSHA256(token))
	if err != nil && !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		logIfSystemError(ctx, s.logger, "logout failed", err)
		return err
	}
	return nil
}

// Authenticate resolves a token to its user and the session's remaining lifetime.
// Expired sessions are deleted.
func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, time.Duration, error) {
	if token == "" {
		return nil, 0, errors.NewUnauthenticatedError(invalidOrExpiredSession)
	}

	tokenHash := hashSHA256(token)
	dbSession, err := s.repo.GetSessionByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, 0, errors.NewUnauthenticatedError(invalidOrExpiredSession)
		}
		return nil, 0, err
	}

	now := s.clock.now()
	session := s.mapper.Session.FromDatabase(*dbSession)
	if session.IsExpired(now) {
		if err := s.repo.DeleteSession(ctx, tokenHash); err != nil && !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			logIfSystemError(ctx, s.logger, "delete expired session failed", err)
		}
		s.logger.DebugContext(ctx, "session expired", "user_id", session.UserID)
		return nil, 0, errors.NewUnauthenticatedError(invalidOrExpiredSession)
	}

	dbUser, err := s.repo.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, 0, errors.NewUnauthenticatedError(invalidOrExpiredSession)
		}
		return nil, 0, err
	}

	user := s.mapper.User.FromDatabase(*dbUser)
	return &user, session.ExpiresAt.Sub(now), nil
}
