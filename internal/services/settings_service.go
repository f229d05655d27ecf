package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/repository/sqlite"
	"task-manager/internal/session"

	"golang.org/x/text/language"
)

const settingsPreloadTimeout = 5 * time.Second

// settingsServiceImpl implements the SettingsService interface.
// It follows the session provider: signing in preloads the user's settings,
// signing out drops them.
type settingsServiceImpl struct {
	repo        sqlite.Repository
	clock       Clock
	logger      *slog.Logger
	mapper      *domain.Mapper
	unsubscribe func()

	mu      sync.RWMutex
	current *domain.Settings
}

// NewSettingsService creates a SettingsService subscribed to provider.
// A nil provider disables preloading.
func NewSettingsService(repo sqlite.Repository, provider *session.Provider, clock Clock, logger *slog.Logger) SettingsService {
	s := &settingsServiceImpl{
		repo:        repo,
		clock:       clock,
		logger:      logger,
		mapper:      domain.NewMapper(),
		unsubscribe: func() {},
	}
	if provider != nil {
		s.unsubscribe = provider.Subscribe(s.onSessionEvent)
	}
	return s
}

func (s *settingsServiceImpl) onSessionEvent(evt session.Event) {
	switch evt.Type {
	case session.SignedIn:
		ctx, cancel := context.WithTimeout(context.Background(), settingsPreloadTimeout)
		defer cancel()

		settings, err := s.Get(ctx, evt.User.ID)
		if err != nil {
			s.logger.Warn("preload settings failed, using defaults", "user_id", evt.User.ID, "error", err)
			defaults := domain.DefaultSettings(evt.User.ID)
			settings = &defaults
		}
		s.setCurrent(settings)
	case session.SignedOut:
		s.setCurrent(nil)
	}
}

func (s *settingsServiceImpl) setCurrent(settings *domain.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = settings
}

// Current returns the preloaded settings of the signed-in user
func (s *settingsServiceImpl) Current() (domain.Settings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Settings{}, false
	}
	return *s.current, true
}

// Close stops following the session provider
func (s *settingsServiceImpl) Close() {
	s.unsubscribe()
}

// Get returns the owner's settings, or the defaults when none were saved
func (s *settingsServiceImpl) Get(ctx context.Context, ownerID string) (*domain.Settings, error) {
	dbSettings, err := s.repo.GetSettings(ctx, ownerID)
	if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		defaults := domain.DefaultSettings(ownerID)
		return &defaults, nil
	}
	if err != nil {
		logIfSystemError(ctx, s.logger, "get settings failed", err, "user_id", ownerID)
		return nil, err
	}

	settings := s.mapper.Settings.FromDatabase(*dbSettings)
	return &settings, nil
}

// SetTheme stores the owner's theme
func (s *settingsServiceImpl) SetTheme(ctx context.Context, ownerID string, theme domain.Theme) (*domain.Settings, error) {
	parsed, err := domain.ParseTheme(string(theme))
	if err != nil {
		return nil, errors.NewInvalidInputError("theme", theme, "must be light or dark")
	}
	return s.update(ctx, ownerID, func(settings *domain.Settings) { settings.Theme = parsed })
}

// SetAIResponseStyle stores how verbose assistant replies are
func (s *settingsServiceImpl) SetAIResponseStyle(ctx context.Context, ownerID string, style domain.AIResponseStyle) (*domain.Settings, error) {
	parsed, err := domain.ParseAIResponseStyle(string(style))
	if err != nil {
		return nil, errors.NewInvalidInputError("ai_response_style", style, "must be concise or detailed")
	}
	return s.update(ctx, ownerID, func(settings *domain.Settings) { settings.AIResponseStyle = parsed })
}

// SetLanguage stores the owner's language code, e.g. "en" or "pt-BR"
func (s *settingsServiceImpl) SetLanguage(ctx context.Context, ownerID, language string) (*domain.Settings, error) {
	language = strings.TrimSpace(language)
	tag, err := parseLanguage(language)
	if err != nil {
		return nil, errors.NewInvalidInputError("language", language, "must be a language code such as en or pt-BR")
	}
	return s.update(ctx, ownerID, func(settings *domain.Settings) { settings.Language = tag })
}

func (s *settingsServiceImpl) update(ctx context.Context, ownerID string, apply func(*domain.Settings)) (*domain.Settings, error) {
	settings, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	apply(settings)
	settings.UpdatedAt = s.clock.now().UTC()

	dbSettings := s.mapper.Settings.ToDatabase(*settings)
	if err := s.repo.UpsertSettings(ctx, &dbSettings); err != nil {
		logIfSystemError(ctx, s.logger, "save settings failed", err, "user_id", ownerID)
		return nil, err
	}

	s.mu.Lock()
	if s.current != nil && s.current.UserID == ownerID {
		copied := *settings
		s.current = &copied
	}
	s.mu.Unlock()

	return settings, nil
}

// parseLanguage returns the canonical form of a BCP 47 tag, e.g. "pt-br" becomes "pt-BR"
func parseLanguage(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty language tag")
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", err
	}
	return tag.String(), nil
}
