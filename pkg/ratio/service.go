package ratio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dtnitsch/localfeed/models"
)

// Service is a write-through cache over a local Store and an optional remote
// Store.
type Service struct {
	local  Store
	remote Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService builds a Service. remote may be nil for local-only use.
func NewService(local, remote Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		local:  local,
		remote: remote,
		logger: logger.Named("ratio"),
		now:    time.Now,
	}
}

// Get returns the user's preferences from the local cache, then the remote
// store, then defaults. A remote hit refreshes the local cache.
func (s *Service) Get(ctx context.Context, userID string) (models.RatioPreferences, error) {
	prefs, err := s.Stored(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return models.DefaultPreferences(userID), nil
	}
	return prefs, err
}

// Stored is Get without the defaults: it returns ErrNotFound when neither
// store holds preferences for the user. An unreachable remote counts as not
// found.
func (s *Service) Stored(ctx context.Context, userID string) (models.RatioPreferences, error) {
	prefs, err := s.local.Load(ctx, userID)
	if err == nil {
		return Normalize(prefs), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.RatioPreferences{}, fmt.Errorf("failed to read local preferences: %w", err)
	}
	if s.remote == nil {
		return models.RatioPreferences{}, ErrNotFound
	}

	prefs, err = s.remote.Load(ctx, userID)
	switch {
	case err == nil:
		prefs = Normalize(prefs)
		if saveErr := s.local.Save(ctx, prefs); saveErr != nil {
			s.logger.Warn("failed to cache remote preferences", zap.String("user_id", userID), zap.Error(saveErr))
		}
		return prefs, nil
	case errors.Is(err, ErrNotFound):
	default:
		s.logger.Warn("remote preferences unavailable, using defaults", zap.String("user_id", userID), zap.Error(err))
	}
	return models.RatioPreferences{}, ErrNotFound
}

// SetLocal stores a new local percentage and the derived topical one.
func (s *Service) SetLocal(ctx context.Context, userID string, local int) (models.RatioPreferences, error) {
	return s.update(ctx, userID, func(p models.RatioPreferences) models.RatioPreferences {
		return SetLocal(p, local)
	})
}

// SetTopical stores a new topical percentage and the derived local one.
func (s *Service) SetTopical(ctx context.Context, userID string, topical int) (models.RatioPreferences, error) {
	return s.update(ctx, userID, func(p models.RatioPreferences) models.RatioPreferences {
		return SetTopical(p, topical)
	})
}

// SetTopic changes the topical category paired against local content.
func (s *Service) SetTopic(ctx context.Context, userID, topic string) (models.RatioPreferences, error) {
	return s.update(ctx, userID, func(p models.RatioPreferences) models.RatioPreferences {
		p.Topic = topic
		return p
	})
}

// Update is a partial change to a user's preferences. When both Local and
// Topical are set, Local wins.
type Update struct {
	Local   *int
	Topical *int
	Topic   string
}

// Empty reports whether u changes nothing.
func (u Update) Empty() bool {
	return u.Local == nil && u.Topical == nil && u.Topic == ""
}

// Apply stores every change in u as a single write.
func (s *Service) Apply(ctx context.Context, userID string, u Update) (models.RatioPreferences, error) {
	return s.update(ctx, userID, func(p models.RatioPreferences) models.RatioPreferences {
		switch {
		case u.Local != nil:
			p = SetLocal(p, *u.Local)
		case u.Topical != nil:
			p = SetTopical(p, *u.Topical)
		}
		if u.Topic != "" {
			p.Topic = u.Topic
		}
		return p
	})
}

func (s *Service) update(ctx context.Context, userID string, fn func(models.RatioPreferences) models.RatioPreferences) (models.RatioPreferences, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return models.RatioPreferences{}, err
	}

	next := Normalize(fn(current))
	next.UserID = userID
	next.UpdatedAt = s.now().UTC()

	if err := s.local.Save(ctx, next); err != nil {
		return models.RatioPreferences{}, fmt.Errorf("failed to save local preferences: %w", err)
	}
	if s.remote == nil {
		return next, nil
	}
	if err := s.remote.Save(ctx, next); err != nil {
		s.logger.Warn("remote preference upsert failed", zap.String("user_id", userID), zap.Error(err))
		return next, fmt.Errorf("%w: %w", ErrRemoteSync, err)
	}
	return next, nil
}
