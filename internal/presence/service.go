package presence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gfnpresence/internal/logging"
	"gfnpresence/internal/services"
)

// Resolver maps a game name to a Steam app id; "" means unknown.
type Resolver interface {
	ResolveID(ctx context.Context, title string) string
}

// Updater pushes an activity to a presence transport.
type Updater interface {
	UpdatePresence(ctx context.Context, activity Activity) error
}

// Options configures a Service.
type Options struct {
	Instance bool
	Now      func() time.Time
}

// Service turns window titles into presence updates.
type Service struct {
	resolver Resolver
	updater  Updater
	opts     Options
	logger   *slog.Logger
}

// NewService builds a presence service. A nil updater computes activities
// without sending them.
func NewService(resolver Resolver, updater Updater, opts Options, logger *slog.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		resolver: resolver,
		updater:  updater,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "presence"),
	}
}

// BuildActivity computes the activity for windowTitle, resolving the game
// when the title names one.
func (s *Service) BuildActivity(ctx context.Context, windowTitle string) Activity {
	activity := Activity{
		Details:        HomeDetails,
		State:          DisclaimerState,
		StartTimestamp: s.opts.Now(),
		Instance:       s.opts.Instance,
		LargeImageKey:  FallbackImageKey,
	}
	game, ok := ExtractGameName(windowTitle)
	if !ok {
		return activity
	}
	activity.Details = windowTitle
	if s.resolver != nil {
		activity.LargeImageKey = LargeImageKey(s.resolver.ResolveID(services.WithTitle(ctx, game), game))
	}
	return activity
}

// HandleTitle builds the activity for windowTitle and sends it when an
// updater is configured.
func (s *Service) HandleTitle(ctx context.Context, windowTitle string) (Activity, error) {
	activity := s.BuildActivity(ctx, windowTitle)
	logger := logging.WithContext(ctx, s.logger)
	if s.updater == nil {
		logger.Debug("presence transport disabled; skipping update",
			logging.String("details", activity.Details))
		return activity, nil
	}
	if err := s.updater.UpdatePresence(ctx, activity); err != nil {
		return activity, fmt.Errorf("update presence: %w", err)
	}
	logger.Info("presence updated",
		logging.String("details", activity.Details),
		logging.String("large_image_key", activity.LargeImageKey))
	return activity, nil
}
