package watch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"gfnpresence/internal/logging"
	"gfnpresence/internal/presence"
	"gfnpresence/internal/services"
)

// ErrAlreadyRunning is returned when another watcher holds the lock.
var ErrAlreadyRunning = errors.New("another gfnpresence watcher is already running")

// TitleHandler reacts to a new window title.
type TitleHandler interface {
	HandleTitle(ctx context.Context, windowTitle string) (presence.Activity, error)
}

// Watcher feeds window titles into a handler, one update per change.
type Watcher struct {
	handler  TitleHandler
	lockPath string
	lock     *flock.Flock
	logger   *slog.Logger
}

// New builds a watcher guarded by the lock file at lockPath.
func New(lockPath string, handler TitleHandler, logger *slog.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watcher requires a title handler")
	}
	if strings.TrimSpace(lockPath) == "" {
		return nil, errors.New("watcher requires a lock path")
	}
	return &Watcher{
		handler:  handler,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		logger:   logging.NewComponentLogger(logger, "watch"),
	}, nil
}

// Run reads newline separated titles from r until EOF or cancellation. The
// lock is held for the whole run.
func (w *Watcher) Run(ctx context.Context, r io.Reader) error {
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn("failed to release watch lock",
				logging.Error(err),
				logging.String(logging.FieldEventType, "watch_unlock_failed"),
				logging.String(logging.FieldErrorHint, "remove "+w.lockPath+" if no watcher is running"),
				logging.String(logging.FieldImpact, "the next watch may report it is already running"))
		}
	}()
	w.logger.Info("watching window titles", logging.String("lock", w.lockPath))

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	ctx = services.WithSource(ctx, "watch")
	var last string
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, open := <-lines:
			if !open {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read titles: %w", err)
					}
				default:
				}
				w.logger.Info("title stream closed")
				return nil
			}
			title := strings.TrimSpace(line)
			if title == "" || title == last {
				continue
			}
			last = title
			w.handle(ctx, title)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, title string) {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, w.logger)
	activity, err := w.handler.HandleTitle(ctx, title)
	if err != nil {
		logging.WarnWithContext(logger, "presence update failed", "presence_update_failed",
			logging.String("window_title", title),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "make sure the Discord desktop client is running"),
			logging.String(logging.FieldImpact, "presence shows the previous activity"),
		)
		return
	}
	logger.Debug("title handled",
		logging.String("window_title", title),
		logging.String("large_image_key", activity.LargeImageKey))
}
