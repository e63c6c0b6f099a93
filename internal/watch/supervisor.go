// Package watch contains the activity pipeline: per-entity feed polling
// loops, the transition classifier, and event emission to the downstream bus.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/spacesedan/redditwatch/internal/cache"
	"github.com/spacesedan/redditwatch/internal/models"
	"github.com/spacesedan/redditwatch/internal/monitoring"
)

// Permanent feed failures. A watcher loop that hits one of these stops and
// reports upward instead of retrying forever; everything else is treated as
// transient and retried with backoff.
var (
	ErrEntityGone  = errors.New("watched entity no longer exists")
	ErrAuthRevoked = errors.New("feed authorization revoked")
)

func permanentFeedError(err error) bool {
	return errors.Is(err, ErrEntityGone) || errors.Is(err, ErrAuthRevoked)
}

// FeedClient supplies new submissions and comments for one entity, newest
// first. Both calls return the fullname of the newest item so the next poll
// can pick up where this one left off. Deliveries are at-least-once and may
// arrive out of causal order; the classifier copes with both.
type FeedClient interface {
	FetchNewSubmissions(ctx context.Context, entity, before string) ([]models.Submission, string, error)
	FetchNewComments(ctx context.Context, entity, before string) ([]models.Comment, string, error)
}

type Config struct {
	CacheCapacity int
	PollInterval  time.Duration

	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Called when a watcher loop stops on a permanent error. Optional.
	OnStopped func(entity string, kind models.ContentKind, err error)
}

const (
	DEFAULT_CACHE_CAPACITY = 4096
	DEFAULT_POLL_INTERVAL  = 15 * time.Second
)

// Watcher owns one polling goroutine per (entity, content kind) pair. The
// feed handle is passed in at construction and shared by every loop.
type Watcher struct {
	feed    FeedClient
	emitter *Emitter
	set     *WatchSet

	submissions *cache.ContentCache
	comments    *cache.ContentCache

	cfg Config

	mu      sync.Mutex
	cancels map[string]map[models.ContentKind]context.CancelFunc
	wg      sync.WaitGroup
}

func NewWatcher(feed FeedClient, bus EventBus, cfg Config) (*Watcher, error) {
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = DEFAULT_CACHE_CAPACITY
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DEFAULT_POLL_INTERVAL
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 1 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 32 * time.Second
	}

	submissions, err := cache.NewContentCache(cfg.CacheCapacity)
	if err != nil {
		return nil, err
	}
	comments, err := cache.NewContentCache(cfg.CacheCapacity)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		feed:        feed,
		emitter:     NewEmitter(bus),
		set:         NewWatchSet(),
		submissions: submissions,
		comments:    comments,
		cfg:         cfg,
		cancels:     make(map[string]map[models.ContentKind]context.CancelFunc),
	}, nil
}

// WatchSubreddit starts submission and comment watchers for a subreddit.
// Watching an already-watched subreddit is a no-op, not an error.
func (w *Watcher) WatchSubreddit(ctx context.Context, name string) {
	w.watch(ctx, models.ScopeSubreddit, name)
}

// WatchRedditor watches a redditor's profile, which behaves like the
// pseudo-subreddit "u_<name>".
func (w *Watcher) WatchRedditor(ctx context.Context, name string) {
	w.watch(ctx, models.ScopeUser, models.ProfileName(name))
}

func (w *Watcher) watch(ctx context.Context, scope models.Scope, entity string) {
	for _, kind := range []models.ContentKind{models.KindSubmission, models.KindComment} {
		if !w.set.MarkStarted(entity, kind) {
			continue
		}

		loopCtx, cancel := context.WithCancel(ctx)
		w.mu.Lock()
		if w.cancels[entity] == nil {
			w.cancels[entity] = make(map[models.ContentKind]context.CancelFunc)
		}
		w.cancels[entity][kind] = cancel
		w.mu.Unlock()

		w.wg.Add(1)
		go w.run(loopCtx, scope, entity, kind)
	}
}

// releaseCancel drops and fires the cancel registered for one loop. Loops
// call it on exit so a permanently stopped watch leaves nothing behind.
func (w *Watcher) releaseCancel(entity string, kind models.ContentKind) {
	w.mu.Lock()
	kinds := w.cancels[entity]
	cancel := kinds[kind]
	delete(kinds, kind)
	if len(kinds) == 0 {
		delete(w.cancels, entity)
	}
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Unwatch cancels the watcher loops for one entity. In-flight classification
// of an already-fetched batch finishes; no new feed reads are issued.
func (w *Watcher) Unwatch(entity string) {
	w.mu.Lock()
	kinds := w.cancels[entity]
	delete(w.cancels, entity)
	w.mu.Unlock()

	for _, cancel := range kinds {
		cancel()
	}
}

// UnwatchRedditor cancels the profile watchers for one redditor.
func (w *Watcher) UnwatchRedditor(name string) {
	w.Unwatch(models.ProfileName(name))
}

// Close cancels every watcher loop and waits for them to finish.
func (w *Watcher) Close() {
	w.mu.Lock()
	for _, kinds := range w.cancels {
		for _, cancel := range kinds {
			cancel()
		}
	}
	w.cancels = make(map[string]map[models.ContentKind]context.CancelFunc)
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *Watcher) run(ctx context.Context, scope models.Scope, entity string, kind models.ContentKind) {
	defer w.wg.Done()
	defer w.set.MarkStopped(entity, kind)
	defer w.releaseCancel(entity, kind)

	slog.Info("[Watcher] Watching entity",
		slog.String("entity", entity),
		slog.String("kind", string(kind)))

	before := ""
	backoff := w.cfg.InitialBackoff

	for {
		select {
		case <-ctx.Done():
			slog.Info("[Watcher] Watch cancelled",
				slog.String("entity", entity),
				slog.String("kind", string(kind)))
			return
		default:
		}

		newest, err := w.poll(ctx, scope, entity, kind, before)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if permanentFeedError(err) {
				slog.Error("[Watcher] Watch stopped permanently",
					slog.String("entity", entity),
					slog.String("kind", string(kind)),
					slog.String("error", err.Error()))
				monitoring.WatchesStopped.WithLabelValues(entity, string(kind)).Inc()
				if w.cfg.OnStopped != nil {
					w.cfg.OnStopped(entity, kind, err)
				}
				return
			}

			slog.Warn("[Watcher] Feed error, backing off",
				slog.String("entity", entity),
				slog.String("kind", string(kind)),
				slog.Duration("backoff", backoff),
				slog.String("error", err.Error()))
			monitoring.TransientRetries.WithLabelValues(entity, string(kind)).Inc()

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > w.cfg.MaxBackoff {
				backoff = w.cfg.MaxBackoff
			}
			continue
		}

		backoff = w.cfg.InitialBackoff
		if newest != "" {
			before = newest
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.cfg.PollInterval):
		}
	}
}

// poll fetches one batch and classifies every item in feed-delivery order.
func (w *Watcher) poll(ctx context.Context, scope models.Scope, entity string, kind models.ContentKind, before string) (string, error) {
	switch kind {
	case models.KindComment:
		comments, newest, err := w.feed.FetchNewComments(ctx, entity, before)
		if err != nil {
			return "", err
		}
		// Listings arrive newest first; classify oldest first so a
		// create is cached before the edit that follows it.
		for i := len(comments) - 1; i >= 0; i-- {
			w.handle(ctx, scope, commentItem(entity, comments[i]), w.comments)
		}
		return newest, nil
	default:
		submissions, newest, err := w.feed.FetchNewSubmissions(ctx, entity, before)
		if err != nil {
			return "", err
		}
		for i := len(submissions) - 1; i >= 0; i-- {
			w.handle(ctx, scope, submissionItem(entity, submissions[i]), w.submissions)
		}
		return newest, nil
	}
}

func (w *Watcher) handle(ctx context.Context, scope models.Scope, item Item, cc *cache.ContentCache) {
	cls := Classify(item, cc)
	monitoring.EventsClassified.WithLabelValues(string(item.Kind), string(cls.Transition)).Inc()

	if _, err := w.emitter.Emit(ctx, scope, item, cls); err != nil {
		slog.Warn("[Watcher] Failed to publish event",
			slog.String("item_id", item.ID),
			slog.String("transition", string(cls.Transition)),
			slog.String("error", err.Error()))
	}
}
