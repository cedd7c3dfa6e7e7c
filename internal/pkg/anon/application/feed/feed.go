// Package feed pushes stored message activity to dashboard viewers.
//
// The feed prefers the store's change notifications (push mode). When the
// subscription breaks it falls back to polling by message id (poll mode) and
// keeps retrying push on a fixed interval; a successful retry tears polling down.
package feed

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/metrics"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

// Broadcaster is the dashboard fan-out primitive.
type Broadcaster interface {
	BroadcastRoom(roomKey, event string, data any) (int, error)
	BroadcastEvent(event string, data any) (int, error)
}

// Source is the catch-up read side used by poll mode.
type Source interface {
	ListMessagesAfter(ctx context.Context, after int64, limit int) ([]anon.Message, error)
	MaxMessageID(ctx context.Context) (int64, error)
}

type Options struct {
	BatchSize   int
	MaxBatches  int // per poll tick
	PollBase    time.Duration
	PollFloor   time.Duration
	PollCeiling time.Duration
	PushRetry   time.Duration
}

func DefaultOptions() Options {
	return Options{
		BatchSize:   200,
		MaxBatches:  8,
		PollBase:    1200 * time.Millisecond,
		PollFloor:   200 * time.Millisecond,
		PollCeiling: 30 * time.Second,
		PushRetry:   30 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BatchSize <= 0 {
		o.BatchSize = d.BatchSize
	}
	if o.MaxBatches <= 0 {
		o.MaxBatches = d.MaxBatches
	}
	if o.PollBase <= 0 {
		o.PollBase = d.PollBase
	}
	if o.PollFloor <= 0 {
		o.PollFloor = d.PollFloor
	}
	if o.PollCeiling <= 0 {
		o.PollCeiling = d.PollCeiling
	}
	if o.PushRetry <= 0 {
		o.PushRetry = d.PushRetry
	}
	return o
}

// nextPollDelay: a full last batch means more is waiting, so poll again at the
// floor; a short batch resets to the baseline; an error doubles the delay up
// to the ceiling.
func (o Options) nextPollDelay(current time.Duration, batchLen int, err error) time.Duration {
	if err != nil {
		next := max(current, o.PollBase) * 2
		return min(next, o.PollCeiling)
	}
	if batchLen >= o.BatchSize {
		return o.PollFloor
	}
	return o.PollBase
}

type mode int32

const (
	modeIdle mode = iota
	modePush
	modePoll
)

func (m mode) String() string {
	switch m {
	case modePush:
		return "push"
	case modePoll:
		return "poll"
	default:
		return "idle"
	}
}

type Feed struct {
	stream repository.ChangeStream
	source Source
	out    Broadcaster
	opts   Options
	logger *slog.Logger

	// mark is the highest message id seen as an insert. Poll mode reads past it.
	mark   atomic.Int64
	seeded atomic.Bool

	// caughtUp holds ids the last catch-up already broadcast, so push skips them once.
	caughtMu sync.Mutex
	caughtUp map[int64]struct{}

	mu       sync.Mutex
	ctx      context.Context
	mode     mode
	sub      repository.Subscription
	stopPoll context.CancelFunc
	pollDone chan struct{}
	retry    *time.Timer
	wg       sync.WaitGroup
}

func New(stream repository.ChangeStream, source Source, out Broadcaster, opts Options, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{stream: stream, source: source, out: out, opts: opts.withDefaults(), logger: logger}
}

// Mode reports "idle", "push" or "poll".
func (f *Feed) Mode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode.String()
}

// Run starts in push mode when possible and blocks until ctx is done.
func (f *Feed) Run(ctx context.Context) error {
	f.mu.Lock()
	f.ctx = ctx
	f.mu.Unlock()

	sub, err := f.subscribe(ctx)
	if err == nil {
		f.seed(ctx)
	}

	f.mu.Lock()
	if err == nil {
		f.enterPushLocked(sub)
	} else {
		f.logger.Warn("feed_push_unavailable", "err", err)
		f.enterPollLocked()
		f.scheduleRetryLocked()
	}
	f.mu.Unlock()

	<-ctx.Done()
	f.shutdown()
	return nil
}

func (f *Feed) subscribe(ctx context.Context) (repository.Subscription, error) {
	if f.stream == nil {
		return nil, errNoStream
	}
	return f.stream.Subscribe(ctx)
}

// seed moves the mark to the current maximum id so polling starts from now.
func (f *Feed) seed(ctx context.Context) bool {
	if f.seeded.Load() {
		return true
	}
	maxID, err := f.source.MaxMessageID(ctx)
	if err != nil {
		f.logger.Warn("feed_seed_failed", "err", err)
		return false
	}
	f.advance(maxID)
	f.seeded.Store(true)
	return true
}

// advance raises the mark to id and reports whether id was new.
func (f *Feed) advance(id int64) bool {
	for {
		cur := f.mark.Load()
		if id <= cur {
			return false
		}
		if f.mark.CompareAndSwap(cur, id) {
			return true
		}
	}
}

func (f *Feed) setModeLocked(m mode) {
	if f.mode != m {
		f.logger.Info("feed_mode_changed", "from", f.mode.String(), "to", m.String())
	}
	f.mode = m
	metrics.SetFeedMode(m.String())
}

// ===================== push =====================

func (f *Feed) enterPushLocked(sub repository.Subscription) {
	f.sub = sub
	f.setModeLocked(modePush)
	f.wg.Add(1)
	go f.pushLoop(f.ctx, sub)
}

func (f *Feed) pushLoop(ctx context.Context, sub repository.Subscription) {
	defer f.wg.Done()
	for {
		ch, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			f.pushFailed(sub, err)
			return
		}
		f.handleChange(ch)
	}
}

func (f *Feed) pushFailed(sub repository.Subscription, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sub != sub || f.ctx.Err() != nil {
		return
	}
	f.logger.Warn("feed_push_failed", "err", err)
	f.sub = nil
	_ = sub.Close()
	f.enterPollLocked()
	f.scheduleRetryLocked()
}

func (f *Feed) scheduleRetryLocked() {
	if f.retry != nil {
		f.retry.Stop()
	}
	f.retry = time.AfterFunc(f.opts.PushRetry, f.retryPush)
}

func (f *Feed) retryPush() {
	f.mu.Lock()
	ctx := f.ctx
	if ctx.Err() != nil || f.mode == modePush {
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	sub, err := f.subscribe(ctx)

	f.mu.Lock()
	if ctx.Err() != nil || f.mode != modePoll || f.stopPoll == nil {
		f.mu.Unlock()
		if sub != nil {
			_ = sub.Close()
		}
		return
	}
	if err != nil {
		f.logger.Debug("feed_push_retry_failed", "err", err)
		f.scheduleRetryLocked()
		f.mu.Unlock()
		return
	}
	stop, done := f.stopPoll, f.pollDone
	f.stopPoll, f.pollDone = nil, nil
	f.mu.Unlock()

	// The subscription is already open, so anything committed during the
	// catch-up reaches push too; the ids sent here are skipped there.
	stop()
	<-done
	sent := make(map[int64]struct{})
	if _, err := f.drain(ctx, sent); err != nil {
		f.logger.Warn("feed_catch_up_failed", "err", err)
	}
	f.caughtMu.Lock()
	f.caughtUp = sent
	f.caughtMu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if ctx.Err() != nil {
		_ = sub.Close()
		return
	}
	f.enterPushLocked(sub)
}

// skipCaughtUp reports whether id went out during the last catch-up, and
// forgets it.
func (f *Feed) skipCaughtUp(id int64) bool {
	f.caughtMu.Lock()
	defer f.caughtMu.Unlock()
	if _, ok := f.caughtUp[id]; !ok {
		return false
	}
	delete(f.caughtUp, id)
	return true
}

func (f *Feed) handleChange(ch repository.Change) {
	switch ch.Op {
	case repository.ChangeInsert:
		// Notifications arrive in commit order, which need not be id order.
		f.seeded.Store(true)
		f.advance(ch.Message.ID)
		if !f.skipCaughtUp(ch.Message.ID) {
			f.broadcastInsert(ch.Message)
		}
	case repository.ChangeUpdate:
		if ch.TouchesReactions() {
			f.broadcastReaction(ch.Message)
		}
	}
}

// ===================== poll =====================

func (f *Feed) enterPollLocked() {
	ctx, cancel := context.WithCancel(f.ctx)
	done := make(chan struct{})
	f.stopPoll, f.pollDone = cancel, done
	f.setModeLocked(modePoll)
	f.wg.Add(1)
	go f.pollLoop(ctx, done)
}

func (f *Feed) pollLoop(ctx context.Context, done chan struct{}) {
	defer f.wg.Done()
	defer close(done)

	var delay time.Duration
	for {
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}

		n, err := f.drain(ctx, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			f.logger.Warn("feed_poll_failed", "err", err)
		}
		delay = f.opts.nextPollDelay(delay, n, err)
	}
}

// drain broadcasts inserts past the mark, up to MaxBatches batches, and
// returns the size of the last batch read. Broadcast ids are added to sent
// when it is non-nil.
func (f *Feed) drain(ctx context.Context, sent map[int64]struct{}) (int, error) {
	if !f.seeded.Load() {
		maxID, err := f.source.MaxMessageID(ctx)
		if err != nil {
			return 0, err
		}
		f.advance(maxID)
		f.seeded.Store(true)
		return 0, nil
	}

	last := 0
	for i := 0; i < f.opts.MaxBatches; i++ {
		batch, err := f.source.ListMessagesAfter(ctx, f.mark.Load(), f.opts.BatchSize)
		if err != nil {
			return last, err
		}
		last = len(batch)
		for _, m := range batch {
			if f.advance(m.ID) {
				f.broadcastInsert(m)
				if sent != nil {
					sent[m.ID] = struct{}{}
				}
			}
		}
		if last < f.opts.BatchSize {
			break
		}
	}
	return last, nil
}

// ===================== broadcast =====================

func (f *Feed) broadcastInsert(m anon.Message) {
	if _, err := f.out.BroadcastRoom(m.RoomKey, EventNewMessage, ViewOf(m)); err != nil {
		f.logger.Warn("feed_broadcast_failed", "event", EventNewMessage, "message_id", m.ID, "err", err)
		return
	}
	metrics.FeedBroadcasts.WithLabelValues(EventNewMessage).Inc()

	update := ConversationUpdate{
		RoomKey:       m.RoomKey,
		LastMessageID: m.ID,
		LastMessageAt: m.CreatedAt,
		Preview:       anon.Preview(m.Text, m.Kind),
	}
	if _, err := f.out.BroadcastEvent(EventConversationUpdated, update); err != nil {
		f.logger.Warn("feed_broadcast_failed", "event", EventConversationUpdated, "message_id", m.ID, "err", err)
		return
	}
	metrics.FeedBroadcasts.WithLabelValues(EventConversationUpdated).Inc()
}

func (f *Feed) broadcastReaction(m anon.Message) {
	update := ReactionUpdate{
		MessageID:         m.ID,
		SenderReaction:    m.Reactions.Origin,
		RecipientReaction: m.Reactions.Delivered,
		Reactions:         m.Reactions.Combined(),
	}
	if _, err := f.out.BroadcastRoom(m.RoomKey, EventReactionUpdate, update); err != nil {
		f.logger.Warn("feed_broadcast_failed", "event", EventReactionUpdate, "message_id", m.ID, "err", err)
		return
	}
	metrics.FeedBroadcasts.WithLabelValues(EventReactionUpdate).Inc()
}

func (f *Feed) shutdown() {
	f.mu.Lock()
	if f.retry != nil {
		f.retry.Stop()
	}
	if f.stopPoll != nil {
		f.stopPoll()
	}
	if f.sub != nil {
		_ = f.sub.Close()
		f.sub = nil
	}
	f.setModeLocked(modeIdle)
	f.mu.Unlock()
	f.wg.Wait()
}
