package memory

import (
	"context"
	"sync"

	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

const subscriptionBuffer = 256

type subscription struct {
	store *Store
	ch    chan repository.Change

	once sync.Once
	done chan struct{}
	mu   sync.Mutex
	err  error
}

func (s *Store) Subscribe(_ context.Context) (repository.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}
	sub := &subscription{
		store: s,
		ch:    make(chan repository.Change, subscriptionBuffer),
		done:  make(chan struct{}),
	}
	s.subs[sub] = struct{}{}
	return sub, nil
}

// publish fans a change out to every subscriber. A full buffer kills that subscriber,
// the same way a dropped LISTEN connection would.
func (s *Store) publish(c repository.Change) {
	s.mu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		select {
		case <-sub.done:
		case sub.ch <- c:
		default:
			sub.fail(ErrSubscriptionClosed)
		}
	}
}

func (sub *subscription) Next(ctx context.Context) (repository.Change, error) {
	select {
	case c := <-sub.ch:
		return c, nil
	default:
	}
	select {
	case <-ctx.Done():
		return repository.Change{}, ctx.Err()
	case <-sub.done:
		sub.mu.Lock()
		defer sub.mu.Unlock()
		return repository.Change{}, sub.err
	case c := <-sub.ch:
		return c, nil
	}
}

func (sub *subscription) Close() error {
	sub.fail(ErrSubscriptionClosed)
	return nil
}

func (sub *subscription) fail(err error) {
	sub.once.Do(func() {
		sub.mu.Lock()
		sub.err = err
		sub.mu.Unlock()
		close(sub.done)

		sub.store.mu.Lock()
		delete(sub.store.subs, sub)
		sub.store.mu.Unlock()
	})
}
