// Package memory is a process-local implementation of every repository port.
// It backs the tests and the no-database dev mode.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

// ErrSubscriptionClosed is returned by Next after Close.
var ErrSubscriptionClosed = errors.New("memory: subscription closed")

type Store struct {
	mu        sync.Mutex
	users     map[int64]anon.User
	sessions  map[int64]anon.Session
	replies   map[int64]anon.ReplyState
	messages  map[int64]*anon.Message
	summaries map[string]anon.ConversationSummary
	nextID    int64

	writeErr     error
	readErr      error
	subscribeErr error
	subs         map[*subscription]struct{}
}

func NewStore() *Store {
	return &Store{
		users:     make(map[int64]anon.User),
		sessions:  make(map[int64]anon.Session),
		replies:   make(map[int64]anon.ReplyState),
		messages:  make(map[int64]*anon.Message),
		summaries: make(map[string]anon.ConversationSummary),
		subs:      make(map[*subscription]struct{}),
	}
}

var (
	_ repository.UserRepository    = (*Store)(nil)
	_ repository.PairingRepository = (*Store)(nil)
	_ repository.MessageRepository = (*Store)(nil)
	_ repository.SummaryRepository = (*Store)(nil)
	_ repository.ChangeStream      = (*Store)(nil)
)

// FailWrites makes every mutating call return err until called again with nil.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	s.writeErr = err
	s.mu.Unlock()
}

// FailReads makes message listing calls return err until called again with nil.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	s.readErr = err
	s.mu.Unlock()
}

// FailSubscribe makes Subscribe return err until called again with nil.
func (s *Store) FailSubscribe(err error) {
	s.mu.Lock()
	s.subscribeErr = err
	s.mu.Unlock()
}

// BreakSubscriptions kills every live subscription with err.
func (s *Store) BreakSubscriptions(err error) {
	s.mu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()
	for _, sub := range subs {
		sub.fail(err)
	}
}

// Subscribers reports how many subscriptions are open.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// ===================== users =====================

func (s *Store) UpsertUser(_ context.Context, u anon.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	if cur, ok := s.users[u.ID]; ok {
		u.Lang = cur.Lang
		u.LangSelected = cur.LangSelected
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, id int64) (*anon.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUsers(_ context.Context, ids []int64) (map[int64]anon.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]anon.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *Store) SetUserLang(_ context.Context, id int64, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	u := s.users[id]
	u.ID = id
	u.Lang = lang
	u.LangSelected = true
	s.users[id] = u
	return nil
}

// ===================== pairing =====================

func (s *Store) UpsertSession(_ context.Context, sess anon.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.sessions[sess.AnonID] = sess
	return nil
}

func (s *Store) GetSession(_ context.Context, anonID int64) (*anon.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[anonID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sess, nil
}

func (s *Store) DeleteSession(_ context.Context, anonID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return false, s.writeErr
	}
	_, ok := s.sessions[anonID]
	delete(s.sessions, anonID)
	return ok, nil
}

// SessionCount is a test helper.
func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) UpsertReplyState(_ context.Context, r anon.ReplyState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.replies[r.OwnerID] = r
	return nil
}

func (s *Store) GetReplyState(_ context.Context, ownerID int64) (*anon.ReplyState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.replies[ownerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *Store) DeleteReplyState(_ context.Context, ownerID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return false, s.writeErr
	}
	_, ok := s.replies[ownerID]
	delete(s.replies, ownerID)
	return ok, nil
}

func (s *Store) DeleteReplyStatesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	var n int64
	for owner, r := range s.replies {
		if r.CreatedAt.Before(cutoff) {
			delete(s.replies, owner)
			n++
		}
	}
	return n, nil
}

// ===================== messages =====================

func (s *Store) CreateMessage(_ context.Context, m anon.Message) (int64, error) {
	s.mu.Lock()
	if s.writeErr != nil {
		err := s.writeErr
		s.mu.Unlock()
		return 0, err
	}
	s.nextID++
	m.ID = s.nextID
	cp := m
	s.messages[m.ID] = &cp
	s.mu.Unlock()

	s.publish(repository.Change{Op: repository.ChangeInsert, Message: m})
	return m.ID, nil
}

func (s *Store) GetMessage(_ context.Context, id int64) (*anon.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Store) HasMessageFromTo(_ context.Context, sender, recipient int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.Sender == sender && m.Recipient == recipient {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SetDelivered(_ context.Context, id int64, loc anon.Locator) error {
	return s.update(id, []string{repository.FieldDelivered}, func(m *anon.Message) bool {
		m.Delivered = loc
		return true
	})
}

func (s *Store) FindByLocator(_ context.Context, loc anon.Locator, side anon.Side) (*anon.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *anon.Message
	for _, m := range s.messages {
		if m.Locator(side) != loc {
			continue
		}
		if found == nil || m.ID > found.ID {
			found = m
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (s *Store) SetReactions(_ context.Context, id int64, r anon.Reactions) error {
	fields := []string{repository.FieldSenderReaction, repository.FieldRecipientReaction, repository.FieldReactions}
	return s.update(id, fields, func(m *anon.Message) bool {
		m.Reactions = r
		return true
	})
}

func (s *Store) MarkPurchased(_ context.Context, id int64, p repository.PurchaseProof) (*anon.Message, error) {
	var out *anon.Message
	err := s.update(id, []string{repository.FieldReveal}, func(m *anon.Message) bool {
		if m.Recipient != p.PayerID || m.Reveal.Purchased {
			return false
		}
		at := p.At
		m.Reveal = anon.Reveal{
			Purchased:        true,
			PurchasedAt:      &at,
			Stars:            p.Stars,
			ChargeID:         p.ChargeID,
			ProviderChargeID: p.ProviderChargeID,
		}
		cp := *m
		out = &cp
		return true
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return out, err
}

// update applies fn under the lock and publishes a change when fn reports a write.
func (s *Store) update(id int64, fields []string, fn func(m *anon.Message) bool) error {
	s.mu.Lock()
	if s.writeErr != nil {
		err := s.writeErr
		s.mu.Unlock()
		return err
	}
	m, ok := s.messages[id]
	if !ok {
		s.mu.Unlock()
		return repository.ErrNotFound
	}
	changed := fn(m)
	snapshot := *m
	s.mu.Unlock()

	if changed {
		s.publish(repository.Change{Op: repository.ChangeUpdate, Message: snapshot, Fields: fields})
	}
	return nil
}

func (s *Store) ListMessagesAfter(_ context.Context, after int64, limit int) ([]anon.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	out := s.sortedLocked(func(m *anon.Message) bool { return m.ID > after }, false)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MaxMessageID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return 0, s.readErr
	}
	var maxID int64
	for id := range s.messages {
		if id > maxID {
			maxID = id
		}
	}
	return maxID, nil
}

func (s *Store) ListRoomMessages(_ context.Context, roomKey string, before int64, limit int) ([]anon.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	out := s.sortedLocked(func(m *anon.Message) bool {
		return m.RoomKey == roomKey && (before <= 0 || m.ID < before)
	}, true)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) LatestPerRoom(_ context.Context, limit int) ([]anon.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	latest := make(map[string]*anon.Message)
	for _, m := range s.messages {
		if cur, ok := latest[m.RoomKey]; !ok || m.ID > cur.ID {
			latest[m.RoomKey] = m
		}
	}
	out := make([]anon.Message, 0, len(latest))
	for _, m := range latest {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) sortedLocked(keep func(*anon.Message) bool, desc bool) []anon.Message {
	out := make([]anon.Message, 0)
	for _, m := range s.messages {
		if keep(m) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ===================== summaries =====================

func (s *Store) UpsertSummaryIfNewer(_ context.Context, sum anon.ConversationSummary) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return false, s.writeErr
	}
	if cur, ok := s.summaries[sum.RoomKey]; ok && cur.LastMessageID >= sum.LastMessageID {
		return false, nil
	}
	s.summaries[sum.RoomKey] = sum
	return true, nil
}

func (s *Store) ListSummaries(_ context.Context, limit int) ([]anon.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	out := make([]anon.ConversationSummary, 0, len(s.summaries))
	for _, sum := range s.summaries {
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageID > out[j].LastMessageID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
