package conversation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dejobratic/orderbot/internal/orders/domain"
)

// Session is one customer's in-progress checkout.
type Session struct {
	CustomerID int64
	ChatID     int64
	Step       Step
	Cart       []domain.CartItem
	Profile    domain.CustomerProfile
	Delivery   domain.DeliveryType
	// Product is the item being sized while Step is StepQuantity.
	Product    *domain.Product
	// Reviewing is set once the summary was shown; later edits return to it.
	Reviewing  bool

	lastSeen time.Time
}

func (s *Session) addressField(step Step) *string {
	switch step {
	case StepHouseNo:
		return &s.Profile.Address.HouseNo
	case StepStreet:
		return &s.Profile.Address.Street
	case StepWard:
		return &s.Profile.Address.Ward
	case StepTownship:
		return &s.Profile.Address.Township
	case StepCity:
		return &s.Profile.Address.City
	default:
		return nil
	}
}

// SessionStore keeps sessions in memory, keyed by customer. Sessions do not
// survive a restart; idle ones are dropped by Expire.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Get returns the customer's session and marks it as active.
func (s *SessionStore) Get(customerID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[customerID]
	if ok {
		session.lastSeen = s.now()
	}
	return session, ok
}

// Start returns the customer's session, creating an idle one if needed.
func (s *SessionStore) Start(customerID, chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[customerID]; ok {
		session.ChatID = chatID
		session.lastSeen = s.now()
		return session
	}
	session := &Session{CustomerID: customerID, ChatID: chatID, Step: StepBrowsing, lastSeen: s.now()}
	s.sessions[customerID] = session
	return session
}

func (s *SessionStore) Clear(customerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, customerID)
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Prune drops sessions untouched for longer than idle and returns how many went.
func (s *SessionStore) Prune(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-idle)
	removed := 0
	for id, session := range s.sessions {
		if session.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Expire prunes idle sessions every interval until ctx is cancelled.
func (s *SessionStore) Expire(ctx context.Context, interval, idle time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Prune(idle); removed > 0 {
				logger.InfoContext(ctx, "expired idle sessions", "removed", removed, "idle", idle.String())
			}
		}
	}
}
