package admins

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps admin accounts in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]User
	byEmail map[string]uuid.UUID
	roles   map[uuid.UUID]map[Role]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[uuid.UUID]User),
		byEmail: make(map[string]uuid.UUID),
		roles:   make(map[uuid.UUID]map[Role]struct{}),
	}
}

func (s *MemoryStore) Create(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return ErrUserExists
	}
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := s.byID[id]
	return &user, nil
}

func (s *MemoryStore) GrantRole(_ context.Context, userID uuid.UUID, role Role) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[userID]; !ok {
		return false, ErrUserNotFound
	}
	held, ok := s.roles[userID]
	if !ok {
		held = make(map[Role]struct{})
		s.roles[userID] = held
	}
	if _, ok := held[role]; ok {
		return false, nil
	}
	held[role] = struct{}{}
	return true, nil
}

func (s *MemoryStore) LinkTelegram(_ context.Context, userID uuid.UUID, telegramUserID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	for id, other := range s.byID {
		if id != userID && other.TelegramUserID != nil && *other.TelegramUserID == telegramUserID {
			return ErrTelegramLinked
		}
	}
	user.TelegramUserID = &telegramUserID
	s.byID[userID] = user
	return nil
}

func (s *MemoryStore) HasRole(_ context.Context, userID uuid.UUID, role Role) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roles[userID][role]
	return ok, nil
}

func (s *MemoryStore) HasRoleByTelegram(_ context.Context, telegramUserID int64, role Role) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, user := range s.byID {
		if user.TelegramUserID == nil || *user.TelegramUserID != telegramUserID {
			continue
		}
		_, ok := s.roles[id][role]
		return ok, nil
	}
	return false, nil
}
