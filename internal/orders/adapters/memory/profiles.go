package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dejobratic/orderbot/internal/orders/domain"
)

// Profiles keeps customer profiles in memory.
type Profiles struct {
	mu       sync.RWMutex
	profiles map[int64]domain.Profile
	now      func() time.Time
}

func NewProfiles() *Profiles {
	return &Profiles{
		profiles: make(map[int64]domain.Profile),
		now:      time.Now,
	}
}

func (p *Profiles) IsBanned(_ context.Context, customerID int64) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.profiles[customerID].Banned, nil
}

// Upsert keeps the existing ban flag and creation time.
func (p *Profiles) Upsert(_ context.Context, profile domain.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	existing, ok := p.profiles[profile.CustomerID]
	if ok {
		profile.Banned = existing.Banned
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.Banned = false
		profile.CreatedAt = p.now().UTC()
	}
	p.profiles[profile.CustomerID] = profile
	return nil
}

func (p *Profiles) List(_ context.Context) ([]domain.Profile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	profiles := make([]domain.Profile, 0, len(p.profiles))
	for _, profile := range p.profiles {
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		if !profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
		}
		return profiles[i].CustomerID < profiles[j].CustomerID
	})
	return profiles, nil
}

// SetBanned flips the ban flag, creating the profile if needed.
func (p *Profiles) SetBanned(_ context.Context, customerID int64, banned bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	profile, ok := p.profiles[customerID]
	if !ok {
		profile = domain.Profile{CustomerID: customerID, CreatedAt: p.now().UTC()}
	}
	profile.Banned = banned
	p.profiles[customerID] = profile
	return nil
}

// Get returns the stored profile, if any.
func (p *Profiles) Get(customerID int64) (domain.Profile, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	profile, ok := p.profiles[customerID]
	return profile, ok
}
