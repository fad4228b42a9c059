package users

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu    sync.RWMutex
	byID  map[string]User
	byEml map[string]string // email -> id
}

func NewInMemoryStore() Store {
	return &memoryStore{byID: map[string]User{}, byEml: map[string]string{}}
}

func (m *memoryStore) Put(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().Unix()
	}
	m.byID[u.ID] = u
	m.byEml[u.Email] = u.ID
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *memoryStore) GetByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEml[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return m.byID[id], nil
}
