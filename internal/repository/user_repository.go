package repository

import (
	"notdienst_bot/internal/entities"
	"sync"
)

// UserRepository holds admin API operators. Accounts come from the
// environment at startup, so an in-memory map is enough.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entities.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]entities.User)}
}

func (r *UserRepository) Create(user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.Username] = *user
	return nil
}

// GetByUsername returns nil when the user does not exist
func (r *UserRepository) GetByUsername(username string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, nil // Not found
	}
	return &user, nil
}
