package users

import (
	"context"
	"sync"
	"time"
)

// Repo persists accounts. RecordSignIn refreshes identity fields and never
// touches the profile.
type Repo interface {
	RecordSignIn(ctx context.Context, id Identity) (User, error)
	Get(ctx context.Context, userID string) (User, error)
	SetProfile(ctx context.Context, userID string, p Profile) (User, error)
}

// MemoryRepo backs development runs without a database.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: map[string]User{}, now: time.Now}
}

func (r *MemoryRepo) RecordSignIn(ctx context.Context, id Identity) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	now := r.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id.ID]
	if !ok {
		u = User{ID: id.ID, CreatedAt: now}
	}
	u.Email, u.Name, u.Picture = id.Email, id.Name, id.Picture
	u.UpdatedAt = now
	r.users[id.ID] = u
	return u, nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) SetProfile(ctx context.Context, userID string, p Profile) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	u.JobTitle, u.Department = p.JobTitle, p.Department
	u.UpdatedAt = r.now().UTC()
	r.users[userID] = u
	return u, nil
}
