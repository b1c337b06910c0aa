package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/maker-accounts/internal/model"
)

// MemoryAccountRepo keeps accounts in process memory. It mirrors AccountRepo
// semantics, including atomic quota updates, and is selected with
// STORE_DRIVER=memory. A single mutex serializes every operation.
type MemoryAccountRepo struct {
	mu         sync.Mutex
	nextID     uint64
	byID       map[uint64]*model.Account
	byUsername map[string]uint64
}

func NewMemoryAccountRepo() *MemoryAccountRepo {
	return &MemoryAccountRepo{
		byID:       map[uint64]*model.Account{},
		byUsername: map[string]uint64{},
	}
}

func (r *MemoryAccountRepo) Create(_ context.Context, username, passwordHash string) (model.Account, error) {
	username = strings.TrimSpace(username)
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[username]; ok {
		return model.Account{}, ErrUsernameExists
	}
	r.nextID++
	now := time.Now().UTC()
	a := &model.Account{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[a.ID] = a
	r.byUsername[username] = a.ID
	return *a, nil
}

func (r *MemoryAccountRepo) GetByUsername(_ context.Context, username string) (model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byUsername[strings.TrimSpace(username)]
	if !ok {
		return model.Account{}, ErrNotFound
	}
	return *r.byID[id], nil
}

func (r *MemoryAccountRepo) GetByID(_ context.Context, id uint64) (model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return model.Account{}, ErrNotFound
	}
	return *a, nil
}

func (r *MemoryAccountRepo) UpdatePasswordHash(_ context.Context, id uint64, passwordHash string) error {
	return r.update(id, func(a *model.Account) error {
		a.PasswordHash = passwordHash
		return nil
	})
}

func (r *MemoryAccountRepo) SetPremium(_ context.Context, id uint64, premium bool) error {
	return r.update(id, func(a *model.Account) error {
		if a.Premium == premium {
			return ErrNoChange
		}
		a.Premium = premium
		return nil
	})
}

func (r *MemoryAccountRepo) List(_ context.Context) ([]model.AccountSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.AccountSummary, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, model.AccountSummary{ID: a.ID, Username: a.Username})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryAccountRepo) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byUsername, a.Username)
	delete(r.byID, id)
	return nil
}

func (r *MemoryAccountRepo) GetUsage(_ context.Context, id uint64) (model.Usage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return model.Usage{}, ErrNotFound
	}
	return usageOf(a), nil
}

func (r *MemoryAccountRepo) IncreaseUsage(_ context.Context, id uint64, size int64) (model.Usage, error) {
	var u model.Usage
	err := r.update(id, func(a *model.Account) error {
		if size >= model.Ceiling(a.Premium)-a.StorageUsed {
			u = usageOf(a)
			return ErrLimitReached
		}
		a.StorageUsed += size
		u = usageOf(a)
		return nil
	})
	return u, err
}

func (r *MemoryAccountRepo) DecreaseUsage(_ context.Context, id uint64, size int64) (model.Usage, error) {
	var u model.Usage
	err := r.update(id, func(a *model.Account) error {
		a.StorageUsed -= size
		if a.StorageUsed < 0 {
			a.StorageUsed = 0
		}
		u = usageOf(a)
		return nil
	})
	return u, err
}

// update runs fn on the live record under the lock and bumps UpdatedAt when
// fn succeeds.
func (r *MemoryAccountRepo) update(id uint64, fn func(*model.Account) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if err := fn(a); err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func usageOf(a *model.Account) model.Usage {
	return model.Usage{Premium: a.Premium, StorageUsed: a.StorageUsed}
}
