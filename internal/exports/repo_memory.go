package exports

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepo backs history in dev when no database is configured.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string]Export
	owned   map[string][]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		records: make(map[string]Export),
		owned:   make(map[string][]string),
	}
}

func (r *MemoryRepo) Insert(ctx context.Context, export Export) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.records[export.ID]; !dup {
		r.owned[export.UserID] = append(r.owned[export.UserID], export.ID)
	}
	r.records[export.ID] = export
	return nil
}

func (r *MemoryRepo) Find(ctx context.Context, exportID string) (Export, error) {
	if err := ctx.Err(); err != nil {
		return Export{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	export, ok := r.records[exportID]
	if !ok || export.DeletedAt != nil {
		return Export{}, ErrNotFound
	}
	return export, nil
}

func (r *MemoryRepo) History(ctx context.Context, userID string, page Page) ([]Export, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page = page.clamp()

	r.mu.RLock()
	list := make([]Export, 0, len(r.owned[userID]))
	for _, id := range r.owned[userID] {
		if e := r.records[id]; e.DeletedAt == nil {
			list = append(list, e)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(list, func(a, b Export) int {
		switch {
		case newerFirst(a, b):
			return -1
		case newerFirst(b, a):
			return 1
		}
		return 0
	})
	if page.Offset >= len(list) {
		return []Export{}, nil
	}
	list = list[page.Offset:]
	if len(list) > page.Limit {
		list = list[:page.Limit]
	}
	return list, nil
}

var _ Repo = (*MemoryRepo)(nil)
