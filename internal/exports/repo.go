package exports

import "context"

// Repo persists export history. Ownership is checked by Service, not here.
type Repo interface {
	Insert(ctx context.Context, export Export) error
	// Find returns ErrNotFound for unknown or soft-deleted ids.
	Find(ctx context.Context, exportID string) (Export, error)
	History(ctx context.Context, userID string, page Page) ([]Export, error)
}
