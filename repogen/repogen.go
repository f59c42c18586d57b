// Package repogen provides generic repository interfaces for data access patterns.
//
// It defines generic read and write repository contracts over entities built on
// entity.Base, and a bun-backed implementation. Writes never touch storage
// directly: they stage changes in a uow.Session and report success by the
// staging state the session ends up in. Storage is written when the session
// is committed.
package repogen

import (
	"context"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/pagination"
)

// ReadRepo defines a generic read-only repository for entities of type E keyed
// by K with filter type F.
//
// Lookups that match nothing return the zero E or an empty slice and no error.
// Slices are never nil.
type ReadRepo[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any] interface {
	// GetByUid returns the entity with the given key, or the zero E if there is none.
	// More than one match is reported as an error.
	GetByUid(ctx context.Context, uid K, opts ...ReadOption) (E, error)
	// GetAll returns every entity in the default order.
	GetAll(ctx context.Context, opts ...ReadOption) ([]E, error)
	// GetByCondition returns the first entity matching filters in the default order.
	GetByCondition(ctx context.Context, filters F, opts ...ReadOption) (E, error)
	// GetWhere returns all entities matching filters in the default order.
	GetWhere(ctx context.Context, filters F, opts ...ReadOption) ([]E, error)
	// Count returns the number of entities.
	Count(ctx context.Context, opts ...ReadOption) (int, error)
	// CountWhere returns the number of entities matching filters.
	CountWhere(ctx context.Context, filters F, opts ...ReadOption) (int, error)
	// Exist reports whether any entity matches filters.
	Exist(ctx context.Context, filters F, opts ...ReadOption) (bool, error)
	// ListPage returns one page of the entities matching filters.
	ListPage(ctx context.Context, filters F, page pagination.Request, opts ...ReadOption) (pagination.Response[E], error)
}

// WriteRepo defines a generic repository that stages changes for entities of type E.
//
// Each call reports whether the entity reached the target staging state
// (Added, Modified or Deleted) and returns the input. Nil entities and empty
// batches are rejected with false and nothing is staged. Range calls stage every
// entity and report true only if all of them reached the target state.
// The returned error is reserved for infrastructure failures.
type WriteRepo[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status] interface {
	// Add stages e for insertion.
	Add(ctx context.Context, e E) (bool, E, error)
	// AddRange stages es for insertion.
	AddRange(ctx context.Context, es []E) (bool, []E, error)
	// Update stages e for update. e must be tracked.
	Update(ctx context.Context, e E) (bool, E, error)
	// UpdateRange stages es for update.
	UpdateRange(ctx context.Context, es []E) (bool, []E, error)
	// Remove stages e for deletion.
	Remove(ctx context.Context, e E) (bool, E, error)
	// RemoveRange stages es for deletion.
	RemoveRange(ctx context.Context, es []E) (bool, []E, error)
	// SoftRemove stamps the deletion audit fields and stages e for update.
	// It needs a known actor.
	SoftRemove(ctx context.Context, e E) (bool, E, error)
}

// Repo combines ReadRepo and WriteRepo.
type Repo[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any] interface {
	ReadRepo[E, K, T, S, F]
	WriteRepo[E, K, T, S]
}

// ReadOptions holds per-call read settings.
type ReadOptions struct {
	// Tracking attaches returned entities to the session so they can be updated
	// or removed afterwards.
	Tracking bool
}

// ReadOption configures a read call.
type ReadOption func(*ReadOptions)

// WithTracking makes a read attach its results to the session.
func WithTracking() ReadOption {
	return func(o *ReadOptions) {
		o.Tracking = true
	}
}

// ApplyReadOptions folds opts into ReadOptions. The default is no tracking.
func ApplyReadOptions(opts []ReadOption) ReadOptions {
	var o ReadOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ReadWrapFunc decorates a ReadRepo.
type ReadWrapFunc[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any] func(
	ReadRepo[E, K, T, S, F],
) ReadRepo[E, K, T, S, F]

// WriteWrapFunc decorates a WriteRepo.
type WriteWrapFunc[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status] func(
	WriteRepo[E, K, T, S],
) WriteRepo[E, K, T, S]
