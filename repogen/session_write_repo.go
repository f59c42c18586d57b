package repogen

import (
	"context"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/uow"
	"github.com/samber/lo"
)

// SessionWriteRepo implements WriteRepo by staging changes in a uow.Session.
// It is storage agnostic: what is written on commit depends on the session's
// flusher.
type SessionWriteRepo[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status] struct {
	session *uow.Session
	auditor entity.Auditor[K, T]
}

// SessionWriteRepoOption configures a SessionWriteRepo.
type SessionWriteRepoOption[K entity.Key, T entity.Timestamp[T]] func(*writeRepoOptions[K, T])

type writeRepoOptions[K entity.Key, T entity.Timestamp[T]] struct {
	auditor entity.Auditor[K, T]
}

// WithAuditor stamps audit fields while staging. Without an auditor entities
// are staged as given.
func WithAuditor[K entity.Key, T entity.Timestamp[T]](a entity.Auditor[K, T]) SessionWriteRepoOption[K, T] {
	return func(o *writeRepoOptions[K, T]) {
		o.auditor = a
	}
}

// NewSessionWriteRepo creates a SessionWriteRepo staging into session.
func NewSessionWriteRepo[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status](
	session *uow.Session,
	opts ...SessionWriteRepoOption[K, T],
) *SessionWriteRepo[E, K, T, S] {
	var o writeRepoOptions[K, T]
	for _, opt := range opts {
		opt(&o)
	}
	return &SessionWriteRepo[E, K, T, S]{
		session: session,
		auditor: o.auditor,
	}
}

// StateOf returns the staging state of e.
func (r *SessionWriteRepo[E, K, T, S]) StateOf(e E) uow.State {
	return r.session.State(e)
}

// Session returns the session changes are staged in.
func (r *SessionWriteRepo[E, K, T, S]) Session() *uow.Session {
	return r.session
}

func (r *SessionWriteRepo[E, K, T, S]) Add(ctx context.Context, e E) (bool, E, error) {
	if entity.IsNil(e) {
		return false, e, nil
	}

	created := r.session.State(e) == uow.Detached

	state, err := r.session.Add(ctx, e)
	if err != nil {
		return false, e, err
	}

	if created && state == uow.Added && r.auditor != nil {
		e.MarkCreated(r.auditor.Actor(ctx), r.auditor.Now())
	}

	return state == uow.Added, e, nil
}

func (r *SessionWriteRepo[E, K, T, S]) AddRange(ctx context.Context, es []E) (bool, []E, error) {
	return r.stageRange(ctx, es, r.Add)
}

func (r *SessionWriteRepo[E, K, T, S]) Update(ctx context.Context, e E) (bool, E, error) {
	if entity.IsNil(e) {
		return false, e, nil
	}

	state, err := r.session.Update(ctx, e)
	if err != nil {
		return false, e, err
	}

	if state != uow.Modified {
		return false, e, nil
	}

	if r.auditor != nil {
		actor, now := r.auditor.Actor(ctx), r.auditor.Now()
		e.MarkModified(actor, now)
		e.MarkStatus(actor, now)
	}

	return true, e, nil
}

func (r *SessionWriteRepo[E, K, T, S]) UpdateRange(ctx context.Context, es []E) (bool, []E, error) {
	return r.stageRange(ctx, es, r.Update)
}

func (r *SessionWriteRepo[E, K, T, S]) Remove(ctx context.Context, e E) (bool, E, error) {
	if entity.IsNil(e) {
		return false, e, nil
	}

	state, err := r.session.Remove(ctx, e)
	if err != nil {
		return false, e, err
	}

	return state == uow.Deleted, e, nil
}

func (r *SessionWriteRepo[E, K, T, S]) RemoveRange(ctx context.Context, es []E) (bool, []E, error) {
	return r.stageRange(ctx, es, r.Remove)
}

// SoftRemove stamps DeletedBy, DeletionDateAndTime and IsDeleted and stages e
// as Modified. An untracked e is attached first. Without an auditor or a known
// actor nothing is staged.
func (r *SessionWriteRepo[E, K, T, S]) SoftRemove(ctx context.Context, e E) (bool, E, error) {
	if entity.IsNil(e) {
		return false, e, nil
	}
	if err := ctx.Err(); err != nil {
		return false, e, err
	}
	if r.auditor == nil {
		return false, e, nil
	}

	actor := r.auditor.Actor(ctx)
	if actor == nil {
		return false, e, nil
	}

	if r.session.State(e) == uow.Detached {
		r.session.Attach(e)
	}

	state, err := r.session.Update(ctx, e)
	if err != nil {
		return false, e, err
	}
	if state != uow.Modified {
		return false, e, nil
	}

	now := r.auditor.Now()
	e.MarkDeleted(actor, now)
	e.MarkModified(actor, now)

	return true, e, nil
}

// stageRange applies stage to every entity, even after one fails to reach its
// target state, and reports whether all of them did. It stops at the first error.
func (r *SessionWriteRepo[E, K, T, S]) stageRange(
	ctx context.Context,
	es []E,
	stage func(context.Context, E) (bool, E, error),
) (bool, []E, error) {
	if es == nil {
		return false, []E{}, nil
	}
	if len(es) == 0 {
		return false, es, nil
	}

	results := make([]bool, 0, len(es))
	for _, e := range es {
		ok, _, err := stage(ctx, e)
		if err != nil {
			return false, es, err
		}
		results = append(results, ok)
	}

	return lo.EveryBy(results, func(ok bool) bool { return ok }), es, nil
}
