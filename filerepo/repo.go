// Package filerepo implements the repogen contracts over a single file.
//
// Reads decode the whole file on every call and see entities in file order.
// Writes are staged in the repository's own uow.Session and reach the file when
// Commit rewrites it through a temporary file and a rename.
package filerepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/logger"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/pagination"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/repogen"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/uow"
	"github.com/code19m/errx"
	"github.com/samber/lo"
)

// Verify that Repo implements repogen.Repo.
var _ repogen.Repo[*entity.Base[int64, time.Time, string], int64, time.Time, string, struct{}] = (*Repo[*entity.Base[int64, time.Time, string], int64, time.Time, string, struct{}])(nil)

// Repo is a file-backed repository for entities of type E.
type Repo[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any] struct {
	*repogen.SessionWriteRepo[E, K, T, S]

	path    string
	codec   Codec[E]
	match   func(E, F) bool
	session *uow.Session
	logger  logger.Logger

	mu sync.RWMutex
}

// Builder builds a Repo with sensible defaults.
type Builder[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any] struct {
	path    string
	codec   Codec[E]
	match   func(E, F) bool
	auditor entity.Auditor[K, T]
	logger  logger.Logger
}

// NewBuilder starts a Repo stored at path in the given format.
// Without a matcher every entity matches every filter.
func NewBuilder[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any](
	path string,
	codec Codec[E],
) *Builder[E, K, T, S, F] {
	return &Builder[E, K, T, S, F]{
		path:   path,
		codec:  codec,
		match:  func(E, F) bool { return true },
		logger: logger.Named("filerepo"),
	}
}

// WithMatcher sets the in-memory filter.
func (b *Builder[E, K, T, S, F]) WithMatcher(fn func(E, F) bool) *Builder[E, K, T, S, F] {
	b.match = fn
	return b
}

// WithAuditor stamps audit fields while staging.
func (b *Builder[E, K, T, S, F]) WithAuditor(a entity.Auditor[K, T]) *Builder[E, K, T, S, F] {
	b.auditor = a
	return b
}

// WithLogger sets the logger.
func (b *Builder[E, K, T, S, F]) WithLogger(l logger.Logger) *Builder[E, K, T, S, F] {
	b.logger = l
	return b
}

// Build creates the Repo.
func (b *Builder[E, K, T, S, F]) Build() *Repo[E, K, T, S, F] {
	r := &Repo[E, K, T, S, F]{
		path:   b.path,
		codec:  b.codec,
		match:  b.match,
		logger: b.logger.With("path", b.path, "format", b.codec.Name()),
	}

	r.session = uow.NewSession(uow.FlusherFunc(r.flush), uow.WithLogger(r.logger.Named("session")))

	var opts []repogen.SessionWriteRepoOption[K, T]
	if b.auditor != nil {
		opts = append(opts, repogen.WithAuditor(b.auditor))
	}
	r.SessionWriteRepo = repogen.NewSessionWriteRepo[E, K, T, S](r.session, opts...)

	return r
}

// Commit writes the staged changes to the file.
func (r *Repo[E, K, T, S, F]) Commit(ctx context.Context) (int, error) {
	return r.session.Commit(ctx)
}

func (r *Repo[E, K, T, S, F]) GetByUid(ctx context.Context, uid K, opts ...repogen.ReadOption) (E, error) {
	var zero E

	entities, err := r.load(ctx)
	if err != nil {
		return zero, err
	}

	found := lo.Filter(entities, func(e E, _ int) bool { return e.PrimaryKey() == uid })
	switch len(found) {
	case 0:
		return zero, nil
	case 1:
		return r.track(found, opts)[0], nil
	default:
		return zero, errx.New(
			fmt.Sprintf("multiple %s found", entity.NameOf(zero)),
			errx.WithCode(repogen.CodeMultipleRowsFound),
			errx.WithType(errx.T_Internal),
			errx.WithDetails(errx.D{"uid": fmt.Sprint(uid), "path": r.path}),
		)
	}
}

func (r *Repo[E, K, T, S, F]) GetAll(ctx context.Context, opts ...repogen.ReadOption) ([]E, error) {
	entities, err := r.load(ctx)
	if err != nil {
		return []E{}, err
	}
	return r.track(entities, opts), nil
}

func (r *Repo[E, K, T, S, F]) GetByCondition(ctx context.Context, filters F, opts ...repogen.ReadOption) (E, error) {
	var zero E

	entities, err := r.where(ctx, filters)
	if err != nil || len(entities) == 0 {
		return zero, err
	}
	return r.track(entities[:1], opts)[0], nil
}

func (r *Repo[E, K, T, S, F]) GetWhere(ctx context.Context, filters F, opts ...repogen.ReadOption) ([]E, error) {
	entities, err := r.where(ctx, filters)
	if err != nil {
		return []E{}, err
	}
	return r.track(entities, opts), nil
}

func (r *Repo[E, K, T, S, F]) Count(ctx context.Context, _ ...repogen.ReadOption) (int, error) {
	entities, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(entities), nil
}

func (r *Repo[E, K, T, S, F]) CountWhere(ctx context.Context, filters F, _ ...repogen.ReadOption) (int, error) {
	entities, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return lo.CountBy(entities, func(e E) bool { return r.match(e, filters) }), nil
}

func (r *Repo[E, K, T, S, F]) Exist(ctx context.Context, filters F, _ ...repogen.ReadOption) (bool, error) {
	entities, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(entities, func(e E) bool { return r.match(e, filters) }), nil
}

func (r *Repo[E, K, T, S, F]) ListPage(
	ctx context.Context,
	filters F,
	page pagination.Request,
	opts ...repogen.ReadOption,
) (pagination.Response[E], error) {
	page.Normalize()

	entities, err := r.where(ctx, filters)
	if err != nil {
		return pagination.NewResponse([]E{}, 0, page), err
	}

	content := lo.Slice(entities, page.Offset(), page.Offset()+page.Limit())
	return pagination.NewResponse(r.track(content, opts), int64(len(entities)), page), nil
}

func (r *Repo[E, K, T, S, F]) where(ctx context.Context, filters F) ([]E, error) {
	entities, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(entities, func(e E, _ int) bool { return r.match(e, filters) }), nil
}

// load decodes the file. A missing file holds no entities.
func (r *Repo[E, K, T, S, F]) load(ctx context.Context) ([]E, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.read()
}

func (r *Repo[E, K, T, S, F]) read() ([]E, error) {
	data, err := os.ReadFile(r.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.logger.With("error", err.Error()).Debug("read failed")
		return nil, err
	}

	entities, err := r.codec.Decode(bytes.NewReader(data))
	if err != nil {
		r.logger.With("error", err.Error()).Debug("decode failed")
		return nil, err
	}

	for _, e := range entities {
		e.AcceptChanges()
	}
	return entities, nil
}

// track mirrors the relational read repository: tracked reads return the
// instance the session already holds for a key.
func (r *Repo[E, K, T, S, F]) track(entities []E, opts []repogen.ReadOption) []E {
	if !repogen.ApplyReadOptions(opts).Tracking {
		return entities
	}
	for i, e := range entities {
		tracked, _ := r.session.Attach(e)
		if t, ok := tracked.(E); ok {
			entities[i] = t
		}
	}
	return entities
}
