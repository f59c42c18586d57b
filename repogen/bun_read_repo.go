package repogen

import (
	"context"
	"fmt"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/database"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/logger"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/pagination"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/sorter"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/uow"
	"github.com/code19m/errx"
	"github.com/uptrace/bun"
)

const (
	CodeMultipleRowsFound = "MULTIPLE_ROWS_FOUND"

	uidColumn = "uid"
)

// BunReadRepo provides read access to a relational database using bun ORM.
type BunReadRepo[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any] struct {
	idb        bun.IDB
	session    *uow.Session
	schemaName string
	order      sorter.SortOpts
	logger     logger.Logger

	filterFunc func(q *bun.SelectQuery, filters F) *bun.SelectQuery
}

// BunReadRepoBuilder is a builder for BunReadRepo with sensible defaults.
type BunReadRepoBuilder[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any] struct {
	idb        bun.IDB
	session    *uow.Session
	schemaName string
	order      sorter.SortOpts
	logger     logger.Logger
	filterFunc func(q *bun.SelectQuery, filters F) *bun.SelectQuery
}

// NewBunReadRepoBuilder creates a new builder with sensible defaults.
// Tracking reads attach their results to session, which may be nil for
// read-only use.
func NewBunReadRepoBuilder[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any](
	idb bun.IDB,
	session *uow.Session,
) *BunReadRepoBuilder[E, K, T, S, F] {
	return &BunReadRepoBuilder[E, K, T, S, F]{
		idb:        idb,
		session:    session,
		schemaName: "public",
		order: sorter.Make(
			sorter.Opt{F: "creation_date_and_time", D: sorter.Asc},
			sorter.Opt{F: uidColumn, D: sorter.Asc},
		),
		logger:     logger.Named("repogen.read"),
		filterFunc: func(q *bun.SelectQuery, _ F) *bun.SelectQuery { return q },
	}
}

// WithSchemaName sets the schema name.
func (b *BunReadRepoBuilder[E, K, T, S, F]) WithSchemaName(name string) *BunReadRepoBuilder[E, K, T, S, F] {
	b.schemaName = name
	return b
}

// WithFilterFunc sets the filter function.
func (b *BunReadRepoBuilder[E, K, T, S, F]) WithFilterFunc(
	fn func(q *bun.SelectQuery, filters F) *bun.SelectQuery,
) *BunReadRepoBuilder[E, K, T, S, F] {
	b.filterFunc = fn
	return b
}

// WithOrder replaces the default order. The primary key is always appended as
// the last tie breaker.
func (b *BunReadRepoBuilder[E, K, T, S, F]) WithOrder(opts ...sorter.Opt) *BunReadRepoBuilder[E, K, T, S, F] {
	b.order = sorter.Make(opts...)
	return b
}

// WithOrderString parses an order such as "common_name:desc" and uses it when
// at least one allowed field survives parsing. Otherwise the order is unchanged.
func (b *BunReadRepoBuilder[E, K, T, S, F]) WithOrderString(
	order string,
	allowedFields ...string,
) *BunReadRepoBuilder[E, K, T, S, F] {
	if opts := sorter.MakeFromStr(order, allowedFields...); len(opts) > 0 {
		b.order = opts
	}
	return b
}

// WithLogger sets the logger used for query failure details.
func (b *BunReadRepoBuilder[E, K, T, S, F]) WithLogger(l logger.Logger) *BunReadRepoBuilder[E, K, T, S, F] {
	b.logger = l
	return b
}

// Build creates the BunReadRepo.
func (b *BunReadRepoBuilder[E, K, T, S, F]) Build() *BunReadRepo[E, K, T, S, F] {
	order := b.order
	if !order.Has(uidColumn) {
		order = append(order, sorter.Opt{F: uidColumn, D: sorter.Asc})
	}

	return &BunReadRepo[E, K, T, S, F]{
		idb:        b.idb,
		session:    b.session,
		schemaName: b.schemaName,
		order:      order,
		logger:     b.logger,
		filterFunc: b.filterFunc,
	}
}

func (r *BunReadRepo[E, K, T, S, F]) GetByUid(ctx context.Context, uid K, opts ...ReadOption) (E, error) {
	var zero E
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	entities := make([]E, 0)
	q := r.idb.NewSelect().Model(&entities).
		Where("?TableAlias.? = ?", bun.Ident(uidColumn), uid).
		Limit(2) //nolint:mnd // limit 2 to check for multiple rows
	q = r.applyModelTableExpr(q)

	if err := q.Scan(ctx); err != nil {
		r.logFailure(ctx, err, q)
		return zero, err
	}

	switch len(entities) {
	case 0:
		return zero, nil
	case 1:
		return r.track(entities, opts)[0], nil
	default:
		return zero, errx.New(
			fmt.Sprintf("multiple %s found", entity.NameOf(zero)),
			errx.WithCode(CodeMultipleRowsFound),
			errx.WithType(errx.T_Internal),
			errx.WithDetails(errx.D{"uid": fmt.Sprint(uid)}),
		)
	}
}

func (r *BunReadRepo[E, K, T, S, F]) GetAll(ctx context.Context, opts ...ReadOption) ([]E, error) {
	return r.list(ctx, nil, opts)
}

func (r *BunReadRepo[E, K, T, S, F]) GetByCondition(ctx context.Context, filters F, opts ...ReadOption) (E, error) {
	var zero E
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	entities := make([]E, 0)
	q := r.idb.NewSelect().Model(&entities).Limit(1)
	q = r.applyModelTableExpr(q)
	q = r.filterFunc(q, filters)
	q = r.applyOrder(q)

	if err := q.Scan(ctx); err != nil {
		r.logFailure(ctx, err, q)
		return zero, err
	}

	if len(entities) == 0 {
		return zero, nil
	}

	return r.track(entities, opts)[0], nil
}

func (r *BunReadRepo[E, K, T, S, F]) GetWhere(ctx context.Context, filters F, opts ...ReadOption) ([]E, error) {
	return r.list(ctx, &filters, opts)
}

func (r *BunReadRepo[E, K, T, S, F]) Count(ctx context.Context, _ ...ReadOption) (int, error) {
	return r.count(ctx, nil)
}

func (r *BunReadRepo[E, K, T, S, F]) CountWhere(ctx context.Context, filters F, _ ...ReadOption) (int, error) {
	return r.count(ctx, &filters)
}

func (r *BunReadRepo[E, K, T, S, F]) Exist(ctx context.Context, filters F, _ ...ReadOption) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var zero E
	q := r.idb.NewSelect().Model(zero)
	q = r.applyModelTableExpr(q)
	q = r.filterFunc(q, filters)

	exists, err := q.Exists(ctx)
	if err != nil {
		r.logFailure(ctx, err, q)
		return false, err
	}

	return exists, nil
}

func (r *BunReadRepo[E, K, T, S, F]) ListPage(
	ctx context.Context,
	filters F,
	page pagination.Request,
	opts ...ReadOption,
) (pagination.Response[E], error) {
	page.Normalize()
	if err := ctx.Err(); err != nil {
		return pagination.NewResponse([]E{}, 0, page), err
	}

	entities := make([]E, 0)
	q := r.idb.NewSelect().Model(&entities).
		Limit(page.Limit()).
		Offset(page.Offset())
	q = r.applyModelTableExpr(q)
	q = r.filterFunc(q, filters)
	q = r.applyOrder(q)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		r.logFailure(ctx, err, q)
		return pagination.NewResponse([]E{}, 0, page), err
	}

	return pagination.NewResponse(r.track(entities, opts), int64(total), page), nil
}

func (r *BunReadRepo[E, K, T, S, F]) list(ctx context.Context, filters *F, opts []ReadOption) ([]E, error) {
	if err := ctx.Err(); err != nil {
		return []E{}, err
	}

	entities := make([]E, 0)
	q := r.idb.NewSelect().Model(&entities)
	q = r.applyModelTableExpr(q)
	if filters != nil {
		q = r.filterFunc(q, *filters)
	}
	q = r.applyOrder(q)

	if err := q.Scan(ctx); err != nil {
		r.logFailure(ctx, err, q)
		return []E{}, err
	}

	return r.track(entities, opts), nil
}

func (r *BunReadRepo[E, K, T, S, F]) count(ctx context.Context, filters *F) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var zero E
	q := r.idb.NewSelect().Model(zero)
	q = r.applyModelTableExpr(q)
	if filters != nil {
		q = r.filterFunc(q, *filters)
	}

	count, err := q.Count(ctx)
	if err != nil {
		r.logFailure(ctx, err, q)
		return 0, err
	}

	return count, nil
}

// track attaches entities to the session when tracking is requested and
// replaces each one with the instance the session already tracks, if any.
func (r *BunReadRepo[E, K, T, S, F]) track(entities []E, opts []ReadOption) []E {
	if r.session == nil || !ApplyReadOptions(opts).Tracking {
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

// logFailure records the driver details of a failed query. The error itself is
// returned to the caller untouched.
func (r *BunReadRepo[E, K, T, S, F]) logFailure(ctx context.Context, err error, q *bun.SelectQuery) {
	r.logger.WithContext(ctx).
		With("error", err.Error(), "details", database.GetErrorDetails(err, q)).
		Debug("query failed")
}

func (r *BunReadRepo[E, K, T, S, F]) applyOrder(q *bun.SelectQuery) *bun.SelectQuery {
	for _, o := range r.order {
		q = q.OrderExpr("?TableAlias.? "+o.SQLDirection(), bun.Ident(o.F))
	}
	return q
}

func (r *BunReadRepo[E, K, T, S, F]) applyModelTableExpr(q *bun.SelectQuery) *bun.SelectQuery {
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	return q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))
}
