package uow

import (
	"context"
	"fmt"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/database"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/code19m/errx"
	"github.com/uptrace/bun"
)

const (
	CodeConflict               = "CONFLICT"
	CodeIncorrectRowsAffection = "INCORRECT_ROWS_AFFECTION"
	CodeUnknownState           = "UNKNOWN_STATE"
)

// Verify that BunFlusher implements Flusher.
var _ Flusher = (*BunFlusher)(nil)

// BunFlusher writes changes with bun inside a single transaction.
type BunFlusher struct {
	db         *bun.DB
	schemaName string

	// conflictCodes maps constraint names to error codes.
	// E.g. map["brands_common_name_uidx"] = "BRAND_ALREADY_EXISTS"
	conflictCodes map[string]string
}

// BunFlusherOption configures a BunFlusher.
type BunFlusherOption func(*BunFlusher)

// WithConflictCodes sets the constraint name to error code mapping used for
// unique violations.
func WithConflictCodes(codes map[string]string) BunFlusherOption {
	return func(f *BunFlusher) {
		f.conflictCodes = codes
	}
}

// NewBunFlusher creates a BunFlusher writing to tables in schemaName.
func NewBunFlusher(db *bun.DB, schemaName string, opts ...BunFlusherOption) *BunFlusher {
	f := &BunFlusher{
		db:            db,
		schemaName:    schemaName,
		conflictCodes: map[string]string{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Flush applies changes in order and returns the number of affected rows.
func (f *BunFlusher) Flush(ctx context.Context, changes []Change) (int, error) {
	var affected int

	err := f.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, c := range changes {
			n, err := f.apply(ctx, tx, c)
			if err != nil {
				return err
			}
			affected += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}

func (f *BunFlusher) apply(ctx context.Context, tx bun.Tx, c Change) (int, error) {
	switch c.State {
	case Added:
		return f.insert(ctx, tx, c.Model)
	case Modified:
		return f.update(ctx, tx, c.Model)
	case Deleted:
		return f.delete(ctx, tx, c.Model)
	default:
		return 0, errx.New(
			fmt.Sprintf("cannot flush %s in state %s", entity.NameOf(c.Model), c.State),
			errx.WithCode(CodeUnknownState),
			errx.WithType(errx.T_Internal),
		)
	}
}

func (f *BunFlusher) insert(ctx context.Context, tx bun.Tx, m Model) (int, error) {
	q := tx.NewInsert().Model(m)
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	q = q.ModelTableExpr("?.? AS ?", bun.Ident(f.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))

	result, err := q.Exec(ctx)
	if err != nil {
		return 0, f.wrap(err, q, "inserting", m)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return 0, errx.Wrap(err, errx.WithDetails(database.GetErrorDetails(err, q)))
	}

	return n, nil
}

func (f *BunFlusher) update(ctx context.Context, tx bun.Tx, m Model) (int, error) {
	q := tx.NewUpdate().Model(m).WherePK()
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	q = q.ModelTableExpr("?.? AS ?", bun.Ident(f.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))

	result, err := q.Exec(ctx)
	if err != nil {
		return 0, f.wrap(err, q, "updating", m)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return 0, errx.Wrap(err, errx.WithDetails(database.GetErrorDetails(err, q)))
	}
	if n != 1 {
		return 0, errx.New(
			fmt.Sprintf("no %s found to update", entity.NameOf(m)),
			errx.WithCode(CodeIncorrectRowsAffection),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"key": fmt.Sprint(m.EntityKey()), "rows_affected": fmt.Sprint(n)}),
		)
	}

	return n, nil
}

func (f *BunFlusher) delete(ctx context.Context, tx bun.Tx, m Model) (int, error) {
	q := tx.NewDelete().Model(m).WherePK()
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	q = q.ModelTableExpr("?.? AS ?", bun.Ident(f.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))

	result, err := q.Exec(ctx)
	if err != nil {
		return 0, f.wrap(err, q, "deleting", m)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return 0, errx.Wrap(err, errx.WithDetails(database.GetErrorDetails(err, q)))
	}
	if n != 1 {
		return 0, errx.New(
			fmt.Sprintf("no %s found to delete", entity.NameOf(m)),
			errx.WithCode(CodeIncorrectRowsAffection),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"key": fmt.Sprint(m.EntityKey()), "rows_affected": fmt.Sprint(n)}),
		)
	}

	return n, nil
}

// wrap turns unique violations into conflict errors and attaches driver details
// to everything else.
func (f *BunFlusher) wrap(err error, q fmt.Stringer, action string, m Model) error {
	details := database.GetErrorDetails(err, q)
	details["key"] = fmt.Sprint(m.EntityKey())

	if !database.IsConflict(err) {
		return errx.Wrap(err, errx.WithDetails(details))
	}

	code, ok := f.conflictCodes[database.ConstraintName(err)]
	if !ok {
		code = CodeConflict
	}

	return errx.New(
		fmt.Sprintf("conflict while %s %s", action, entity.NameOf(m)),
		errx.WithCode(code),
		errx.WithType(errx.T_Conflict),
		errx.WithDetails(details),
	)
}

func rowsAffected(result interface{ RowsAffected() (int64, error) }) (int, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
