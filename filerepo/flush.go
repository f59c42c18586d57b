package filerepo

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/uow"
	"github.com/code19m/errx"
	"github.com/samber/lo"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// flush applies changes to the decoded file in memory and replaces the file
// only if every change applies.
func (r *Repo[E, K, T, S, F]) flush(ctx context.Context, changes []uow.Change) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entities, err := r.read()
	if err != nil {
		return 0, err
	}

	for _, c := range changes {
		e, ok := c.Model.(E)
		if !ok {
			return 0, errx.New(
				fmt.Sprintf("cannot flush %s into a %s file", entity.NameOf(c.Model), r.entityName()),
				errx.WithCode(uow.CodeUnknownState),
				errx.WithType(errx.T_Internal),
			)
		}

		entities, err = r.apply(entities, e, c.State)
		if err != nil {
			return 0, err
		}
	}

	if err := r.write(entities); err != nil {
		return 0, err
	}

	r.logger.With("changes", len(changes), "entities", len(entities)).Debug("file rewritten")

	return len(changes), nil
}

func (r *Repo[E, K, T, S, F]) apply(entities []E, e E, state uow.State) ([]E, error) {
	_, idx, found := lo.FindIndexOf(entities, func(x E) bool { return x.PrimaryKey() == e.PrimaryKey() })

	switch state {
	case uow.Added:
		if found {
			return nil, errx.New(
				fmt.Sprintf("conflict while inserting %s", r.entityName()),
				errx.WithCode(uow.CodeConflict),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(errx.D{"key": fmt.Sprint(e.PrimaryKey()), "path": r.path}),
			)
		}
		return append(entities, e), nil
	case uow.Modified:
		if !found {
			return nil, r.missing("update", e)
		}
		entities[idx] = e
		return entities, nil
	case uow.Deleted:
		if !found {
			return nil, r.missing("delete", e)
		}
		return append(entities[:idx], entities[idx+1:]...), nil
	default:
		return nil, errx.New(
			fmt.Sprintf("cannot flush %s in state %s", r.entityName(), state),
			errx.WithCode(uow.CodeUnknownState),
			errx.WithType(errx.T_Internal),
		)
	}
}

func (r *Repo[E, K, T, S, F]) missing(action string, e E) error {
	return errx.New(
		fmt.Sprintf("no %s found to %s", r.entityName(), action),
		errx.WithCode(uow.CodeIncorrectRowsAffection),
		errx.WithType(errx.T_NotFound),
		errx.WithDetails(errx.D{"key": fmt.Sprint(e.PrimaryKey()), "path": r.path}),
	)
}

// write replaces the file with entities through a temporary file in the same
// directory, so readers see either the old or the new content.
func (r *Repo[E, K, T, S, F]) write(entities []E) (err error) {
	dir := filepath.Dir(r.path)
	if err = os.MkdirAll(dir, dirPerm); err != nil {
		return errx.Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return errx.Wrap(err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = r.codec.Encode(w, entities); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return errx.Wrap(err)
	}
	if err = tmp.Sync(); err != nil {
		return errx.Wrap(err)
	}
	if err = tmp.Chmod(filePerm); err != nil {
		return errx.Wrap(err)
	}
	if err = tmp.Close(); err != nil {
		return errx.Wrap(err)
	}

	if err = os.Rename(tmp.Name(), r.path); err != nil {
		return errx.Wrap(err)
	}
	return nil
}

func (r *Repo[E, K, T, S, F]) entityName() string {
	var zero E
	return entity.NameOf(zero)
}
