package uow

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/observability/logger"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/val"
	"github.com/code19m/errx"
)

const (
	CodeNilModel         = "NIL_MODEL"
	CodeIdentityConflict = "IDENTITY_CONFLICT"
	CodeKeyModified      = "KEY_MODIFIED"
)

// Model is anything a Session can track. EntityKey must be comparable.
type Model interface {
	EntityKey() any
}

// Change is a pending statement handed to a Flusher.
type Change struct {
	Model Model
	State State

	id identity
}

// Flusher writes pending changes to storage. Flush must apply all changes or none.
type Flusher interface {
	Flush(ctx context.Context, changes []Change) (int, error)
}

// FlusherFunc adapts a function to Flusher.
type FlusherFunc func(ctx context.Context, changes []Change) (int, error)

func (f FlusherFunc) Flush(ctx context.Context, changes []Change) (int, error) {
	return f(ctx, changes)
}

type identity struct {
	typ reflect.Type
	key any
}

// entry keeps the identity the model was staged under, which stays fixed
// even if the model's key is changed afterwards.
type entry struct {
	id    identity
	model Model
	state State
	seq   uint64
}

// Session tracks models and their staging states. It is not safe for
// concurrent use; use one Session per unit of work.
type Session struct {
	entries map[identity]*entry
	seq     uint64
	flusher Flusher
	logger  logger.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession creates a Session that commits through flusher.
func NewSession(flusher Flusher, opts ...Option) *Session {
	s := &Session{
		entries: make(map[identity]*entry),
		flusher: flusher,
		logger:  logger.Named("uow.session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func identityOf(m Model) identity {
	return identity{typ: reflect.TypeOf(m), key: m.EntityKey()}
}

// lookup returns the entry tracked under m's identity. A different instance
// with the same identity is an error.
func (s *Session) lookup(m Model) (*entry, error) {
	e, ok := s.entries[identityOf(m)]
	if !ok {
		return nil, nil
	}
	if e.model != m {
		return nil, errx.New(
			"another instance with the same key is already tracked",
			errx.WithCode(CodeIdentityConflict),
			errx.WithType(errx.T_Conflict),
			errx.WithDetails(errx.D{
				"entity": entity.NameOf(m),
				"key":    fmt.Sprint(m.EntityKey()),
			}),
		)
	}
	return e, nil
}

func (s *Session) track(m Model, state State) {
	s.seq++
	id := identityOf(m)
	s.entries[id] = &entry{id: id, model: m, state: state, seq: s.seq}
}

func (s *Session) guard(ctx context.Context, m Model) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entity.IsNil(m) {
		return errx.New("model is nil", errx.WithCode(CodeNilModel), errx.WithType(errx.T_Validation))
	}
	return nil
}

// Attach starts tracking m as Unchanged. If a model with the same identity is
// already tracked, that instance and its state are returned instead.
func (s *Session) Attach(m Model) (Model, State) {
	if e, ok := s.entries[identityOf(m)]; ok {
		return e.model, e.state
	}
	s.track(m, Unchanged)
	return m, Unchanged
}

// Add stages m for insertion and returns its resulting state.
func (s *Session) Add(ctx context.Context, m Model) (State, error) {
	if err := s.guard(ctx, m); err != nil {
		return Detached, err
	}
	e, err := s.lookup(m)
	if err != nil {
		return Detached, err
	}

	switch {
	case e == nil:
		s.track(m, Added)
		return Added, nil
	case e.state == Deleted:
		e.state = Modified
	}
	return e.state, nil
}

// Update stages m for update and returns its resulting state.
// Untracked models stay Detached; attach them first.
func (s *Session) Update(ctx context.Context, m Model) (State, error) {
	if err := s.guard(ctx, m); err != nil {
		return Detached, err
	}
	e, err := s.lookup(m)
	if err != nil {
		return Detached, err
	}

	if e == nil {
		return Detached, nil
	}
	if e.state != Added {
		e.state = Modified
	}
	return e.state, nil
}

// Remove stages m for deletion and returns its resulting state.
// An untracked model is attached by key and marked Deleted.
// A model that was only Added is dropped and becomes Detached.
func (s *Session) Remove(ctx context.Context, m Model) (State, error) {
	if err := s.guard(ctx, m); err != nil {
		return Detached, err
	}
	e, err := s.lookup(m)
	if err != nil {
		return Detached, err
	}

	switch {
	case e == nil:
		s.track(m, Deleted)
		return Deleted, nil
	case e.state == Added:
		delete(s.entries, e.id)
		return Detached, nil
	default:
		e.state = Deleted
	}
	return e.state, nil
}

// Detach stops tracking m.
func (s *Session) Detach(m Model) {
	if e, ok := s.entries[identityOf(m)]; ok && e.model == m {
		delete(s.entries, identityOf(m))
	}
}

// State returns the state of m. Models that are not tracked, including other
// instances sharing a tracked key, are Detached.
func (s *Session) State(m Model) State {
	if entity.IsNil(m) {
		return Detached
	}
	e, ok := s.entries[identityOf(m)]
	if !ok || e.model != m {
		return Detached
	}
	return e.state
}

// Entries returns all tracked models with their states in staging order.
func (s *Session) Entries() []Change {
	ordered := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		ordered = append(ordered, e)
	}
	slices.SortFunc(ordered, func(a, b *entry) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		default:
			return 0
		}
	})

	changes := make([]Change, 0, len(ordered))
	for _, e := range ordered {
		changes = append(changes, Change{Model: e.model, State: e.state, id: e.id})
	}
	return changes
}

// HasChanges reports whether anything would be written on commit.
func (s *Session) HasChanges() bool {
	for _, e := range s.entries {
		if e.state.Pending() {
			return true
		}
	}
	return false
}

// Discard forgets every tracked model.
func (s *Session) Discard() {
	clear(s.entries)
}

type invariantChecker interface {
	CheckInvariants() error
}

type changeAcceptor interface {
	AcceptChanges()
}

// Commit validates and flushes pending changes, then marks inserted and updated
// models Unchanged and stops tracking deleted ones. It returns the number of
// affected rows. A model whose key changed since it was staged fails the
// commit with CodeKeyModified before anything is written. On error no state is
// changed.
func (s *Session) Commit(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	pending := make([]Change, 0, len(s.entries))
	for _, c := range s.Entries() {
		if !c.State.Pending() {
			continue
		}
		if key := c.Model.EntityKey(); key != c.id.key {
			return 0, errx.New(
				"entity key changed after it was staged",
				errx.WithCode(CodeKeyModified),
				errx.WithType(errx.T_Validation),
				errx.WithDetails(errx.D{
					"entity":     entity.NameOf(c.Model),
					"staged_key": fmt.Sprint(c.id.key),
					"key":        fmt.Sprint(key),
				}),
			)
		}
		if c.State != Deleted {
			if err := validateModel(c.Model); err != nil {
				return 0, err
			}
		}
		pending = append(pending, c)
	}

	if len(pending) == 0 {
		return 0, nil
	}

	affected, err := s.flusher.Flush(ctx, pending)
	if err != nil {
		return 0, err
	}

	for _, c := range pending {
		if c.State == Deleted {
			delete(s.entries, c.id)
			continue
		}
		if e, ok := s.entries[c.id]; ok {
			e.state = Unchanged
		}
		if a, ok := c.Model.(changeAcceptor); ok {
			a.AcceptChanges()
		}
	}

	s.logger.With("changes", len(pending), "affected", affected).Debug("session committed")

	return affected, nil
}

func validateModel(m Model) error {
	if err := val.ValidateSchema(m); err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{
			"entity": entity.NameOf(m),
			"key":    fmt.Sprint(m.EntityKey()),
		}))
	}
	if c, ok := m.(invariantChecker); ok {
		if err := c.CheckInvariants(); err != nil {
			return errx.Wrap(err, errx.WithDetails(errx.D{
				"entity": entity.NameOf(m),
				"key":    fmt.Sprint(m.EntityKey()),
			}))
		}
	}
	return nil
}
