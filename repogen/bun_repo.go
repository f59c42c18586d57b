package repogen

import (
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/uow"
)

// BunRepo is the relational Repo: reads go through bun, writes are staged in
// the session that the read side tracks into.
type BunRepo[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any] struct {
	*BunReadRepo[E, K, T, S, F]
	*SessionWriteRepo[E, K, T, S]
}

// NewBunRepo combines a read repository built over session with a write
// repository staging into the same session. The session is usually committed
// through a uow.BunFlusher.
func NewBunRepo[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any](
	read *BunReadRepoBuilder[E, K, T, S, F],
	session *uow.Session,
	opts ...SessionWriteRepoOption[K, T],
) *BunRepo[E, K, T, S, F] {
	read.session = session
	return &BunRepo[E, K, T, S, F]{
		BunReadRepo:      read.Build(),
		SessionWriteRepo: NewSessionWriteRepo[E, K, T, S](session, opts...),
	}
}
