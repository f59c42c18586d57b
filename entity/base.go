package entity

import (
	"context"
	"time"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
)

const (
	CodeInvariantViolated = "ENTITY_INVARIANT_VIOLATED"
)

// Base carries the attributes shared by every persisted entity.
// Embed it in a bun model to get identity, audit trail, soft delete and status.
type Base[K Key, T Timestamp[T], S Status] struct {
	Uid K `bun:"uid,pk" json:"uid" yaml:"uid"`

	CreatedBy           *K `bun:"created_by"                      json:"created_by,omitempty"        yaml:"created_by,omitempty"`
	CreationDateAndTime T  `bun:"creation_date_and_time,notnull" json:"creation_date_and_time"      yaml:"creation_date_and_time"`

	ModifiedBy                  *K `bun:"modified_by"                     json:"modified_by,omitempty"                     yaml:"modified_by,omitempty"`
	LastModificationDateAndTime *T `bun:"last_modification_date_and_time" json:"last_modification_date_and_time,omitempty" yaml:"last_modification_date_and_time,omitempty"`

	StatusModifiedBy                  *K `bun:"status_modified_by"                     json:"status_modified_by,omitempty"                     yaml:"status_modified_by,omitempty"`
	StatusLastModificationDateAndTime *T `bun:"status_last_modification_date_and_time" json:"status_last_modification_date_and_time,omitempty" yaml:"status_last_modification_date_and_time,omitempty"`

	DeletedBy           *K `bun:"deleted_by"             json:"deleted_by,omitempty"             yaml:"deleted_by,omitempty"`
	DeletionDateAndTime *T `bun:"deletion_date_and_time" json:"deletion_date_and_time,omitempty" yaml:"deletion_date_and_time,omitempty"`

	Status S `bun:"status,notnull" json:"status" yaml:"status"`

	IsModified bool `bun:"is_modified,notnull" json:"is_modified" yaml:"is_modified"`
	IsDeleted  bool `bun:"is_deleted,notnull"  json:"is_deleted"  yaml:"is_deleted"`

	// acceptedStatus is the status as last loaded or committed.
	acceptedStatus S
}

// Verify that Base implements bun.AfterScanRowHook.
var _ bun.AfterScanRowHook = (*Base[int64, time.Time, string])(nil)

// Verify that Base implements Entity.
var _ Entity[int64, time.Time, string] = (*Base[int64, time.Time, string])(nil)

func (b *Base[K, T, S]) EntityKey() any {
	return b.Uid
}

func (b *Base[K, T, S]) PrimaryKey() K {
	return b.Uid
}

func (b *Base[K, T, S]) CurrentStatus() S {
	return b.Status
}

// MarkCreated sets CreatedBy and CreationDateAndTime. The actor is optional.
func (b *Base[K, T, S]) MarkCreated(actor *K, at T) {
	b.CreatedBy = actor
	b.CreationDateAndTime = at
}

// MarkModified stamps ModifiedBy, LastModificationDateAndTime and IsModified
// together. Without a known actor nothing is stamped, so earlier modification
// stamps stay as they were, and false is returned.
func (b *Base[K, T, S]) MarkModified(actor *K, at T) bool {
	if actor == nil {
		return false
	}
	b.ModifiedBy = actor
	b.LastModificationDateAndTime = &at
	b.IsModified = true
	return true
}

// MarkStatus stamps StatusModifiedBy and StatusLastModificationDateAndTime when
// Status differs from the accepted status. It reports whether it stamped anything.
func (b *Base[K, T, S]) MarkStatus(actor *K, at T) bool {
	if b.Status == b.acceptedStatus {
		return false
	}
	b.StatusModifiedBy = actor
	b.StatusLastModificationDateAndTime = &at
	return true
}

// MarkDeleted soft-deletes the entity. A soft delete needs a known actor;
// without one nothing is changed and false is returned.
func (b *Base[K, T, S]) MarkDeleted(actor *K, at T) bool {
	if actor == nil {
		return false
	}
	b.DeletedBy = actor
	b.DeletionDateAndTime = &at
	b.IsDeleted = true
	return true
}

func (b *Base[K, T, S]) AcceptChanges() {
	b.acceptedStatus = b.Status
}

// AfterScanRow implements bun.AfterScanRowHook.
func (b *Base[K, T, S]) AfterScanRow(_ context.Context) error {
	b.AcceptChanges()
	return nil
}

// CheckInvariants verifies that the denormalized flags agree with the audit
// fields and that no audit timestamp precedes the creation time.
func (b *Base[K, T, S]) CheckInvariants() error {
	violations := make(errx.M)

	if b.IsDeleted && (b.DeletedBy == nil || b.DeletionDateAndTime == nil) {
		violations["is_deleted"] = "deleted entity must have deleted_by and deletion_date_and_time"
	}
	if b.IsModified && (b.ModifiedBy == nil || b.LastModificationDateAndTime == nil) {
		violations["is_modified"] = "modified entity must have modified_by and last_modification_date_and_time"
	}
	if b.LastModificationDateAndTime != nil && (*b.LastModificationDateAndTime).Before(b.CreationDateAndTime) {
		violations["last_modification_date_and_time"] = "must not precede creation_date_and_time"
	}
	if b.StatusLastModificationDateAndTime != nil &&
		(*b.StatusLastModificationDateAndTime).Before(b.CreationDateAndTime) {
		violations["status_last_modification_date_and_time"] = "must not precede creation_date_and_time"
	}
	if b.DeletionDateAndTime != nil && (*b.DeletionDateAndTime).Before(b.CreationDateAndTime) {
		violations["deletion_date_and_time"] = "must not precede creation_date_and_time"
	}

	if len(violations) == 0 {
		return nil
	}

	return errx.New(
		"entity audit fields are inconsistent",
		errx.WithCode(CodeInvariantViolated),
		errx.WithType(errx.T_Validation),
		errx.WithFields(violations),
	)
}
