// Package entity defines the base contract every persisted marketplace record conforms to.
//
// A record carries an immutable primary key, an audit trail (creation, modification,
// status change and deletion actors and timestamps), a status from a closed enumeration
// and two denormalized flags mirroring the audit trail. The primary-key, timestamp and
// status types are generic parameters fixed per concrete entity type.
package entity

import (
	"context"
	"reflect"
)

// Key is the constraint for primary-key types.
type Key interface {
	comparable
}

// Timestamp is the constraint for audit timestamp types.
// Timestamps must support equality and ordering. time.Time satisfies it.
type Timestamp[T any] interface {
	comparable
	Before(T) bool
}

// Status is the constraint for per-entity status enumerations.
type Status interface {
	~string | ~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

// Entity is the behaviour repositories rely on. It is implemented by pointers
// to structs that embed Base.
type Entity[K Key, T Timestamp[T], S Status] interface {
	// EntityKey returns the primary key as an untyped value for identity maps.
	EntityKey() any
	// PrimaryKey returns the primary key.
	PrimaryKey() K
	// CurrentStatus returns the current status value.
	CurrentStatus() S

	// MarkCreated stamps the creation audit fields.
	MarkCreated(actor *K, at T)
	// MarkModified stamps the modification audit fields if the actor is known.
	MarkModified(actor *K, at T) bool
	// MarkStatus stamps the status audit fields if the status differs from the accepted one.
	MarkStatus(actor *K, at T) bool
	// MarkDeleted stamps the soft-delete audit fields.
	MarkDeleted(actor *K, at T) bool
	// AcceptChanges records the current status as the accepted one.
	AcceptChanges()

	// CheckInvariants reports an error if the audit fields are inconsistent.
	CheckInvariants() error
}

// Auditor supplies the actor and the time used to stamp audit fields.
type Auditor[K Key, T Timestamp[T]] interface {
	// Actor returns the acting user for the request, or nil if unknown.
	Actor(ctx context.Context) *K
	// Now returns the current time.
	Now() T
}

// IsNil reports whether v is nil or a typed nil pointer, map, slice or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only nillable kinds matter
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// NameOf returns the name of the type of the given value.
// If the value is a pointer, it returns the name of the pointed-to type.
func NameOf(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
