// Package domain holds the marketplace records and value objects persisted
// through the generic repositories, together with their filters.
package domain

import (
	"context"
	"time"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/meta"
	"github.com/google/uuid"
)

// Verify that Auditor implements entity.Auditor.
var _ entity.Auditor[uuid.UUID, time.Time] = (*Auditor)(nil)

// Auditor stamps audit fields with the request user from context metadata.
type Auditor struct {
	clock func() time.Time
}

// NewAuditor creates an Auditor. A nil clock defaults to UTC wall time.
func NewAuditor(clock func() time.Time) *Auditor {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Auditor{clock: clock}
}

// Actor returns the request user id stored under meta.RequestUserID.
// Missing or malformed ids yield nil.
func (a *Auditor) Actor(ctx context.Context) *uuid.UUID {
	raw := meta.ExtractMetaFromContext(ctx)[meta.RequestUserID]
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func (a *Auditor) Now() time.Time {
	return a.clock()
}
