package domain

import (
	"strings"
	"time"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BrandStatus is the lifecycle status of a Brand.
type BrandStatus string

const (
	BrandStatusDraft     BrandStatus = "draft"
	BrandStatusActive    BrandStatus = "active"
	BrandStatusSuspended BrandStatus = "suspended"
	BrandStatusArchived  BrandStatus = "archived"
)

// Brand is a manufacturer or seller brand listed on the marketplace.
type Brand struct {
	bun.BaseModel `bun:"table:brands,alias:b" json:"-" yaml:"-"`

	entity.Base[uuid.UUID, time.Time, BrandStatus] `yaml:",inline"`

	LegalName    string    `bun:"legal_name,notnull"  json:"legal_name"    yaml:"legal_name"    validate:"required,max=256"`
	CommonName   string    `bun:"common_name,notnull" json:"common_name"   yaml:"common_name"   validate:"required,max=128"`
	About        string    `bun:"about"               json:"about"         yaml:"about"`
	Slogan       string    `bun:"slogan"              json:"slogan"        yaml:"slogan"        validate:"max=256"`
	FoundingDate time.Time `bun:"founding_date"       json:"founding_date" yaml:"founding_date"`

	Headquarters Address `bun:"embed:hq_" json:"headquarters" yaml:"headquarters"`
}

// NewBrand returns a draft Brand with a fresh identifier.
func NewBrand(legalName, commonName string) *Brand {
	b := &Brand{
		LegalName:  legalName,
		CommonName: commonName,
	}
	b.Uid = uuid.New()
	b.Status = BrandStatusDraft
	return b
}

// BrandFilters selects brands. Zero-valued fields do not filter.
type BrandFilters struct {
	Uids           []uuid.UUID
	CommonName     *string
	LegalNameLike  string
	Status         *BrandStatus
	ExcludeDeleted bool
}

// BrandFilterFunc translates BrandFilters into a bun query.
func BrandFilterFunc(q *bun.SelectQuery, f BrandFilters) *bun.SelectQuery {
	if len(f.Uids) > 0 {
		q = q.Where("?TableAlias.uid IN (?)", bun.In(f.Uids))
	}
	if f.CommonName != nil {
		q = q.Where("?TableAlias.common_name = ?", *f.CommonName)
	}
	if f.LegalNameLike != "" {
		q = q.Where("LOWER(?TableAlias.legal_name) LIKE ?", "%"+strings.ToLower(f.LegalNameLike)+"%")
	}
	if f.Status != nil {
		q = q.Where("?TableAlias.status = ?", *f.Status)
	}
	if f.ExcludeDeleted {
		q = q.Where("?TableAlias.is_deleted = ?", false)
	}
	return q
}

// MatchBrand reports whether b satisfies f. It mirrors BrandFilterFunc for
// in-memory backends.
func MatchBrand(b *Brand, f BrandFilters) bool {
	if len(f.Uids) > 0 && !containsUUID(f.Uids, b.Uid) {
		return false
	}
	if f.CommonName != nil && b.CommonName != *f.CommonName {
		return false
	}
	if f.LegalNameLike != "" &&
		!strings.Contains(strings.ToLower(b.LegalName), strings.ToLower(f.LegalNameLike)) {
		return false
	}
	if f.Status != nil && b.Status != *f.Status {
		return false
	}
	if f.ExcludeDeleted && b.IsDeleted {
		return false
	}
	return true
}
