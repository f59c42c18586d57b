package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CountryStatus tells whether a country is open for marketplace operations.
type CountryStatus string

const (
	CountryStatusActive   CountryStatus = "active"
	CountryStatusInactive CountryStatus = "inactive"
)

// Country is reference data for addresses, currencies and phone numbers.
type Country struct {
	bun.BaseModel `bun:"table:countries,alias:c" json:"-" yaml:"-"`

	entity.Base[uuid.UUID, time.Time, CountryStatus] `yaml:",inline"`

	CommonName        string  `bun:"common_name,notnull" json:"common_name"        yaml:"common_name"        validate:"required,max=128"`
	OfficialName      string  `bun:"official_name"       json:"official_name"      yaml:"official_name"      validate:"max=256"`
	NativeName        string  `bun:"native_name"         json:"native_name"        yaml:"native_name"        validate:"max=256"`
	Alpha2Code        string  `bun:"alpha2_code,notnull" json:"alpha2_code"        yaml:"alpha2_code"        validate:"required,iso3166_1_alpha2"`
	Alpha3Code        string  `bun:"alpha3_code"         json:"alpha3_code"        yaml:"alpha3_code"        validate:"omitempty,iso3166_1_alpha3"`
	NumericCode       string  `bun:"numeric_code"        json:"numeric_code"       yaml:"numeric_code"       validate:"omitempty,numeric,len=3"`
	TLD               string  `bun:"tld"                 json:"tld"                yaml:"tld"                validate:"omitempty,startswith=."`
	Overview          string  `bun:"overview"            json:"overview"           yaml:"overview"`
	Capital           string  `bun:"capital"             json:"capital"            yaml:"capital"`
	LargestCity       string  `bun:"largest_city"        json:"largest_city"       yaml:"largest_city"`
	SmallestCity      string  `bun:"smallest_city"       json:"smallest_city"      yaml:"smallest_city"`
	AreaKm2           float64 `bun:"area_km2"            json:"area_km2"           yaml:"area_km2"           validate:"gte=0"`
	Population        int64   `bun:"population"          json:"population"         yaml:"population"         validate:"gte=0"`
	PopulationDensity float64 `bun:"population_density"  json:"population_density" yaml:"population_density" validate:"gte=0"`
	Demonym           string  `bun:"demonym"             json:"demonym"            yaml:"demonym"`
	GDP               float64 `bun:"gdp"                 json:"gdp"                yaml:"gdp"                validate:"gte=0"`

	PhoneCode PhoneCode `bun:"embed:phone_" json:"phone_code" yaml:"phone_code"`
}

// NewCountry returns an active Country with a fresh identifier.
func NewCountry(commonName, alpha2Code string) *Country {
	c := &Country{
		CommonName: commonName,
		Alpha2Code: strings.ToUpper(alpha2Code),
	}
	c.Uid = uuid.New()
	c.Status = CountryStatusActive
	return c
}

// RecalculateDensity derives PopulationDensity from Population and AreaKm2.
func (c *Country) RecalculateDensity() {
	if c.AreaKm2 <= 0 {
		c.PopulationDensity = 0
		return
	}
	c.PopulationDensity = float64(c.Population) / c.AreaKm2
}

// CountryFilters selects countries. Zero-valued fields do not filter.
type CountryFilters struct {
	Alpha2Code     string
	Alpha3Code     string
	Status         *CountryStatus
	MinPopulation  int64
	ExcludeDeleted bool
}

// CountryFilterFunc translates CountryFilters into a bun query.
func CountryFilterFunc(q *bun.SelectQuery, f CountryFilters) *bun.SelectQuery {
	if f.Alpha2Code != "" {
		q = q.Where("?TableAlias.alpha2_code = ?", strings.ToUpper(f.Alpha2Code))
	}
	if f.Alpha3Code != "" {
		q = q.Where("?TableAlias.alpha3_code = ?", strings.ToUpper(f.Alpha3Code))
	}
	if f.Status != nil {
		q = q.Where("?TableAlias.status = ?", *f.Status)
	}
	if f.MinPopulation > 0 {
		q = q.Where("?TableAlias.population >= ?", f.MinPopulation)
	}
	if f.ExcludeDeleted {
		q = q.Where("?TableAlias.is_deleted = ?", false)
	}
	return q
}

// MatchCountry reports whether c satisfies f. It mirrors CountryFilterFunc for
// in-memory backends.
func MatchCountry(c *Country, f CountryFilters) bool {
	if f.Alpha2Code != "" && c.Alpha2Code != strings.ToUpper(f.Alpha2Code) {
		return false
	}
	if f.Alpha3Code != "" && c.Alpha3Code != strings.ToUpper(f.Alpha3Code) {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.MinPopulation > 0 && c.Population < f.MinPopulation {
		return false
	}
	if f.ExcludeDeleted && c.IsDeleted {
		return false
	}
	return true
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	return slices.Contains(ids, id)
}
