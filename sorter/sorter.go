// Package sorter describes result ordering for repository reads.
package sorter

import (
	"slices"
	"strings"
)

type (
	// SortOpts is an ordered list of sort keys.
	SortOpts []Opt

	SortDirection string
)

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// Opt is one sort key: a column and a direction.
type Opt struct {
	F string        // column name
	D SortDirection // Asc or Desc
}

// Make collects opts into SortOpts.
func Make(opts ...Opt) SortOpts {
	return opts
}

// MakeFromStr parses "field:dir,field:dir" keeping only pairs whose field is in
// allowedFields and whose direction is asc or desc (any case).
func MakeFromStr(sortString string, allowedFields ...string) SortOpts {
	var opts SortOpts
	for pair := range strings.SplitSeq(sortString, ",") {
		field, dir, ok := strings.Cut(pair, ":")
		if !ok || strings.Contains(dir, ":") {
			continue
		}

		field = strings.TrimSpace(field)
		direction := SortDirection(strings.ToLower(strings.TrimSpace(dir)))
		if !slices.Contains(allowedFields, field) || (direction != Asc && direction != Desc) {
			continue
		}
		opts = append(opts, Opt{F: field, D: direction})
	}
	return opts
}

// ToSQL renders the option as "field dir".
func (o Opt) ToSQL() string {
	return o.F + " " + string(o.D)
}

// SQLDirection returns the direction as an SQL keyword. Anything but Desc is ASC.
func (o Opt) SQLDirection() string {
	if strings.EqualFold(string(o.D), string(Desc)) {
		return "DESC"
	}
	return "ASC"
}

// Has reports whether the options already sort by field.
func (s SortOpts) Has(field string) bool {
	return slices.ContainsFunc(s, func(o Opt) bool { return o.F == field })
}
