package sorter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/sorter"
)

func TestMakeFromStr(t *testing.T) {
	allowed := []string{"common_name", "creation_date_and_time"}

	tests := []struct {
		name  string
		input string
		want  sorter.SortOpts
	}{
		{name: "empty", input: "", want: nil},
		{
			name:  "single",
			input: "common_name:desc",
			want:  sorter.Make(sorter.Opt{F: "common_name", D: sorter.Desc}),
		},
		{
			name:  "several with spaces and mixed case",
			input: " common_name : ASC , creation_date_and_time:Desc",
			want: sorter.Make(
				sorter.Opt{F: "common_name", D: sorter.Asc},
				sorter.Opt{F: "creation_date_and_time", D: sorter.Desc},
			),
		},
		{
			name:  "disallowed field dropped",
			input: "password:asc,common_name:asc",
			want:  sorter.Make(sorter.Opt{F: "common_name", D: sorter.Asc}),
		},
		{name: "bad direction", input: "common_name:up", want: nil},
		{name: "missing direction", input: "common_name", want: nil},
		{name: "extra parts", input: "common_name:asc:desc", want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sorter.MakeFromStr(tc.input, allowed...))
		})
	}
}

func TestOpt_SQL(t *testing.T) {
	tests := []struct {
		opt       sorter.Opt
		direction string
		clause    string
	}{
		{opt: sorter.Opt{F: "uid", D: sorter.Asc}, direction: "ASC", clause: "uid asc"},
		{opt: sorter.Opt{F: "uid", D: sorter.Desc}, direction: "DESC", clause: "uid desc"},
		{opt: sorter.Opt{F: "uid", D: "DESC"}, direction: "DESC", clause: "uid DESC"},
		{opt: sorter.Opt{F: "uid"}, direction: "ASC", clause: "uid "},
	}

	for _, tc := range tests {
		t.Run(tc.clause, func(t *testing.T) {
			assert.Equal(t, tc.direction, tc.opt.SQLDirection())
			assert.Equal(t, tc.clause, tc.opt.ToSQL())
		})
	}
}

func TestSortOpts_Has(t *testing.T) {
	opts := sorter.Make(sorter.Opt{F: "common_name", D: sorter.Asc})

	assert.True(t, opts.Has("common_name"))
	assert.False(t, opts.Has("uid"))
	assert.False(t, sorter.SortOpts(nil).Has("uid"))
}
