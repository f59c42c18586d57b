package pagination_test

import (
	"testing"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/pagination"
	"github.com/stretchr/testify/assert"
)

func TestRequest_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		req        pagination.Request
		opts       []pagination.Option
		wantNumber int
		wantSize   int
		wantOffset int
	}{
		{name: "zero value", req: pagination.Request{}, wantNumber: 1, wantSize: 20, wantOffset: 0},
		{name: "negative", req: pagination.Request{PageNumber: -3, PageSize: -1}, wantNumber: 1, wantSize: 20},
		{name: "third page", req: pagination.Request{PageNumber: 3, PageSize: 20}, wantNumber: 3, wantSize: 20, wantOffset: 40},
		{name: "capped", req: pagination.Request{PageNumber: 1, PageSize: 5000}, wantNumber: 1, wantSize: 100},
		{
			name:       "custom cap",
			req:        pagination.Request{PageNumber: 2, PageSize: 50},
			opts:       []pagination.Option{pagination.WithMaxPageSize(25)},
			wantNumber: 2,
			wantSize:   25,
			wantOffset: 25,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			req.Normalize(tc.opts...)

			assert.Equal(t, tc.wantNumber, req.PageNumber)
			assert.Equal(t, tc.wantSize, req.PageSize)
			assert.Equal(t, tc.wantSize, req.Limit())
			assert.Equal(t, tc.wantOffset, req.Offset())
		})
	}
}

func TestNewResponse(t *testing.T) {
	req := pagination.Request{PageNumber: 2, PageSize: 3}

	resp := pagination.NewResponse([]string{"d", "e", "f"}, 7, req)
	assert.Equal(t, 2, resp.PageNumber)
	assert.Equal(t, 3, resp.PageSize)
	assert.Equal(t, 3, resp.PageCount)
	assert.Equal(t, int64(7), resp.TotalCount)
	assert.Equal(t, []string{"d", "e", "f"}, resp.PageContent)

	empty := pagination.NewResponse([]string{}, 0, req)
	assert.Zero(t, empty.PageCount)
	assert.Empty(t, empty.PageContent)
}

func TestNewResponse_UnnormalizedRequest(t *testing.T) {
	resp := pagination.NewResponse([]int{}, 5, pagination.Request{})
	assert.Zero(t, resp.PageCount)
	assert.Equal(t, int64(5), resp.TotalCount)
}
