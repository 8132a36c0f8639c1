package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

var reviewOpts = Options{PageKey: "p", LimitKey: "limit", DefaultLimit: 10, MaxLimit: 100}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{"defaults", "", Params{Page: 1, Limit: 10, Offset: 0}},
		{"custom", "p=3&limit=5", Params{Page: 3, Limit: 5, Offset: 10}},
		{"negative page", "p=-2", Params{Page: 1, Limit: 10, Offset: 0}},
		{"garbage", "p=abc&limit=x", Params{Page: 1, Limit: 10, Offset: 0}},
		{"limit above max", "limit=500", Params{Page: 1, Limit: 10, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			assert.Equal(t, tt.want, FromQuery(q, reviewOpts))
		})
	}
}

func TestNewResult(t *testing.T) {
	r := NewResult([]string{"a", "b"}, 12, Params{Page: 2, Limit: 5})

	assert.Equal(t, 3, r.TotalPages)
	assert.True(t, r.HasNext)
	assert.True(t, r.HasPrev)

	empty := NewResult[string](nil, 0, Params{Page: 1, Limit: 5})
	assert.NotNil(t, empty.Data)
	assert.Zero(t, empty.TotalPages)
	assert.False(t, empty.HasNext)
}
