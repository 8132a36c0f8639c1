package pagination

import (
	"net/url"
	"strconv"
)

// Params is a resolved page request.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Options names the query keys and bounds a listing accepts.
type Options struct {
	PageKey      string
	LimitKey     string
	DefaultLimit int
	MaxLimit     int
}

// FromQuery reads page and limit from q. Missing, non-numeric or out of range
// values fall back to page 1 and opts.DefaultLimit.
func FromQuery(q url.Values, opts Options) Params {
	p := Params{Page: 1, Limit: opts.DefaultLimit}

	if v, err := strconv.Atoi(q.Get(opts.PageKey)); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get(opts.LimitKey)); err == nil && v > 0 && (opts.MaxLimit == 0 || v <= opts.MaxLimit) {
		p.Limit = v
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// Result is one page of items plus totals.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewResult builds a Result for data at params out of totalCount items.
func NewResult[T any](data []T, totalCount int, params Params) Result[T] {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = (totalCount + params.Limit - 1) / params.Limit
	}
	if data == nil {
		data = []T{}
	}
	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}
