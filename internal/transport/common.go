package transport

import (
	"github.com/Skotchmaster/multisite_shop/internal/repo"
)

// ApiResponse is the envelope of every API response. Logical failures keep HTTP 200 and
// carry their status in StatusCode.
type ApiResponse[T any] struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       T      `json:"data"`
}

func OK[T any](data T) ApiResponse[T] {
	return ApiResponse[T]{StatusCode: 200, Message: "success", Data: data}
}

func Created[T any](data T) ApiResponse[T] {
	return ApiResponse[T]{StatusCode: 201, Message: "created", Data: data}
}

func Fail(status int, message string) ApiResponse[any] {
	return ApiResponse[any]{StatusCode: status, Message: message}
}

type PagedResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

func ToPaged[M, T any](p repo.Page[M], mapFn func(M) T) PagedResponse[T] {
	items := make([]T, 0, len(p.Items))
	for _, m := range p.Items {
		items = append(items, mapFn(m))
	}
	return PagedResponse[T]{
		Items:      items,
		TotalCount: p.Total,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}

// PageRequest is bound from the query string of every search endpoint.
type PageRequest struct {
	PageNumber int    `query:"pageNumber"`
	PageSize   int    `query:"pageSize"`
	OrderBy    string `query:"orderBy"`
	Descending bool   `query:"descending"`
	Search     string `query:"search"`
}

func (r PageRequest) Paging() repo.Paging {
	return repo.Paging{
		PageNumber: r.PageNumber,
		PageSize:   r.PageSize,
		OrderBy:    r.OrderBy,
		Descending: r.Descending,
	}
}

func mapSlice[M, T any](in []M, fn func(M) T) []T {
	out := make([]T, 0, len(in))
	for _, m := range in {
		out = append(out, fn(m))
	}
	return out
}
