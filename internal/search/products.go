package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/multisite_shop/internal/models"
)

// ProductDocument is the indexed shape of a product.
type ProductDocument struct {
	ID          uint    `json:"id"`
	WebsiteID   uint    `json:"website_id"`
	CategoryID  uint    `json:"category_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Active      bool    `json:"active"`
}

func DocumentFrom(p models.Product) ProductDocument {
	price, _ := p.FinalPrice().Float64()
	return ProductDocument{
		ID:          p.ID,
		WebsiteID:   p.WebsiteID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Active:      p.Active && !p.IsDeleted(),
	}
}

type Query struct {
	WebsiteID *uint
	Text      string
	From      int
	Size      int
}

type Result struct {
	Total int64
	IDs   []uint
}

// ProductIndex keeps the product documents of every website in one index. A nil index
// reports ErrDisabled on search and ignores writes.
type ProductIndex struct {
	es    *elasticsearch.Client
	index string
}

var ErrDisabled = fmt.Errorf("search: elasticsearch is not configured")

func NewProductIndex(es *elasticsearch.Client, index string) *ProductIndex {
	return &ProductIndex{es: es, index: index}
}

func (x *ProductIndex) Index(ctx context.Context, p models.Product) error {
	if x == nil || x.es == nil {
		return nil
	}
	body, err := json.Marshal(DocumentFrom(p))
	if err != nil {
		return fmt.Errorf("search: marshal product %d: %w", p.ID, err)
	}

	res, err := x.es.Index(
		x.index,
		bytes.NewReader(body),
		x.es.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		x.es.Index.WithContext(ctx),
		x.es.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("search: index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res.Status(), res.Body)
	}
	return nil
}

func (x *ProductIndex) Delete(ctx context.Context, id uint) error {
	if x == nil || x.es == nil {
		return nil
	}
	res, err := x.es.Delete(
		x.index,
		strconv.FormatUint(uint64(id), 10),
		x.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: delete product %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete", res.Status(), res.Body)
	}
	return nil
}

func (x *ProductIndex) Search(ctx context.Context, q Query) (*Result, error) {
	if x == nil || x.es == nil {
		return nil, ErrDisabled
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildQuery(q)); err != nil {
		return nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source ProductDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	out := &Result{Total: r.Hits.Total.Value, IDs: make([]uint, 0, len(r.Hits.Hits))}
	for _, h := range r.Hits.Hits {
		out.IDs = append(out.IDs, h.Source.ID)
	}
	return out, nil
}

func buildQuery(q Query) map[string]any {
	filter := []any{
		map[string]any{"term": map[string]any{"active": true}},
	}
	if q.WebsiteID != nil {
		filter = append(filter, map[string]any{"term": map[string]any{"website_id": *q.WebsiteID}})
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q.Text,
						"fields":    []string{"name^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": filter,
			},
		},
		"from": q.From,
		"size": q.Size,
	}
}

func responseError(op, status string, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 1024))
	return fmt.Errorf("search: %s: %s: %s", op, status, b)
}
