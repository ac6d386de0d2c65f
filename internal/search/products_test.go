package search

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/multisite_shop/internal/models"
)

func TestBuildQuery_TenantFilter(t *testing.T) {
	t.Parallel()

	site := uint(5)
	raw, err := json.Marshal(buildQuery(Query{WebsiteID: &site, Text: "shoe", From: 10, Size: 5}))
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, `"website_id":5`)
	assert.Contains(t, s, `"query":"shoe"`)
	assert.Contains(t, s, `"from":10`)

	raw, err = json.Marshal(buildQuery(Query{Text: "shoe"}))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "website_id")
}

func TestDocumentFrom(t *testing.T) {
	t.Parallel()

	p := models.Product{
		Base:     models.Base{ID: 3, Active: true},
		Name:     "Boot",
		Price:    decimal.NewFromInt(200),
		Discount: decimal.NewFromInt(25),
	}
	doc := DocumentFrom(p)
	assert.EqualValues(t, 3, doc.ID)
	assert.InDelta(t, 150.0, doc.Price, 0.001)
	assert.True(t, doc.Active)
}

func TestNilIndex(t *testing.T) {
	t.Parallel()

	var x *ProductIndex
	assert.NoError(t, x.Index(context.Background(), models.Product{}))
	assert.NoError(t, x.Delete(context.Background(), 1))
	_, err := x.Search(context.Background(), Query{Text: "x"})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestProductIndex_Integration(t *testing.T) {
	url := os.Getenv("ES_URL")
	if url == "" {
		t.Skip("ES_URL not set")
	}
	ctx := context.Background()
	client, err := NewClient(ctx, Config{URL: url, User: os.Getenv("ES_USER"), Password: os.Getenv("ES_PASSWORD")})
	require.NoError(t, err)

	idx := NewProductIndex(client, "products_test")
	site := uint(77)
	p := models.Product{Base: models.Base{ID: 9001, Active: true}, WebsiteID: site, Name: "Integration kettle"}
	require.NoError(t, idx.Index(ctx, p))
	defer idx.Delete(ctx, p.ID)

	res, err := idx.Search(ctx, Query{WebsiteID: &site, Text: "kettle", Size: 10})
	require.NoError(t, err)
	assert.Contains(t, res.IDs, p.ID)
}
