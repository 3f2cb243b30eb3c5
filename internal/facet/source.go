package facet

import (
	"context"

	"github.com/Ngumi22/bds-sub000/internal/query"
	"github.com/Ngumi22/bds-sub000/internal/repository"
)

// Source abstracts where facet aggregations run. The structured source
// groups over the filter alone; the pipeline source keeps the free-text
// ranking stage in front so counts reflect only ranked matches.
type Source interface {
	GroupCount(ctx context.Context, field string, f query.Filter) ([]repository.GroupCount, error)
	GroupSpecValues(ctx context.Context, f query.Filter) ([]repository.SpecValueCount, error)
}

type structuredSource struct {
	products repository.ProductRepository
}

func (s structuredSource) GroupCount(ctx context.Context, field string, f query.Filter) ([]repository.GroupCount, error) {
	return s.products.GroupCount(ctx, field, f)
}

func (s structuredSource) GroupSpecValues(ctx context.Context, f query.Filter) ([]repository.SpecValueCount, error) {
	return s.products.GroupSpecValues(ctx, f)
}

type pipelineSource struct {
	products repository.ProductRepository
	query    string
}

func (s pipelineSource) GroupCount(ctx context.Context, field string, f query.Filter) ([]repository.GroupCount, error) {
	return s.products.SearchGroupCount(ctx, s.query, field, f)
}

func (s pipelineSource) GroupSpecValues(ctx context.Context, f query.Filter) ([]repository.SpecValueCount, error) {
	return s.products.SearchGroupSpecValues(ctx, s.query, f)
}

// sourceFor picks the aggregation source for one request.
func sourceFor(products repository.ProductRepository, q string) Source {
	if q != "" {
		return pipelineSource{products: products, query: q}
	}
	return structuredSource{products: products}
}
