// Package http exposes the storefront search API over chi.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ngumi22/bds-sub000/internal/catalog"
	"github.com/Ngumi22/bds-sub000/internal/domain"
	apperrors "github.com/Ngumi22/bds-sub000/pkg/errors"
	"github.com/Ngumi22/bds-sub000/pkg/httputil"
	"github.com/Ngumi22/bds-sub000/pkg/pagination"
	"github.com/Ngumi22/bds-sub000/pkg/validator"
)

// specParamPrefix marks query parameters that carry specification filters,
// e.g. spec_ram=16GB&spec_ram=32GB.
const specParamPrefix = "spec_"

// SearchService is the catalog surface the handlers call.
type SearchService interface {
	Search(ctx context.Context, params domain.SearchParams) (*domain.SearchResult, error)
	Filters(ctx context.Context, params domain.SearchParams) (*catalog.FilterSet, error)
}

// SearchHandler serves the product search and filter endpoints.
type SearchHandler struct {
	service SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates the search handler.
func NewSearchHandler(service SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{service: service, logger: logger}
}

// searchRequest is the validated shape of the query string.
type searchRequest struct {
	SortBy    string   `validate:"omitempty,oneof=name price createdAt popularity"`
	SortOrder string   `validate:"omitempty,oneof=asc desc"`
	MinPrice  *float64 `validate:"omitempty,gte=0"`
	MaxPrice  *float64 `validate:"omitempty,gte=0"`
}

// Search handles GET /api/v1/store/products.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseParams(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Search(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Filters handles GET /api/v1/store/filters.
func (h *SearchHandler) Filters(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseParams(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	set, err := h.service.Filters(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: set})
}

func (h *SearchHandler) parseParams(r *http.Request) (domain.SearchParams, error) {
	q := r.URL.Query()
	page := pagination.FromRequest(r)

	params := domain.SearchParams{
		Category:      q.Get("category"),
		SearchQuery:   strings.TrimSpace(q.Get("q")),
		SubCategories: listParam(q["subCategories"]),
		Brands:        listParam(q["brands"]),
		Collections:   listParam(q["collections"]),
		StockStatuses: listParam(q["stockStatus"]),
		SortBy:        q.Get("sortBy"),
		SortOrder:     q.Get("sortOrder"),
		Page:          page.Page,
		Limit:         page.Limit,
	}

	minPrice, err := priceParam(q.Get("minPrice"))
	if err != nil {
		return domain.SearchParams{}, err
	}
	maxPrice, err := priceParam(q.Get("maxPrice"))
	if err != nil {
		return domain.SearchParams{}, err
	}
	params.MinPrice, params.MaxPrice = minPrice, maxPrice

	for key, values := range q {
		if !strings.HasPrefix(key, specParamPrefix) {
			continue
		}
		specKey := strings.TrimPrefix(key, specParamPrefix)
		if specKey == "" {
			continue
		}
		params.Specifications = append(params.Specifications, domain.SpecificationFilter{
			Key:    specKey,
			Values: listParam(values),
		})
	}

	req := searchRequest{
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
		MinPrice:  params.MinPrice,
		MaxPrice:  params.MaxPrice,
	}
	if err := validator.Validate(req); err != nil {
		return domain.SearchParams{}, err
	}
	if params.MinPrice != nil && params.MaxPrice != nil && *params.MaxPrice < *params.MinPrice {
		return domain.SearchParams{}, apperrors.InvalidInput("maxPrice must not be below minPrice")
	}

	return params, nil
}

// listParam flattens repeated parameters and comma-separated values into
// one trimmed list.
func listParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func priceParam(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.InvalidInput("price parameters must be numeric")
	}
	return &v, nil
}
