package domain

import (
	"time"
)

// Stock status constants. These mirror the values stored on product documents.
const (
	StockInStock      = "in_stock"
	StockLowStock     = "low_stock"
	StockOutOfStock   = "out_of_stock"
	StockBackorder    = "backorder"
	StockDiscontinued = "discontinued"
)

// ValidStockStatuses returns the set of stock statuses a filter may reference.
func ValidStockStatuses() []string {
	return []string{StockInStock, StockLowStock, StockOutOfStock, StockBackorder, StockDiscontinued}
}

// IsValidStockStatus checks whether the given status is a known stock status.
func IsValidStockStatus(status string) bool {
	for _, s := range ValidStockStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// MinimalProduct is the projection of a product document returned by the
// search pipeline. Only active products ever reach callers in this shape.
type MinimalProduct struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	CategoryID    string   `json:"category_id"`
	Image         string   `json:"image,omitempty"`
	StockStatus   string   `json:"stock_status"`
	HasVariants   bool     `json:"has_variants"`
	IsActive      bool     `json:"is_active"`
	BrandName     string   `json:"brand_name,omitempty"`
	CategoryName  string   `json:"category_name,omitempty"`
	CollectionIDs []string `json:"collection_ids,omitempty"`
	Colors        []string `json:"colors,omitempty"`
}

// HasDiscount reports whether the product carries a real markdown. A nil
// original price, or one at or below the current price, means no discount.
func (p MinimalProduct) HasDiscount() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// VariantGroup is one variant dimension on a product (e.g. Color, Storage)
// with the options offered for it.
type VariantGroup struct {
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

// DeriveHasVariants computes the has-variants flag from the variant groups.
// A product has variants when at least one group carries at least one
// option; the computed value wins over any stored flag.
func DeriveHasVariants(groups []VariantGroup) bool {
	for _, g := range groups {
		if len(g.Options) > 0 {
			return true
		}
	}
	return false
}

// SpecificationValue is one specification row on a product document.
type SpecificationValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ProductImage is an image attached to a product document.
type ProductImage struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

// PrimaryImage returns the URL of the primary image, falling back to the
// first image when none is marked primary.
func PrimaryImage(images []ProductImage) string {
	for _, img := range images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(images) > 0 {
		return images[0].URL
	}
	return ""
}

// Category is a catalog category. Sub-categories carry a non-nil ParentID.
type Category struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	ParentID *string   `json:"parent_id,omitempty"`
	Created  time.Time `json:"created_at,omitempty"`
}

// IsSubCategory reports whether the category sits under a parent.
func (c Category) IsSubCategory() bool {
	return c.ParentID != nil && *c.ParentID != ""
}

// Brand is a catalog brand.
type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Collection is a curated product grouping.
type Collection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SpecificationDefinition describes a specification key available within a
// category (e.g. key "ram" displayed as "Memory").
type SpecificationDefinition struct {
	ID          string   `json:"id"`
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	CategoryIDs []string `json:"category_ids,omitempty"`
}
