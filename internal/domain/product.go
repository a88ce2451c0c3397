package domain

import (
	"time"
)

// Product is a catalog entry. Sellable configurations live in Variants;
// Properties here are descriptive product-level selections, not variant
// discriminators.
type Product struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	CategoryID  *string     `json:"category_id,omitempty"`
	Properties  PropertyMap `json:"properties"`
	Tags        []string    `json:"tags"`
	Images      []string    `json:"images"`
	Variants    []Variant   `json:"variants"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Variant is one sellable configuration of a product, discriminated by its
// property-value combination and carrying its own price, cost basis, and
// stock. Each property maps to a single-element value list in practice; the
// list shape is kept for document compatibility.
type Variant struct {
	Properties PropertyMap `json:"properties"`
	Price      float64     `json:"price"`
	Cost       float64     `json:"cost"`
	Stock      int         `json:"stock"`
}

// Equal reports whether two variants are identical in properties, price,
// cost, and stock. Used for remove-by-value semantics.
func (v Variant) Equal(o Variant) bool {
	return v.Price == o.Price && v.Cost == o.Cost && v.Stock == o.Stock &&
		v.Properties.Equal(o.Properties)
}

// MatchVariant finds the variant matching a property selection from an order
// line item. A variant matches when, for every (name, value) pair in the
// selection, the variant's value list for that name contains the value. The
// first match in declaration order wins. With the duplicate rule enforced at
// write time, a fully specified selection has at most one true match; a
// partial selection may legitimately match several, so callers wanting a
// deterministic answer must pass the full discriminating key set.
//
// A miss returns ok=false and is not an error: aggregation treats it as a
// zero profit contribution.
func (p *Product) MatchVariant(selection map[string]string) (Variant, bool) {
	for _, v := range p.Variants {
		if variantMatches(v, selection) {
			return v, true
		}
	}
	return Variant{}, false
}

func variantMatches(v Variant, selection map[string]string) bool {
	for name, value := range selection {
		if !v.Properties.Contains(name, value) {
			return false
		}
	}
	return true
}
