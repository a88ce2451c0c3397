package domain

import (
	"fmt"
	"math"

	apperrors "github.com/yahyahetari/electronics-admin/pkg/errors"
)

// VariantSet manages the variant list of one product during one editing
// session. It owns the invariant that no two variants are indistinguishable
// on their shared property keys. The staged selection and editing index are
// scoped to a single editor; concurrent editors of the same product get
// independent VariantSets and last-write-wins at the persistence layer.
type VariantSet struct {
	variants []Variant
	staged   PropertyMap
	editing  *int
}

// NewVariantSet starts an editing session over a product's current variants.
// The slice is copied; callers keep ownership of their input.
func NewVariantSet(existing []Variant) *VariantSet {
	vs := &VariantSet{
		variants: make([]Variant, len(existing)),
		staged:   NewPropertyMap(),
	}
	copy(vs.variants, existing)
	return vs
}

// Variants returns a copy of the current variant list.
func (s *VariantSet) Variants() []Variant {
	out := make([]Variant, len(s.variants))
	copy(out, s.variants)
	return out
}

// Staged returns a copy of the staged property selection.
func (s *VariantSet) Staged() PropertyMap {
	return s.staged.Clone()
}

// Toggle stages value as the selection for the named property. Selecting a
// new value for a name replaces the previous one; a variant carries exactly
// one value per property.
func (s *VariantSet) Toggle(name, value string) {
	s.staged.Set(name, value)
}

// BeginEdit loads the variant at index into the staged state and marks the
// session as editing that entry.
func (s *VariantSet) BeginEdit(index int) error {
	if index < 0 || index >= len(s.variants) {
		return apperrors.InvalidInput(fmt.Sprintf("no variant at index %d", index))
	}
	s.staged = s.variants[index].Properties.Clone()
	s.editing = &index
	return nil
}

// CancelEdit clears the staged state and editing index.
func (s *VariantSet) CancelEdit() {
	s.staged = NewPropertyMap()
	s.editing = nil
}

// IsComplete reports whether the staged selection covers every property in
// the schema with a non-empty value. Partial selections are not committable.
func (s *VariantSet) IsComplete(schema []PropertyDefinition) bool {
	if len(schema) == 0 {
		return s.staged.Len() > 0
	}
	for _, def := range schema {
		if s.staged.First(def.Name) == "" {
			return false
		}
	}
	return true
}

// Commit validates the staged selection against the schema and, on success,
// appends a new variant or replaces the one being edited, then clears the
// staged state. On any validation failure the variant list is left
// untouched and the staged edit is preserved so the caller can correct it.
func (s *VariantSet) Commit(schema []PropertyDefinition, price, cost float64, stock int) error {
	if !s.IsComplete(schema) {
		return apperrors.InvalidInput("every property needs a selected value before the variant can be saved")
	}
	if err := validateVariantNumbers(price, cost, stock); err != nil {
		return err
	}
	if s.isDuplicate(s.staged, s.editing) {
		return apperrors.Conflict("a variant with the same property values already exists")
	}

	v := Variant{Properties: s.staged.Clone(), Price: price, Cost: cost, Stock: stock}
	if s.editing != nil {
		s.variants[*s.editing] = v
	} else {
		s.variants = append(s.variants, v)
	}
	s.CancelEdit()
	return nil
}

// Remove deletes the first variant equal to v. Returns false when no variant
// matched. Confirmation prompts belong to the calling surface, not here.
func (s *VariantSet) Remove(v Variant) bool {
	for i := range s.variants {
		if s.variants[i].Equal(v) {
			s.variants = append(s.variants[:i], s.variants[i+1:]...)
			return true
		}
	}
	return false
}

// isDuplicate reports whether any other variant agrees with the candidate on
// every property name the candidate carries. This is a conflict on the
// intersection of keys, not full equality: two variants that differ only in
// a property absent from one side still collide if all shared keys match,
// because a partial selection could then not tell them apart.
func (s *VariantSet) isDuplicate(candidate PropertyMap, exclude *int) bool {
	for i := range s.variants {
		if exclude != nil && i == *exclude {
			continue
		}
		if collidesOnSharedKeys(candidate, s.variants[i].Properties) {
			return true
		}
	}
	return false
}

func collidesOnSharedKeys(candidate, existing PropertyMap) bool {
	for _, name := range candidate.Names() {
		// Only keys both sides carry discriminate; a key absent from the
		// existing variant cannot tell the two apart.
		if !existing.Has(name) {
			continue
		}
		if candidate.First(name) != existing.First(name) {
			return false
		}
	}
	return true
}

// ValidateVariants checks a full variant list for the pairwise
// shared-key-collision invariant plus per-variant numeric constraints.
// Used when a whole product document arrives from the request layer rather
// than through an interactive session.
func ValidateVariants(variants []Variant) error {
	for i, v := range variants {
		if v.Properties.Len() == 0 {
			return apperrors.InvalidInput(fmt.Sprintf("variant %d has no properties", i))
		}
		if err := validateVariantNumbers(v.Price, v.Cost, v.Stock); err != nil {
			return err
		}
		for j := 0; j < i; j++ {
			if collidesOnSharedKeys(v.Properties, variants[j].Properties) {
				return apperrors.Conflict(fmt.Sprintf("variants %d and %d share the same values on their common properties", j, i))
			}
		}
	}
	return nil
}

func validateVariantNumbers(price, cost float64, stock int) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return apperrors.InvalidInput("price must be a non-negative number")
	}
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		return apperrors.InvalidInput("cost must be a non-negative number")
	}
	if stock < 0 {
		return apperrors.InvalidInput("stock must be a non-negative integer")
	}
	return nil
}

// VariantGroup is a display partition of variants sharing cost, price, and
// the value of their grouping property. Property and Value name the shared
// grouping attribute; member rows omit it when listing their remaining
// properties.
type VariantGroup struct {
	Cost     float64   `json:"cost"`
	Price    float64   `json:"price"`
	Property string    `json:"property"`
	Value    string    `json:"value"`
	Variants []Variant `json:"variants"`
}

// groupKeyProperty picks the grouping property for a variant: the name at
// ordinal position 1 of the variant's own property order, falling back to
// position 0 when only one property exists. The "second slot" derivation is
// inherited behavior kept for compatibility; it is isolated here so a
// configured group-by property can replace it in one place.
func groupKeyProperty(v Variant) (name, value string) {
	names := v.Properties.Names()
	if len(names) == 0 {
		return "", ""
	}
	name = names[0]
	if len(names) > 1 {
		name = names[1]
	}
	return name, v.Properties.First(name)
}

// variantGroupKey identifies one display partition. Using a struct key keeps
// the partition injective; a joined string could alias values that themselves
// contain the separator.
type variantGroupKey struct {
	cost  float64
	price float64
	name  string
	value string
}

// GroupVariants partitions variants for display. Groups are keyed by
// (cost, price, grouping property name, grouping property value) and emitted
// in first-appearance order, so applying it twice to the same list yields
// identical partitions and ordering.
func GroupVariants(variants []Variant) []VariantGroup {
	var order []variantGroupKey
	groups := make(map[variantGroupKey]*VariantGroup)

	for _, v := range variants {
		name, value := groupKeyProperty(v)
		key := variantGroupKey{cost: v.Cost, price: v.Price, name: name, value: value}

		g, ok := groups[key]
		if !ok {
			g = &VariantGroup{Cost: v.Cost, Price: v.Price, Property: name, Value: value}
			groups[key] = g
			order = append(order, key)
		}
		g.Variants = append(g.Variants, v)
	}

	out := make([]VariantGroup, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out
}

// DisplayProperties returns a member variant's properties minus the group's
// shared grouping property.
func (g VariantGroup) DisplayProperties(v Variant) PropertyMap {
	out := NewPropertyMap()
	for _, name := range v.Properties.Names() {
		if name == g.Property {
			continue
		}
		out.Set(name, v.Properties.Get(name)...)
	}
	return out
}
