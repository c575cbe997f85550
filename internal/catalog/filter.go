package catalog

import (
	"strings"

	"github.com/drstein77/batterycatalog/internal/models"
)

// Filter holds the search and dropdown criteria of a category page.
// Empty fields match everything.
type Filter struct {
	Search      string
	Kind        string
	Voltage     string
	Type        string
	Application string
}

// IsZero reports whether no criterion is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Filter returns the products matching every criterion, in catalog order.
func (c *Category) Filter(f Filter) []models.Product {
	search := strings.ToLower(f.Search)
	typ := f.Type
	if typ == NoType {
		typ = ""
	}

	var patterns []string
	if f.Application != "" {
		patterns = c.patterns(f.Application)
	}

	out := make([]models.Product, 0, len(c.Products))
	for _, p := range c.Products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Model), search) &&
			!strings.Contains(strings.ToLower(p.Application), search) {
			continue
		}
		if f.Kind != "" && p.Kind != f.Kind {
			continue
		}
		if f.Voltage != "" && p.Voltage != f.Voltage {
			continue
		}
		if f.Type != "" && p.Type != typ {
			continue
		}
		if patterns != nil && !matchesApplication(p.Application, patterns) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// patterns resolves an application slug to the substrings searched in a product's application.
func (c *Category) patterns(slug string) []string {
	for _, a := range c.Applications {
		if a.Slug == slug && len(a.Patterns) > 0 {
			return a.Patterns
		}
	}
	return []string{strings.ReplaceAll(slug, "-", " ")}
}

// ApplicationName returns the display name of an application slug.
func (c *Category) ApplicationName(slug string) string {
	for _, a := range c.Applications {
		if a.Slug == slug {
			return a.Name
		}
	}
	return strings.ReplaceAll(slug, "-", " ")
}

func matchesApplication(application string, patterns []string) bool {
	if application == "" {
		return false
	}
	lower := strings.ToLower(application)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Facets lists the values offered by the filter dropdowns.
type Facets struct {
	Kinds    []string `json:"tipos"`
	Voltages []string `json:"voltajes"`
	Types    []string `json:"types"`
}

// Facets collects the distinct kinds, voltages and types in first-seen order.
func (c *Category) Facets() Facets {
	return Facets{
		Kinds:    distinct(c.Products, func(p models.Product) string { return p.Kind }),
		Voltages: distinct(c.Products, func(p models.Product) string { return p.Voltage }),
		Types:    distinct(c.Products, func(p models.Product) string { return p.Type }),
	}
}

func distinct(products []models.Product, field func(models.Product) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range products {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
