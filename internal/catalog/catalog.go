package catalog

import (
	"errors"
	"sort"
	"strings"

	"github.com/drstein77/batterycatalog/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidParams = errors.New("invalid parameters")
	ErrNoDatasheet   = errors.New("no datasheet")
)

// NoType addresses products of categories without a chemistry type.
const NoType = "-"

// Category is one catalog page: its table columns, products and filter tables.
type Category struct {
	Slug         string
	Name         string
	Subtitle     string
	Columns      []models.Column
	Products     []models.Product
	Applications []Application

	short           string
	cardApplication string
}

func newCategory(slug string, columns []models.Column, products []models.Product) *Category {
	meta := lookupMeta(slug)
	return &Category{
		Slug:         slug,
		Name:         meta.name,
		Subtitle:     meta.subtitle,
		Columns:      columns,
		Products:     products,
		Applications: meta.applications,
		short:        meta.short,

		cardApplication: meta.cardApplication,
	}
}

// Summary is the listing entry of a category.
type Summary struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (c *Category) Summary() Summary {
	return Summary{Slug: c.Slug, Name: c.Name, Count: len(c.Products)}
}

// Types returns the chemistry types of the category in first-seen order.
func (c *Category) Types() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.Products {
		if _, ok := seen[p.Type]; ok {
			continue
		}
		seen[p.Type] = struct{}{}
		out = append(out, p.Type)
	}
	return out
}

// Find returns the product with the given type and model.
func (c *Category) Find(typ, model string) (models.Product, bool) {
	if typ == NoType {
		typ = ""
	}
	for _, p := range c.Products {
		if p.Type == typ && p.Model == model {
			return p, true
		}
	}
	return models.Product{}, false
}

// Catalog is an immutable set of categories.
type Catalog struct {
	categories map[string]*Category
	order      []string
}

// New builds a catalog. A later category with the same slug replaces an earlier one.
func New(categories ...*Category) *Catalog {
	c := &Catalog{categories: make(map[string]*Category)}
	for _, cat := range categories {
		if cat == nil {
			continue
		}
		if _, ok := c.categories[cat.Slug]; !ok {
			c.order = append(c.order, cat.Slug)
		}
		c.categories[cat.Slug] = cat
	}
	return c
}

// Categories returns the categories in insertion order.
func (c *Catalog) Categories() []*Category {
	out := make([]*Category, 0, len(c.order))
	for _, slug := range c.order {
		out = append(out, c.categories[slug])
	}
	return out
}

// Category looks up a category by slug or alias.
func (c *Catalog) Category(slug string) (*Category, error) {
	cat, ok := c.categories[CanonicalSlug(slug)]
	if !ok {
		return nil, ErrNotFound
	}
	return cat, nil
}

// Stats counts the categories and products of the catalog.
func (c *Catalog) Stats() *models.ProcessResponse {
	resp := &models.ProcessResponse{TotalCategories: len(c.categories)}
	for _, cat := range c.categories {
		resp.TotalItems += len(cat.Products)
	}
	return resp
}

// Detail builds the product page view.
func (c *Catalog) Detail(category, typ, model string) (*Detail, error) {
	category, typ, model = strings.TrimSpace(category), strings.TrimSpace(typ), strings.TrimSpace(model)
	if category == "" || typ == "" || model == "" {
		return nil, ErrInvalidParams
	}

	cat, err := c.Category(category)
	if err != nil {
		return nil, err
	}
	p, ok := cat.Find(typ, model)
	if !ok {
		return nil, ErrNotFound
	}
	return newDetail(cat, p), nil
}

// Datasheet returns the PDF URL of a product.
func (c *Catalog) Datasheet(category, typ, model string) (string, error) {
	d, err := c.Detail(category, typ, model)
	if err != nil {
		return "", err
	}
	if d.Product.PDFURL == "" {
		return "", ErrNoDatasheet
	}
	return d.Product.PDFURL, nil
}

// sorted returns the categories ordered by slug.
func (c *Catalog) sorted() []*Category {
	out := c.Categories()
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
