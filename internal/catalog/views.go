package catalog

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/drstein77/batterycatalog/internal/models"
)

const (
	// FeaturedCount is the number of products highlighted on a category landing page.
	FeaturedCount = 3
	// SlideSize is the number of cards per carousel slide.
	SlideSize = 3

	CardPlaceholder   = "https://placehold.co/400x300/333/fff?text=No+Image"
	DetailPlaceholder = "https://via.placeholder.com/800x600/333/fff?text=Imagen+No+Disponible"
	EmptySection      = "No se encontraron productos para esta aplicación."
	emptyCell         = "-"
	defaultUse        = "Aplicación Industrial"
)

// Section layouts.
const (
	LayoutEmpty    = "empty"
	LayoutGrid     = "grid"
	LayoutCarousel = "carousel"
)

// Cell is one table cell.
type Cell struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Bold  bool   `json:"bold,omitempty"`
	Badge bool   `json:"badge,omitempty"`
}

// Row is one table row. Model and Type identify the product behind it.
type Row struct {
	Model string `json:"modelo"`
	Type  string `json:"type"`
	Cells []Cell `json:"cells"`
}

// Table is the tabular view of a category page.
type Table struct {
	Category string           `json:"category"`
	Name     string           `json:"name"`
	Columns  []models.Column  `json:"columns"`
	Rows     []Row            `json:"rows"`
	Products []models.Product `json:"products"`
	Empty    bool             `json:"empty"`
}

// Table renders the filtered products as table rows.
func (c *Category) Table(f Filter) *Table {
	products := c.Filter(f)
	t := &Table{
		Category: c.Slug,
		Name:     c.Name,
		Columns:  c.Columns,
		Rows:     make([]Row, 0, len(products)),
		Products: products,
		Empty:    len(products) == 0,
	}
	for _, p := range products {
		row := Row{Model: p.Model, Type: typeParam(p.Type), Cells: make([]Cell, 0, len(c.Columns))}
		for _, col := range c.Columns {
			v := p.Field(col.Key)
			if v == "" {
				v = emptyCell
			}
			row.Cells = append(row.Cells, Cell{
				Key:   col.Key,
				Value: v,
				Bold:  col.Key == "modelo",
				Badge: col.Key == "tipo",
			})
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Featured returns the first products of a type.
func (c *Category) Featured(typ string) []models.Card {
	products := c.Filter(Filter{Type: typ})
	if len(products) > FeaturedCount {
		products = products[:FeaturedCount]
	}
	cards := make([]models.Card, 0, len(products))
	for _, p := range products {
		cards = append(cards, c.card(p))
	}
	return cards
}

// Crumb is one breadcrumb item. The last crumb has no link.
type Crumb struct {
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
}

// Section is the card group of one chemistry type.
type Section struct {
	Type   string          `json:"type"`
	Title  string          `json:"title"`
	Layout string          `json:"layout"`
	Empty  string          `json:"empty_message,omitempty"`
	Cards  []models.Card   `json:"cards"`
	Slides [][]models.Card `json:"slides,omitempty"`
}

// Cards is the card view of a category landing page.
type Cards struct {
	Category    string    `json:"category"`
	Name        string    `json:"name"`
	Subtitle    string    `json:"subtitle"`
	Application string    `json:"application,omitempty"`
	Breadcrumb  []Crumb   `json:"breadcrumb"`
	Sections    []Section `json:"sections"`
}

// Cards groups the products matching an application slug into one section per type.
// An empty slug shows every product.
func (c *Category) Cards(application string) *Cards {
	view := &Cards{
		Category: c.Slug,
		Name:     c.Name,
		Subtitle: c.Subtitle,
		Breadcrumb: []Crumb{
			{Label: "Inicio", Href: "../../index.html"},
			{Label: "Baterías", Href: "../index.html"},
			{Label: c.short},
		},
	}

	var appName string
	if application != "" {
		appName = c.ApplicationName(application)
		view.Application = appName
		view.Subtitle = "Modelos destacados para " + appName
		view.Breadcrumb[2].Href = "index.html"
		view.Breadcrumb = append(view.Breadcrumb, Crumb{Label: appName})
	}

	for _, typ := range c.Types() {
		products := c.Filter(Filter{Type: typeParam(typ), Application: application})

		label := c.sectionLabel(typ)
		s := Section{Type: typeParam(typ), Title: "Modelos Destacados - " + label}
		if appName != "" {
			s.Title = "Modelos para " + appName + " - " + label
		}

		s.Cards = make([]models.Card, 0, len(products))
		for _, p := range products {
			s.Cards = append(s.Cards, c.card(p))
		}

		switch {
		case len(s.Cards) == 0:
			s.Layout = LayoutEmpty
			s.Empty = EmptySection
		case len(s.Cards) > SlideSize:
			s.Layout = LayoutCarousel
			s.Slides = Slides(s.Cards, SlideSize)
		default:
			s.Layout = LayoutGrid
		}
		view.Sections = append(view.Sections, s)
	}
	return view
}

func (c *Category) sectionLabel(typ string) string {
	if typ == "" {
		return c.short
	}
	return c.short + " " + TypeLabel(typ)
}

// Slides splits cards into consecutive groups of at most size cards.
func Slides(cards []models.Card, size int) [][]models.Card {
	if size <= 0 {
		return nil
	}
	out := make([][]models.Card, 0, (len(cards)+size-1)/size)
	for i := 0; i < len(cards); i += size {
		end := i + size
		if end > len(cards) {
			end = len(cards)
		}
		out = append(out, cards[i:end])
	}
	return out
}

func (c *Category) card(p models.Product) models.Card {
	image := CardPlaceholder
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	application := first(p.Application, specValue(p, "Aplicación"), c.cardApplication)
	return models.Card{
		Model:       p.Model,
		Type:        typeParam(p.Type),
		Application: application,
		Image:       image,
		Specs:       cardSpecs(p),
		DetailURL:   DetailURL(c.Slug, p.Type, p.Model),
		Slug:        Slug(p.Model),
	}
}

// cardSpecs lists voltage, capacity and then energy, weight or kind, whichever is set first.
// Values missing from the record are read from its specification table.
func cardSpecs(p models.Product) []models.CardSpec {
	voltage := first(p.Voltage, specValue(p, "Voltaje Nominal"))
	capacity := first(p.Capacity, specValue(p, "Capacidad"), specValue(p, "Capacidad (C5)"))

	specs := []models.CardSpec{
		{Label: "Voltaje", Value: voltage},
		{Label: "Capacidad", Value: capacity},
	}
	switch {
	case p.Energy != "":
		specs = append(specs, models.CardSpec{Label: "Energía", Value: p.Energy.String() + " kWh"})
	case p.Weight != "":
		specs = append(specs, models.CardSpec{Label: "Peso", Value: p.Weight.String() + " kg"})
	default:
		specs = append(specs, models.CardSpec{Label: "Tipo", Value: first(p.Kind, specValue(p, "Tipo"))})
	}

	out := specs[:0]
	for _, s := range specs {
		if s.Value != "" {
			out = append(out, s)
		}
	}
	return out
}

func specValue(p models.Product, key string) string {
	for _, s := range p.Specifications {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Detail is the product page view.
type Detail struct {
	Category    string         `json:"category"`
	Breadcrumb  []Crumb        `json:"breadcrumb"`
	Product     models.Product `json:"product"`
	MainImage   string         `json:"main_image"`
	Thumbnails  []string       `json:"thumbnails,omitempty"`
	Application string         `json:"application"`
	Features    []string       `json:"features"`
	Specs       models.Specs   `json:"specifications"`
	PDFURL      string         `json:"pdf_url,omitempty"`
	ContactURL  string         `json:"contact_url"`
}

func newDetail(c *Category, p models.Product) *Detail {
	d := &Detail{
		Category: c.Slug,
		Breadcrumb: []Crumb{
			{Label: "Inicio", Href: "../index.html"},
			{Label: "Baterías", Href: "index.html"},
			{Label: c.Name, Href: c.Slug + "/index.html"},
			{Label: p.Model},
		},
		Product:     p,
		MainImage:   DetailPlaceholder,
		Application: first(p.Application, defaultUse),
		Features:    p.Features,
		Specs:       p.Specifications,
		PDFURL:      p.PDFURL,
		ContactURL:  "../index.html#contacto",
	}
	if d.Features == nil {
		d.Features = []string{}
	}
	if d.Specs == nil {
		d.Specs = models.Specs{}
	}
	if len(p.Images) > 0 {
		d.MainImage = p.Images[0]
	}
	if len(p.Images) > 1 {
		d.Thumbnails = p.Images
	}
	return d
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slug builds the URL-safe page name of a model.
func Slug(model string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(model), "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// DetailURL links a card to the product page.
func DetailURL(category, typ, model string) string {
	return "product.html?category=" + escapeComponent(category) +
		"&type=" + escapeComponent(typeParam(typ)) +
		"&modelo=" + escapeComponent(model)
}

// escapeComponent escapes a query value with spaces as %20, as browsers do for URI components.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func typeParam(t string) string {
	if t == "" {
		return NoType
	}
	return t
}
