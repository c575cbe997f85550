package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/drstein77/batterycatalog/internal/models"
)

// File is a named catalog data file.
type File struct {
	Name string
	Data []byte
}

var defaultColumns = []models.Column{
	{Key: "modelo", Label: "Modelo"},
	{Key: "tipo", Label: "Tipo"},
	{Key: "voltaje", Label: "Voltaje"},
	{Key: "capacidad", Label: "Capacidad"},
	{Key: "aplicacion", Label: "Aplicación"},
}

// Load reads every *.json file of dir on top of the built-in categories.
// An empty dir yields the built-in categories only.
func Load(dir string) (*Catalog, error) {
	if dir == "" {
		return New(Builtin()...), nil
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads every *.json file at the root of fsys.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog files: %w", err)
	}

	files := make([]File, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		files = append(files, File{Name: name, Data: data})
	}
	return FromFiles(files)
}

type builder struct {
	slug     string
	columns  []models.Column
	colSeen  map[string]struct{}
	products []models.Product
	seen     map[string]struct{}
}

func newBuilder(slug string) *builder {
	return &builder{
		slug:    slug,
		colSeen: make(map[string]struct{}),
		seen:    make(map[string]struct{}),
	}
}

func (b *builder) addColumns(cols []models.Column) {
	for _, c := range cols {
		if _, ok := b.colSeen[c.Key]; ok {
			continue
		}
		b.colSeen[c.Key] = struct{}{}
		b.columns = append(b.columns, c)
	}
}

func (b *builder) addProducts(file, typ string, products []models.Product) error {
	for i, p := range products {
		if p.Type == "" {
			p.Type = typ
		}
		if strings.TrimSpace(p.Model) == "" {
			return fmt.Errorf("%s: product %d has no modelo", file, i)
		}
		key := p.Type + "\x00" + p.Model
		if _, ok := b.seen[key]; ok {
			return fmt.Errorf("%s: duplicate product %q of type %q", file, p.Model, p.Type)
		}
		b.seen[key] = struct{}{}
		b.products = append(b.products, p)
	}
	return nil
}

func (b *builder) category() *Category {
	cols := b.columns
	if len(cols) == 0 {
		cols = defaultColumns
	}
	return newCategory(b.slug, cols, b.products)
}

// FromFiles builds a catalog from data files, processed in name order.
// Files named <category>-<type>.json set the chemistry type of records that have none.
func FromFiles(files []File) (*Catalog, error) {
	sorted := make([]File, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	builders := make(map[string]*builder)
	var order []string

	for _, f := range sorted {
		slug, typ := splitName(f.Name)
		if slug == "" {
			continue
		}
		b, ok := builders[slug]
		if !ok {
			b = newBuilder(slug)
			builders[slug] = b
			order = append(order, slug)
		}
		if err := decodeFile(b, f, typ); err != nil {
			return nil, err
		}
	}

	categories := Builtin()
	for _, slug := range order {
		categories = append(categories, builders[slug].category())
	}
	return New(categories...), nil
}

// splitName turns "estacionarias-pb-ac.json" into ("estacionaria", "pb-ac").
func splitName(name string) (slug, typ string) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if !strings.EqualFold(path.Ext(base), ".json") {
		return "", ""
	}
	base = strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
	for _, t := range knownTypes {
		if strings.HasSuffix(base, "-"+t) && len(base) > len(t)+1 {
			return CanonicalSlug(strings.TrimSuffix(base, "-"+t)), t
		}
	}
	return CanonicalSlug(base), ""
}

func decodeFile(b *builder, f File, typ string) error {
	data := bytes.TrimPrefix(f.Data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%s: empty catalog file", f.Name)
	}

	switch data[0] {
	case '[':
		var products []models.Product
		if err := json.Unmarshal(data, &products); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		return b.addProducts(f.Name, typ, products)
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		if _, ok := probe["types"]; ok {
			var cf models.ConsolidatedFile
			if err := json.Unmarshal(data, &cf); err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			types := make([]string, 0, len(cf.Types))
			for t := range cf.Types {
				types = append(types, t)
			}
			sort.Strings(types)
			for _, t := range types {
				tf := cf.Types[t]
				b.addColumns(tf.Columns)
				if err := b.addProducts(f.Name, t, tf.Data); err != nil {
					return err
				}
			}
			return nil
		}
		var tf models.TableFile
		if err := json.Unmarshal(data, &tf); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		b.addColumns(tf.Columns)
		return b.addProducts(f.Name, typ, tf.Data)
	}
	return fmt.Errorf("%s: catalog file must hold a JSON array or object", f.Name)
}

// Export renders every category as a consolidated data file named <slug>.json.
func (c *Catalog) Export() ([]File, error) {
	cats := c.sorted()
	files := make([]File, 0, len(cats))
	for _, cat := range cats {
		cf := models.ConsolidatedFile{Category: cat.Slug, Types: make(map[string]models.TableFile)}
		for _, p := range cat.Products {
			tf := cf.Types[p.Type]
			tf.Columns = cat.Columns
			tf.Data = append(tf.Data, p)
			cf.Types[p.Type] = tf
		}
		data, err := json.MarshalIndent(cf, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode category %s: %w", cat.Slug, err)
		}
		files = append(files, File{Name: cat.Slug + ".json", Data: data})
	}
	return files, nil
}
