package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drstein77/batterycatalog/internal/models"
)

func modelNames(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Model)
	}
	return out
}

func TestCategory_Filter_Builtin(t *testing.T) {
	c := New(Builtin()...)
	bats, err := c.Category(Batteries)
	require.NoError(t, err)
	chargers, err := c.Category(Chargers)
	require.NoError(t, err)

	tests := []struct {
		name   string
		cat    *Category
		filter Filter
		want   []string
	}{
		{
			name:   "zero filter returns everything",
			cat:    bats,
			filter: Filter{},
			want: []string{
				"BAT-12V-100AH-AGM", "BAT-12V-200AH-GEL", "BAT-12V-75AH-PA", "BAT-24V-100AH-LITIO",
				"BAT-48V-200AH-TRACCION", "BAT-6V-225AH-PA", "BAT-12V-150AH-AGM", "BAT-12V-50AH-LITIO",
			},
		},
		{
			name:   "search matches model case-insensitively",
			cat:    bats,
			filter: Filter{Search: "LiTiO"},
			want:   []string{"BAT-24V-100AH-LITIO", "BAT-12V-50AH-LITIO"},
		},
		{
			name:   "search matches application",
			cat:    bats,
			filter: Filter{Search: "telecom"},
			want:   []string{"BAT-12V-150AH-AGM"},
		},
		{
			name:   "search and kind are combined",
			cat:    bats,
			filter: Filter{Search: "solar", Kind: "AGM"},
			want:   []string{"BAT-12V-100AH-AGM"},
		},
		{
			name:   "voltage is an exact match",
			cat:    bats,
			filter: Filter{Voltage: "12V"},
			want: []string{
				"BAT-12V-100AH-AGM", "BAT-12V-200AH-GEL", "BAT-12V-75AH-PA", "BAT-12V-150AH-AGM", "BAT-12V-50AH-LITIO",
			},
		},
		{
			name:   "charger kind",
			cat:    chargers,
			filter: Filter{Kind: "Industrial"},
			want:   []string{"CARG-24V-20A-IND", "CARG-48V-15A-IND", "CARG-12V-50A-IND"},
		},
		{
			name:   "charger universal voltage",
			cat:    chargers,
			filter: Filter{Voltage: "Universal"},
			want:   []string{"CARG-UNI-6-12-24V-8A"},
		},
		{
			name:   "no match",
			cat:    chargers,
			filter: Filter{Search: "zzz"},
			want:   []string{},
		},
		{
			name:   "placeholder type matches untyped products",
			cat:    chargers,
			filter: Filter{Type: NoType, Kind: "Rápido"},
			want:   []string{"CARG-12V-5A-RAPID"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, modelNames(tt.cat.Filter(tt.filter)))
		})
	}
}

func tractionCategory() *Category {
	return newCategory("traccion", defaultColumns, []models.Product{
		{Model: "LI-1", Type: "ion-li", Application: "Montacargas eléctricos"},
		{Model: "LI-2", Type: "ion-li", Application: "AGV y robots móviles"},
		{Model: "LI-3", Type: "ion-li", Application: "Transpaleta eléctrica"},
		{Model: "PB-1", Type: "pb-ac", Application: "Locomotora minera"},
		{Model: "PB-2", Type: "pb-ac", Application: ""},
		{Model: "PB-3", Type: "pb-ac", Application: "Equipo agrícola ligero"},
	})
}

func TestCategory_Filter_Application(t *testing.T) {
	c := tractionCategory()

	tests := []struct {
		slug string
		want []string
	}{
		{slug: "agv", want: []string{"LI-2"}},
		{slug: "locomotora-minera", want: []string{"PB-1"}},
		{slug: "equipo-agricola", want: []string{"PB-3"}},
		{slug: "montacargas-electricos", want: []string{"LI-1"}},
		{slug: "transpaleta", want: []string{"LI-3"}},
		// unknown slugs match on the slug text
		{slug: "agv-y-robots", want: []string{"LI-2"}},
		{slug: "grua-portuaria", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			assert.Equal(t, tt.want, modelNames(c.Filter(Filter{Application: tt.slug})))
		})
	}
}

func TestCategory_Filter_EmptyApplicationNeverMatches(t *testing.T) {
	c := tractionCategory()
	for _, p := range c.Filter(Filter{Application: "pb"}) {
		assert.NotEqual(t, "PB-2", p.Model)
	}
}

func TestCategory_ApplicationName(t *testing.T) {
	c := tractionCategory()
	assert.Equal(t, "Vehículo Guiado Automáticamente", c.ApplicationName("agv"))
	assert.Equal(t, "grua portuaria", c.ApplicationName("grua-portuaria"))
}

func TestCategory_Facets(t *testing.T) {
	c := New(Builtin()...)
	bats, err := c.Category(Batteries)
	require.NoError(t, err)

	f := bats.Facets()
	assert.Equal(t, []string{"AGM", "Gel", "Plomo-Ácido", "Litio", "Tracción"}, f.Kinds)
	assert.Equal(t, []string{"12V", "24V", "48V", "6V"}, f.Voltages)
	assert.Empty(t, f.Types)
}

func TestFilter_IsZero(t *testing.T) {
	assert.True(t, Filter{}.IsZero())
	assert.False(t, Filter{Voltage: "12V"}.IsZero())
}
