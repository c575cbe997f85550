package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name     string
		wantSlug string
		wantType string
	}{
		{name: "traccion.json", wantSlug: "traccion"},
		{name: "estacionarias-pb-ac.json", wantSlug: "estacionaria", wantType: "pb-ac"},
		{name: "data/ciclado-ion-li.JSON", wantSlug: "ciclado", wantType: "ion-li"},
		{name: `dir\Ciclado-Profundo.json`, wantSlug: "ciclado"},
		{name: "pb-ac.json", wantSlug: "pb-ac"},
		{name: "notes.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug, typ := splitName(tt.name)
			assert.Equal(t, tt.wantSlug, slug)
			assert.Equal(t, tt.wantType, typ)
		})
	}
}

const (
	flatTraction = `[
		{"modelo": "TR-1", "type": "ion-li", "voltaje": "25.6V", "energia": 5.25},
		{"modelo": "TR-2", "type": "pb-ac", "peso": "420"}
	]`
	stationaryLead = "\xef\xbb\xbf" + `{
		"columns": [{"key": "modelo", "label": "Modelo"}, {"key": "ciclos", "label": "Ciclos"}],
		"data": [{"modelo": "ES-1", "ciclos": 1200}]
	}`
	stationaryLithium = `{
		"columns": [{"key": "modelo", "label": "Modelo"}, {"key": "voltaje", "label": "Voltaje"}],
		"data": [{"modelo": "ES-2", "voltaje": "51.2V"}]
	}`
	consolidatedCycle = `{
		"category": "ciclado",
		"types": {
			"pb-ac": {"columns": [], "data": [{"modelo": "CP-1"}]},
			"ion-li": {"columns": [], "data": [{"modelo": "CL-1"}, {"modelo": "CL-2"}]}
		}
	}`
)

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"traccion.json":              {Data: []byte(flatTraction)},
		"estacionarias-pb-ac.json":   {Data: []byte(stationaryLead)},
		"estacionarias-ion-li.json":  {Data: []byte(stationaryLithium)},
		"ciclado.json":               {Data: []byte(consolidatedCycle)},
		"readme.txt":                 {Data: []byte("ignored")},
		"nested/traccion-pb-ac.json": {Data: []byte("not json")},
	}

	c, err := LoadFS(fsys)
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 5, stats.TotalCategories)
	assert.Equal(t, 8+8+2+2+3, stats.TotalItems)

	t.Run("flat array", func(t *testing.T) {
		cat, err := c.Category("traccion")
		require.NoError(t, err)
		assert.Equal(t, defaultColumns, cat.Columns)
		assert.Equal(t, []string{"ion-li", "pb-ac"}, cat.Types())
		assert.Equal(t, "5.25", cat.Products[0].Energy.String())
	})

	t.Run("table files take their type from the name", func(t *testing.T) {
		cat, err := c.Category("estacionaria")
		require.NoError(t, err)
		require.Len(t, cat.Products, 2)
		assert.Equal(t, "ion-li", cat.Products[0].Type)
		assert.Equal(t, "pb-ac", cat.Products[1].Type)
		assert.Equal(t, "1200", cat.Products[1].Field("ciclos"))

		keys := make([]string, 0, len(cat.Columns))
		for _, col := range cat.Columns {
			keys = append(keys, col.Key)
		}
		assert.Equal(t, []string{"modelo", "voltaje", "ciclos"}, keys)
	})

	t.Run("consolidated file", func(t *testing.T) {
		cat, err := c.Category("ciclado")
		require.NoError(t, err)
		assert.Equal(t, []string{"CL-1", "CL-2", "CP-1"}, modelNames(cat.Products))
		assert.Equal(t, []string{"ion-li", "pb-ac"}, cat.Types())
	})
}

func TestFromFiles_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   []File
		wantErr string
	}{
		{
			name:    "malformed file is named",
			files:   []File{{Name: "traccion.json", Data: []byte(`[{"modelo": }]`)}},
			wantErr: "traccion.json",
		},
		{
			name:    "empty file",
			files:   []File{{Name: "ciclado.json", Data: []byte("  ")}},
			wantErr: "ciclado.json: empty catalog file",
		},
		{
			name:    "scalar document",
			files:   []File{{Name: "ciclado.json", Data: []byte(`"x"`)}},
			wantErr: "must hold a JSON array or object",
		},
		{
			name:    "missing model",
			files:   []File{{Name: "traccion.json", Data: []byte(`[{"voltaje": "24V"}]`)}},
			wantErr: "has no modelo",
		},
		{
			name: "duplicate across files of one category",
			files: []File{
				{Name: "traccion.json", Data: []byte(`[{"modelo": "A", "type": "pb-ac"}]`)},
				{Name: "traccion-pb-ac.json", Data: []byte(`[{"modelo": "A"}]`)},
			},
			wantErr: `duplicate product "A"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromFiles(tt.files)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromFiles_SameModelOfAnotherType(t *testing.T) {
	c, err := FromFiles([]File{
		{Name: "traccion-pb-ac.json", Data: []byte(`[{"modelo": "A"}]`)},
		{Name: "traccion-ion-li.json", Data: []byte(`[{"modelo": "A"}]`)},
	})
	require.NoError(t, err)

	cat, err := c.Category("traccion")
	require.NoError(t, err)
	assert.Len(t, cat.Products, 2)
}

func TestFromFiles_ReplacesBuiltin(t *testing.T) {
	c, err := FromFiles([]File{
		{Name: "baterias.json", Data: []byte(`[{"modelo": "ONLY-ONE", "tipo": "AGM"}]`)},
	})
	require.NoError(t, err)

	cat, err := c.Category(Batteries)
	require.NoError(t, err)
	assert.Equal(t, []string{"ONLY-ONE"}, modelNames(cat.Products))

	chargers, err := c.Category(Chargers)
	require.NoError(t, err)
	assert.Len(t, chargers.Products, 8)
}

func TestLoad(t *testing.T) {
	t.Run("no directory", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Len(t, c.Categories(), 2)
	})

	t.Run("bundled data", func(t *testing.T) {
		c, err := Load("../../data")
		require.NoError(t, err)
		for _, slug := range []string{"traccion", "ciclado", "estacionaria", Batteries, Chargers} {
			_, err := c.Category(slug)
			assert.NoError(t, err, slug)
		}
	})
}

func TestCatalog_Export(t *testing.T) {
	c, err := LoadFS(fstest.MapFS{
		"traccion.json":            {Data: []byte(flatTraction)},
		"estacionarias-pb-ac.json": {Data: []byte(stationaryLead)},
	})
	require.NoError(t, err)

	files, err := c.Export()
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"baterias.json", "cargadores.json", "estacionaria.json", "traccion.json"}, names)

	again, err := FromFiles(files)
	require.NoError(t, err)
	assert.Equal(t, c.Stats(), again.Stats())

	cat, err := again.Category("estacionaria")
	require.NoError(t, err)
	require.Len(t, cat.Products, 1)
	assert.Equal(t, "pb-ac", cat.Products[0].Type)
	assert.Equal(t, "1200", cat.Products[0].Field("ciclos"))
}
