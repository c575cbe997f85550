package catalog

import "strings"

// Application is an entry of a category's application filter table.
type Application struct {
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	Patterns []string `json:"-"`
}

type categoryMeta struct {
	name         string
	short        string
	subtitle     string
	applications []Application
	// shown on cards of products without an application
	cardApplication string
}

var tractionApplications = []Application{
	{Slug: "montacargas-electricos", Name: "Montacargas Eléctricos", Patterns: []string{"montacargas", "eléctricos"}},
	{Slug: "montacargas-3-ruedas", Name: "Montacargas de 3 Ruedas", Patterns: []string{"montacargas", "3 ruedas"}},
	{Slug: "montacargas-pesados", Name: "Montacargas de Servicio Pesado", Patterns: []string{"montacargas", "pesados"}},
	{Slug: "montacargas-pasillo-estrecho", Name: "Montacargas de Pasillo Estrecho", Patterns: []string{"montacargas", "pasillo estrecho"}},
	{Slug: "montacargas-contrapeso", Name: "Montacargas de Contrapeso", Patterns: []string{"montacargas", "contrapeso"}},
	{Slug: "reach-truck", Name: "Reach Truck", Patterns: []string{"reach truck"}},
	{Slug: "transpaleta", Name: "Transpaleta Eléctrica", Patterns: []string{"transpaleta"}},
	{Slug: "tractor-remolque", Name: "Tractor de Remolque Eléctrico", Patterns: []string{"tractor", "remolque"}},
	{Slug: "apilador", Name: "Apilador Eléctrico", Patterns: []string{"apilador"}},
	{Slug: "locomotora-minera", Name: "Locomotora Minera", Patterns: []string{"locomotora"}},
	{Slug: "maquina-limpieza", Name: "Máquina de Limpieza de Pisos", Patterns: []string{"limpieza"}},
	{Slug: "equipo-agricola", Name: "Equipo Agrícola", Patterns: []string{"agrícola"}},
	{Slug: "miniexcavadora", Name: "Miniexcavadora", Patterns: []string{"excavadora"}},
	{Slug: "agv", Name: "Vehículo Guiado Automáticamente", Patterns: []string{"agv", "guiado", "automáticamente", "robots móviles"}},
}

// Entries without patterns fall back to matching the slug text.
var deepCycleApplications = []Application{
	{Slug: "carrito-golf", Name: "Carrito de Golf"},
	{Slug: "vehiculo-utilitario", Name: "Vehículo Utilitario"},
	{Slug: "remolcador-equipaje", Name: "Remolcador de Equipaje"},
	{Slug: "equipos-aeropuerto", Name: "Equipos de Aeropuerto"},
	{Slug: "plataforma-elevacion", Name: "Plataforma de Elevación"},
	{Slug: "solar", Name: "Sistemas Solares", Patterns: []string{"solar"}},
	{Slug: "rv", Name: "RV y Autocaravanas", Patterns: []string{"rv", "autocaravana"}},
	{Slug: "nautica", Name: "Aplicaciones Náuticas", Patterns: []string{"náutica", "embarcación"}},
	{Slug: "golf", Name: "Carritos de Golf", Patterns: []string{"golf"}},
	{Slug: "telecomunicaciones", Name: "Telecomunicaciones", Patterns: []string{"telecomunicaciones"}},
}

var metas = map[string]categoryMeta{
	"traccion": {
		name:         "Baterías de Tracción",
		short:        "Tracción",
		subtitle:     "Soluciones de energía para equipos de manejo de materiales y vehículos industriales",
		applications: tractionApplications,
	},
	"ciclado": {
		name:         "Baterías de Ciclado Profundo",
		short:        "Ciclado Profundo",
		subtitle:     "Baterías de ciclado profundo para aplicaciones recreativas y comerciales",
		applications: deepCycleApplications,
	},
	"estacionaria": {
		name:            "Baterías Estacionarias",
		short:           "Estacionaria",
		cardApplication: "Aplicación Estacionaria",
	},
	Batteries: {
		name:  "Baterías",
		short: "Baterías",
	},
	Chargers: {
		name:  "Cargadores",
		short: "Cargadores",
	},
}

var aliases = map[string]string{
	"estacionarias":    "estacionaria",
	"ciclado-profundo": "ciclado",
}

var typeLabels = map[string]string{
	"pb-ac":  "Pb-Ac",
	"ion-li": "Ion Li",
}

// Known battery chemistry types. Data files named <category>-<type>.json carry one of them.
var knownTypes = []string{"pb-ac", "ion-li"}

// CanonicalSlug maps alternative category names used by the site to one slug.
func CanonicalSlug(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if canon, ok := aliases[slug]; ok {
		return canon
	}
	return slug
}

func lookupMeta(slug string) categoryMeta {
	if m, ok := metas[slug]; ok {
		return m
	}
	return categoryMeta{name: "Baterías", short: strings.ReplaceAll(slug, "-", " ")}
}

// TypeLabel returns the display label of a chemistry type.
func TypeLabel(t string) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return t
}
