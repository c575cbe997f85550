package catalog

import "github.com/drstein77/batterycatalog/internal/models"

// Built-in category slugs. Their products have no chemistry type.
const (
	Batteries = "baterias"
	Chargers  = "cargadores"
)

var batteryColumns = []models.Column{
	{Key: "modelo", Label: "Modelo"},
	{Key: "tipo", Label: "Tipo"},
	{Key: "voltaje", Label: "Voltaje"},
	{Key: "capacidad", Label: "Capacidad"},
	{Key: "aplicacion", Label: "Aplicación"},
}

var chargerColumns = []models.Column{
	{Key: "modelo", Label: "Modelo"},
	{Key: "tipo", Label: "Tipo"},
	{Key: "voltaje", Label: "Voltaje"},
	{Key: "corriente", Label: "Corriente"},
	{Key: "aplicacion", Label: "Aplicación"},
}

var batteries = []models.Product{
	{
		Model: "BAT-12V-100AH-AGM", Kind: "AGM", Voltage: "12V", Capacity: "100Ah",
		Application: "UPS, Solar",
		Features: []string{
			"Libre de mantenimiento",
			"Ciclo de vida: 5-8 años",
			"Resistente a vibraciones",
			"Sellada y recargable",
		},
	},
	{
		Model: "BAT-12V-200AH-GEL", Kind: "Gel", Voltage: "12V", Capacity: "200Ah",
		Application: "Solar, Náutica",
		Features: []string{
			"Electrolito en gel",
			"Mayor duración",
			"Ideal para descargas profundas",
			"Resistente a temperaturas extremas",
		},
	},
	{
		Model: "BAT-12V-75AH-PA", Kind: "Plomo-Ácido", Voltage: "12V", Capacity: "75Ah",
		Application: "Automotor",
		Features: []string{
			"Alta corriente de arranque",
			"Económica",
			"Mantenimiento simple",
			"Gran disponibilidad",
		},
	},
	{
		Model: "BAT-24V-100AH-LITIO", Kind: "Litio", Voltage: "24V", Capacity: "100Ah",
		Application: "Industrial, Solar",
		Features: []string{
			"Peso ligero",
			"Carga rápida",
			"Mayor densidad energética",
			"Larga vida útil (10+ años)",
		},
	},
	{
		Model: "BAT-48V-200AH-TRACCION", Kind: "Tracción", Voltage: "48V", Capacity: "200Ah",
		Application: "Montacargas, Vehículos eléctricos",
		Features: []string{
			"Diseño para uso intensivo",
			"Resistente a ciclos profundos",
			"Mantenimiento programado",
			"Alta confiabilidad",
		},
	},
	{
		Model: "BAT-6V-225AH-PA", Kind: "Plomo-Ácido", Voltage: "6V", Capacity: "225Ah",
		Application: "Golf Carts, Carritos",
		Features: []string{
			"Construcción robusta",
			"Ciclo profundo",
			"Económica",
			"Fácil conexión en serie",
		},
	},
	{
		Model: "BAT-12V-150AH-AGM", Kind: "AGM", Voltage: "12V", Capacity: "150Ah",
		Application: "Telecomunicaciones, UPS",
		Features: []string{
			"Sin emisión de gases",
			"Instalación flexible",
			"Baja autodescarga",
			"Alta fiabilidad",
		},
	},
	{
		Model: "BAT-12V-50AH-LITIO", Kind: "Litio", Voltage: "12V", Capacity: "50Ah",
		Application: "Solar, Portátil",
		Features: []string{
			"Compacta y ligera",
			"BMS integrado",
			"Carga rápida",
			"Más de 3000 ciclos",
		},
	},
}

var chargers = []models.Product{
	{
		Model: "CARG-12V-10A-AUTO", Kind: "Automático", Voltage: "12V", Current: "10A",
		Application: "Automotor, Náutica",
		Features: []string{
			"Carga automática inteligente",
			"Protección contra sobrecarga",
			"Indicador LED de estado",
			"Compacto y portátil",
		},
	},
	{
		Model: "CARG-24V-20A-IND", Kind: "Industrial", Voltage: "24V", Current: "20A",
		Application: "Industrial, Montacargas",
		Features: []string{
			"Construcción robusta",
			"Alta eficiencia",
			"Sistema de refrigeración",
			"Protecciones múltiples",
		},
	},
	{
		Model: "CARG-12V-30A-INTEL", Kind: "Inteligente", Voltage: "12V", Current: "30A",
		Application: "AGM, Gel, Litio",
		Features: []string{
			"Reconocimiento automático",
			"Múltiples modos de carga",
			"Display LCD",
			"Función de mantenimiento",
		},
	},
	{
		Model: "CARG-48V-15A-IND", Kind: "Industrial", Voltage: "48V", Current: "15A",
		Application: "Vehículos eléctricos",
		Features: []string{
			"Alta potencia",
			"Ventilación forzada",
			"Protección térmica",
			"Conexión rápida",
		},
	},
	{
		Model: "CARG-12V-5A-RAPID", Kind: "Rápido", Voltage: "12V", Current: "5A",
		Application: "Emergencias, Portátil",
		Features: []string{
			"Carga rápida",
			"Ultracompacto",
			"Cable de 2 metros",
			"Fácil transporte",
		},
	},
	{
		Model: "CARG-UNI-6-12-24V-8A", Kind: "Automático", Voltage: "Universal", Current: "8A",
		Application: "Múltiple",
		Features: []string{
			"Voltaje seleccionable",
			"Ideal para taller",
			"Pinzas reforzadas",
			"Protección inversa",
		},
	},
	{
		Model: "CARG-12V-50A-IND", Kind: "Industrial", Voltage: "12V", Current: "50A",
		Application: "Bancos de baterías",
		Features: []string{
			"Alta capacidad",
			"Carga ecualizada",
			"Panel de control digital",
			"Certificado industrial",
		},
	},
	{
		Model: "CARG-24V-10A-INTEL", Kind: "Inteligente", Voltage: "24V", Current: "10A",
		Application: "Solar, UPS",
		Features: []string{
			"Algoritmo optimizado",
			"Eficiencia >90%",
			"Bajo consumo standby",
			"Conexión remota opcional",
		},
	},
}

// Builtin returns fresh copies of the hard-coded battery and charger categories.
func Builtin() []*Category {
	return []*Category{
		newCategory(Batteries, batteryColumns, cloneProducts(batteries)),
		newCategory(Chargers, chargerColumns, cloneProducts(chargers)),
	}
}

func cloneProducts(in []models.Product) []models.Product {
	out := make([]models.Product, len(in))
	copy(out, in)
	return out
}
