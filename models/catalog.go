package models

import "errors"

// SlotCategory agrupa los espacios documentales para su presentación
type SlotCategory string

const (
	CategoriaIdentificacion SlotCategory = "identificacion"
	CategoriaFinancieros    SlotCategory = "financieros"
	CategoriaPropiedad      SlotCategory = "propiedad"
	CategoriaNegocio        SlotCategory = "negocio"
	CategoriaGarantias      SlotCategory = "garantias"
)

// RequiredDocumentSlot describe un espacio documental que una solicitud
// debe cubrir. Es configuración estática, no se persiste.
type RequiredDocumentSlot struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Required      bool         `json:"required"`
	Category      SlotCategory `json:"category"`
	MultipleFiles bool         `json:"multipleFiles"`
}

// ErrUnknownProduct se regresa cuando el tipo de producto no se reconoce.
// El resolutor aun así entrega los documentos base para que el asistente
// siga siendo usable.
var ErrUnknownProduct = errors.New("tipo de producto no reconocido")

// Documentos base, comunes a todos los productos. El orden de declaración
// es el orden de presentación.
var baseSlots = []RequiredDocumentSlot{
	{
		ID:          "id-oficial",
		Name:        "Identificación oficial",
		Description: "INE, pasaporte o cédula profesional vigente",
		Required:    true,
		Category:    CategoriaIdentificacion,
	},
	{
		ID:          "comprobante-domicilio",
		Name:        "Comprobante de domicilio",
		Description: "Recibo de servicios no mayor a 3 meses",
		Required:    true,
		Category:    CategoriaIdentificacion,
	},
	{
		ID:          "comprobante-ingresos",
		Name:        "Comprobante de ingresos",
		Description: "Recibos de nómina o comprobantes de ingresos recientes",
		Required:    true,
		Category:    CategoriaFinancieros,
	},
	{
		ID:          "declaracion-impuestos",
		Name:        "Declaración de impuestos",
		Description: "Última declaración anual presentada ante el SAT",
		Required:    false,
		Category:    CategoriaFinancieros,
	},
}

// Documentos adicionales por producto
var productSlots = map[ProductType][]RequiredDocumentSlot{
	ProductSimple: {
		slotEstadoCuenta,
		slotBuroCredito,
	},
	ProductRevolvente: {
		slotEstadoCuenta,
		slotBuroCredito,
		{
			ID:          "plan-negocios",
			Name:        "Plan de negocios",
			Description: "Plan de negocios o proyección del destino del crédito",
			Required:    true,
			Category:    CategoriaNegocio,
		},
	},
	ProductArrendamiento: {
		slotEstadoCuenta,
		slotBuroCredito,
		{
			ID:          "cotizacion-activo",
			Name:        "Cotización del activo",
			Description: "Cotización formal del activo a arrendar",
			Required:    true,
			Category:    CategoriaPropiedad,
		},
		{
			ID:          "seguro-activo",
			Name:        "Seguro del activo",
			Description: "Póliza o cotización del seguro del activo",
			Required:    true,
			Category:    CategoriaGarantias,
		},
	},
}

var slotEstadoCuenta = RequiredDocumentSlot{
	ID:            "estado-cuenta",
	Name:          "Estados de cuenta",
	Description:   "Estados de cuenta bancarios de los últimos 3 meses",
	Required:      true,
	Category:      CategoriaFinancieros,
	MultipleFiles: true,
}

var slotBuroCredito = RequiredDocumentSlot{
	ID:          "buro-credito",
	Name:        "Reporte de buró de crédito",
	Description: "Reporte de buró de crédito con antigüedad menor a 30 días",
	Required:    true,
	Category:    CategoriaFinancieros,
}

// Documentos corporativos, se agregan cuando el cliente es empresarial
// sin importar el producto.
var corporateSlots = []RequiredDocumentSlot{
	{
		ID:          "acta-constitutiva",
		Name:        "Acta constitutiva",
		Description: "Acta constitutiva con sus reformas y datos registrales",
		Required:    true,
		Category:    CategoriaNegocio,
	},
	{
		ID:          "poder-representante",
		Name:        "Poder del representante legal",
		Description: "Poder notarial del representante legal",
		Required:    true,
		Category:    CategoriaNegocio,
	},
	{
		ID:            "estados-financieros",
		Name:          "Estados financieros",
		Description:   "Estados financieros de los últimos 2 ejercicios",
		Required:      true,
		Category:      CategoriaFinancieros,
		MultipleFiles: true,
	},
	{
		ID:          "constancia-fiscal",
		Name:        "Constancia de situación fiscal",
		Description: "Constancia de situación fiscal actualizada",
		Required:    true,
		Category:    CategoriaNegocio,
	},
}

// ResolveRequiredDocuments regresa la lista ordenada de espacios documentales
// para la combinación producto/cliente: primero los base, luego los del
// producto y al final los corporativos cuando el cliente es empresarial.
// Las condiciones del crédito no alteran la selección; el parámetro queda
// reservado para productos que lleguen a distinguirlas.
//
// Un producto no reconocido regresa los documentos base junto con
// ErrUnknownProduct, de modo que quien llama decide si degradar o fallar.
func ResolveRequiredDocuments(product ProductType, client ClientType, conditions string) ([]RequiredDocumentSlot, error) {
	slots := make([]RequiredDocumentSlot, 0, len(baseSlots)+6)
	slots = append(slots, baseSlots...)

	extra, ok := productSlots[product]
	if ok {
		slots = append(slots, extra...)
	}

	if client == ClientEmpresarial {
		slots = append(slots, corporateSlots...)
	}

	if !ok {
		return slots, ErrUnknownProduct
	}
	return slots, nil
}

// FindSlot busca un espacio por su identificador dentro de una lista resuelta
func FindSlot(slots []RequiredDocumentSlot, id string) (RequiredDocumentSlot, bool) {
	for _, s := range slots {
		if s.ID == id {
			return s, true
		}
	}
	return RequiredDocumentSlot{}, false
}

// SlotsByCategory agrupa una lista resuelta por categoría conservando el orden
func SlotsByCategory(slots []RequiredDocumentSlot) map[SlotCategory][]RequiredDocumentSlot {
	grouped := make(map[SlotCategory][]RequiredDocumentSlot)
	for _, s := range slots {
		grouped[s.Category] = append(grouped[s.Category], s)
	}
	return grouped
}
