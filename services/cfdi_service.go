package services

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// CFDIData representa los datos fiscales extraídos de un comprobante CFDI
type CFDIData struct {
	UUID        string
	EmisorRFC   string
	ReceptorRFC string
	Total       float64
	Fecha       string
}

// ErrNotCFDI indica que el archivo no es un comprobante CFDI válido.
// Los documentos fiscales que no sean XML se aceptan tal cual; este error
// solo evita guardar metadatos fiscales de un archivo que no los tiene.
var ErrNotCFDI = errors.New("el archivo no es un comprobante CFDI")

// Espacios documentales que pueden traer un CFDI en XML
var fiscalSlots = map[string]bool{
	"comprobante-ingresos":  true,
	"declaracion-impuestos": true,
	"constancia-fiscal":     true,
}

// IsFiscalSlot indica si el espacio admite inspección de CFDI
func IsFiscalSlot(slotType string) bool {
	return fiscalSlots[slotType]
}

// ParseCFDI extrae los datos fiscales de un comprobante CFDI 3.3 o 4.0
func ParseCFDI(r io.Reader) (*CFDIData, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, ErrNotCFDI
	}

	root := doc.Root()
	if root == nil || root.Tag != "Comprobante" {
		return nil, ErrNotCFDI
	}

	data := &CFDIData{
		Fecha: root.SelectAttrValue("Fecha", ""),
	}

	totalAttr := root.SelectAttrValue("Total", "")
	if totalAttr != "" {
		total, err := strconv.ParseFloat(totalAttr, 64)
		if err != nil {
			return nil, ErrNotCFDI
		}
		data.Total = total
	}

	if emisor := findChild(root, "Emisor"); emisor != nil {
		data.EmisorRFC = strings.ToUpper(emisor.SelectAttrValue("Rfc", ""))
	}
	if receptor := findChild(root, "Receptor"); receptor != nil {
		data.ReceptorRFC = strings.ToUpper(receptor.SelectAttrValue("Rfc", ""))
	}

	// El folio fiscal vive en el timbre, dentro del complemento
	if complemento := findChild(root, "Complemento"); complemento != nil {
		if timbre := findChild(complemento, "TimbreFiscalDigital"); timbre != nil {
			data.UUID = strings.ToUpper(timbre.SelectAttrValue("UUID", ""))
		}
	}

	if data.EmisorRFC == "" && data.ReceptorRFC == "" {
		return nil, ErrNotCFDI
	}

	return data, nil
}

// findChild busca un hijo directo por etiqueta ignorando el prefijo de
// espacio de nombres, los emisores de CFDI no siempre usan el prefijo cfdi:
func findChild(parent *etree.Element, tag string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}
