package services

import (
	"errors"
	"strings"
	"testing"
)

const sampleCFDI = `<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" Version="4.0"
	Fecha="2026-08-15T10:30:00" Total="11600.00" SubTotal="10000.00">
	<cfdi:Emisor Rfc="AAA010101AAA" Nombre="Empresa Emisora SA de CV"/>
	<cfdi:Receptor Rfc="XAXX010101000" Nombre="Publico en General"/>
	<cfdi:Complemento>
		<tfd:TimbreFiscalDigital xmlns:tfd="http://www.sat.gob.mx/TimbreFiscalDigital"
			UUID="ad662d33-6934-459c-a128-bdf0393e0f44"/>
	</cfdi:Complemento>
</cfdi:Comprobante>`

func TestParseCFDI(t *testing.T) {
	data, err := ParseCFDI(strings.NewReader(sampleCFDI))
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}

	if data.EmisorRFC != "AAA010101AAA" {
		t.Errorf("RFC del emisor: esperaba AAA010101AAA, obtuvo %q", data.EmisorRFC)
	}
	if data.ReceptorRFC != "XAXX010101000" {
		t.Errorf("RFC del receptor: esperaba XAXX010101000, obtuvo %q", data.ReceptorRFC)
	}
	if data.Total != 11600.00 {
		t.Errorf("total: esperaba 11600.00, obtuvo %.2f", data.Total)
	}
	if data.UUID != "AD662D33-6934-459C-A128-BDF0393E0F44" {
		t.Errorf("folio fiscal en mayúsculas: obtuvo %q", data.UUID)
	}
	if data.Fecha != "2026-08-15T10:30:00" {
		t.Errorf("fecha: obtuvo %q", data.Fecha)
	}
}

// Un comprobante 3.3 sin prefijo de espacio de nombres también se acepta
func TestParseCFDIWithoutPrefix(t *testing.T) {
	xml := `<Comprobante Version="3.3" Total="500.00">
		<Emisor Rfc="bbb010101bb2"/>
		<Receptor Rfc="CCC010101CC3"/>
	</Comprobante>`

	data, err := ParseCFDI(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if data.EmisorRFC != "BBB010101BB2" {
		t.Errorf("el RFC debe normalizarse a mayúsculas, obtuvo %q", data.EmisorRFC)
	}
	if data.UUID != "" {
		t.Errorf("sin timbre no hay folio fiscal, obtuvo %q", data.UUID)
	}
}

func TestParseCFDIRejectsNonCFDI(t *testing.T) {
	cases := []string{
		"no soy xml",
		"<factura><total>100</total></factura>",
		"<Comprobante Total=\"100\"/>",
	}
	for _, c := range cases {
		if _, err := ParseCFDI(strings.NewReader(c)); !errors.Is(err, ErrNotCFDI) {
			t.Errorf("esperaba ErrNotCFDI para %q, obtuvo %v", c, err)
		}
	}
}

func TestIsFiscalSlot(t *testing.T) {
	if !IsFiscalSlot("constancia-fiscal") {
		t.Error("constancia-fiscal debe admitir inspección de CFDI")
	}
	if IsFiscalSlot("id-oficial") {
		t.Error("id-oficial no es un espacio fiscal")
	}
}
