package models

import (
	"errors"
	"testing"
)

// Verifica que para toda combinación producto/cliente la lista resuelta no
// tenga duplicados y conserve el orden base → producto → corporativos.
func TestResolveRequiredDocumentsOrderAndUniqueness(t *testing.T) {
	products := []ProductType{ProductSimple, ProductRevolvente, ProductArrendamiento}
	clients := []ClientType{ClientPersonal, ClientEmpresarial}

	for _, p := range products {
		for _, c := range clients {
			slots, err := ResolveRequiredDocuments(p, c, "")
			if err != nil {
				t.Fatalf("ResolveRequiredDocuments(%s, %s) regresó error: %v", p, c, err)
			}

			// Sin duplicados
			seen := make(map[string]bool)
			for _, s := range slots {
				if seen[s.ID] {
					t.Errorf("%s/%s: espacio duplicado %q", p, c, s.ID)
				}
				seen[s.ID] = true
			}

			// Los base van primero y en su orden de declaración
			for i, base := range baseSlots {
				if slots[i].ID != base.ID {
					t.Errorf("%s/%s: posición %d esperaba %q, obtuvo %q", p, c, i, base.ID, slots[i].ID)
				}
			}

			// Los corporativos van al final solo para empresarial
			if c == ClientEmpresarial {
				tail := slots[len(slots)-len(corporateSlots):]
				for i, corp := range corporateSlots {
					if tail[i].ID != corp.ID {
						t.Errorf("%s/empresarial: corporativo %d esperaba %q, obtuvo %q", p, i, corp.ID, tail[i].ID)
					}
				}
			} else {
				for _, s := range slots {
					for _, corp := range corporateSlots {
						if s.ID == corp.ID {
							t.Errorf("%s/personal: no debe incluir corporativo %q", p, s.ID)
						}
					}
				}
			}
		}
	}
}

func TestResolveSimplePersonal(t *testing.T) {
	slots, err := ResolveRequiredDocuments(ProductSimple, ClientPersonal, "")
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}

	expected := []string{
		"id-oficial",
		"comprobante-domicilio",
		"comprobante-ingresos",
		"declaracion-impuestos",
		"estado-cuenta",
		"buro-credito",
	}
	if len(slots) != len(expected) {
		t.Fatalf("esperaba %d espacios, obtuvo %d", len(expected), len(slots))
	}
	for i, id := range expected {
		if slots[i].ID != id {
			t.Errorf("posición %d: esperaba %q, obtuvo %q", i, id, slots[i].ID)
		}
	}
}

// arrendamiento/empresarial debe ser superconjunto estricto de
// arrendamiento/personal, agregando exactamente los cuatro corporativos.
func TestResolveLeasingBusinessSuperset(t *testing.T) {
	personal, err := ResolveRequiredDocuments(ProductArrendamiento, ClientPersonal, "")
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	business, err := ResolveRequiredDocuments(ProductArrendamiento, ClientEmpresarial, "")
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}

	if len(business) != len(personal)+len(corporateSlots) {
		t.Fatalf("esperaba %d espacios para empresarial, obtuvo %d", len(personal)+len(corporateSlots), len(business))
	}
	for i, s := range personal {
		if business[i].ID != s.ID {
			t.Errorf("posición %d: esperaba %q, obtuvo %q", i, s.ID, business[i].ID)
		}
	}
	extra := business[len(personal):]
	wantExtra := []string{"acta-constitutiva", "poder-representante", "estados-financieros", "constancia-fiscal"}
	for i, id := range wantExtra {
		if extra[i].ID != id {
			t.Errorf("corporativo %d: esperaba %q, obtuvo %q", i, id, extra[i].ID)
		}
	}
}

func TestResolveUnknownProductFallsBackToBase(t *testing.T) {
	slots, err := ResolveRequiredDocuments("hipotecario", ClientPersonal, "")
	if !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("esperaba ErrUnknownProduct, obtuvo %v", err)
	}
	if len(slots) != len(baseSlots) {
		t.Fatalf("esperaba solo los %d documentos base, obtuvo %d", len(baseSlots), len(slots))
	}

	// Un cliente empresarial con producto desconocido conserva los corporativos
	slots, err = ResolveRequiredDocuments("hipotecario", ClientEmpresarial, "")
	if !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("esperaba ErrUnknownProduct, obtuvo %v", err)
	}
	if len(slots) != len(baseSlots)+len(corporateSlots) {
		t.Fatalf("esperaba base más corporativos, obtuvo %d espacios", len(slots))
	}
}

func TestSlotsByCategory(t *testing.T) {
	slots, _ := ResolveRequiredDocuments(ProductArrendamiento, ClientEmpresarial, "")
	grouped := SlotsByCategory(slots)

	total := 0
	for _, g := range grouped {
		total += len(g)
	}
	if total != len(slots) {
		t.Errorf("la agrupación perdió espacios: %d contra %d", total, len(slots))
	}
	if len(grouped[CategoriaIdentificacion]) != 2 {
		t.Errorf("esperaba 2 espacios de identificación, obtuvo %d", len(grouped[CategoriaIdentificacion]))
	}
	if len(grouped[CategoriaGarantias]) != 1 {
		t.Errorf("esperaba 1 espacio de garantías, obtuvo %d", len(grouped[CategoriaGarantias]))
	}
}
