package services

import (
	"errors"
	"math"
	"testing"

	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
)

func TestCalculateAnnuityPayment(t *testing.T) {
	// 100,000 al 12% anual a 12 meses: pago conocido de la fórmula de anualidad
	payment := calculateAnnuityPayment(100_000, 12.0, 12)
	if math.Abs(payment-8884.88) > 0.01 {
		t.Errorf("esperaba pago de 8884.88, obtuvo %.2f", payment)
	}

	// Tasa cero degrada a pago lineal
	payment = calculateAnnuityPayment(120_000, 0, 12)
	if payment != 10_000 {
		t.Errorf("con tasa cero esperaba 10000, obtuvo %.2f", payment)
	}
}

func TestLookupTerms(t *testing.T) {
	terms, err := lookupTerms(models.ProductSimple, models.CondicionConGarantia)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if terms.AnnualRate != 16.0 {
		t.Errorf("simple con garantía: esperaba tasa 16, obtuvo %.1f", terms.AnnualRate)
	}

	// La subvariante ajusta la tasa
	terms, err = lookupTerms(models.ProductSimple, models.CondicionSinGarantia)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if terms.AnnualRate != 22.0 {
		t.Errorf("simple sin garantía: esperaba tasa 22, obtuvo %.1f", terms.AnnualRate)
	}

	if _, err := lookupTerms("hipotecario", ""); !errors.Is(err, models.ErrUnknownProduct) {
		t.Errorf("producto desconocido: esperaba ErrUnknownProduct, obtuvo %v", err)
	}

	if _, err := lookupTerms(models.ProductRevolvente, models.CondicionConGarantia); err == nil {
		t.Error("revolvente no admite subvariante con garantía")
	}
}

func TestQuoteLimits(t *testing.T) {
	svc := NewRequestService(nil, nil)

	// Monto por debajo del mínimo del producto
	_, err := svc.Quote(QuoteRequestDTO{
		ProductType: "simple",
		Conditions:  models.CondicionConGarantia,
		Amount:      50_000,
		TermMonths:  12,
	})
	if err == nil {
		t.Error("esperaba rechazo por monto fuera de límites")
	}

	// Plazo por encima del máximo
	_, err = svc.Quote(QuoteRequestDTO{
		ProductType: "revolvente",
		Amount:      500_000,
		TermMonths:  48,
	})
	if err == nil {
		t.Error("esperaba rechazo por plazo fuera de límites")
	}

	quote, err := svc.Quote(QuoteRequestDTO{
		ProductType: "arrendamiento",
		Conditions:  models.CondicionArrPuro,
		Amount:      1_000_000,
		TermMonths:  36,
	})
	if err != nil {
		t.Fatalf("cotización válida falló: %v", err)
	}
	if quote.AnnualRate != 15.0 {
		t.Errorf("esperaba tasa 15, obtuvo %.1f", quote.AnnualRate)
	}
	if quote.MonthlyPayment <= 0 {
		t.Error("el pago mensual debe ser positivo")
	}
	if math.Abs(quote.TotalPayment-quote.MonthlyPayment*36) > 0.5 {
		t.Error("el total debe corresponder al pago mensual por el plazo")
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.RequestStatus
		want     bool
	}{
		{models.RequestStatusNueva, models.RequestStatusEnRevision, true},
		{models.RequestStatusNueva, models.RequestStatusCancelada, true},
		{models.RequestStatusNueva, models.RequestStatusAprobada, false},
		{models.RequestStatusEnRevision, models.RequestStatusDocumentacion, true},
		{models.RequestStatusDocumentacion, models.RequestStatusAprobada, true},
		{models.RequestStatusDocumentacion, models.RequestStatusEnRevision, true},
		{models.RequestStatusAprobada, models.RequestStatusCancelada, false},
		{models.RequestStatusRechazada, models.RequestStatusEnRevision, false},
		{models.RequestStatusCancelada, models.RequestStatusCancelada, false},
	}

	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, esperaba %v", c.from, c.to, got, c.want)
		}
	}
}
