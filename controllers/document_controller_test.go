package controllers

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"github.com/SeraphMX/grupofinancial-hub-sub000/utils"
)

func ticketFor(key []byte, requestID, userID uint, role models.UserRole, expires int64) string {
	data := fmt.Sprintf("%d:%d:%s:%d", requestID, userID, role, expires)
	return base64.URLEncoding.EncodeToString([]byte(data)) + "." + utils.GenerateHMAC(data, key)
}

func TestParseEventTicketRoundTrip(t *testing.T) {
	key := []byte("llave-de-prueba")
	c := NewDocumentController(nil, nil, key)

	ticket := ticketFor(key, 42, 7, models.RoleCliente, time.Now().Add(time.Minute).Unix())

	requestID, userID, role, err := c.parseEventTicket(ticket)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if requestID != 42 || userID != 7 || role != models.RoleCliente {
		t.Errorf("identidad incorrecta: solicitud %d, usuario %d, rol %s", requestID, userID, role)
	}
}

func TestParseEventTicketRejectsExpired(t *testing.T) {
	key := []byte("llave-de-prueba")
	c := NewDocumentController(nil, nil, key)

	ticket := ticketFor(key, 42, 7, models.RoleCliente, time.Now().Add(-time.Minute).Unix())
	if _, _, _, err := c.parseEventTicket(ticket); err == nil {
		t.Error("un boleto vencido debe rechazarse")
	}
}

func TestParseEventTicketRejectsTampering(t *testing.T) {
	key := []byte("llave-de-prueba")
	c := NewDocumentController(nil, nil, key)

	ticket := ticketFor(key, 42, 7, models.RoleCliente, time.Now().Add(time.Minute).Unix())

	// Alteramos la carga conservando la firma original
	_, mac, _ := strings.Cut(ticket, ".")
	forged := fmt.Sprintf("42:7:%s:%d", models.RoleAdmin, time.Now().Add(time.Minute).Unix())
	tampered := base64.URLEncoding.EncodeToString([]byte(forged)) + "." + mac
	if _, _, _, err := c.parseEventTicket(tampered); err == nil {
		t.Error("un boleto alterado debe rechazarse")
	}

	// Firmado con otra llave
	other := ticketFor([]byte("otra-llave"), 42, 7, models.RoleCliente, time.Now().Add(time.Minute).Unix())
	if _, _, _, err := c.parseEventTicket(other); err == nil {
		t.Error("un boleto de otra llave debe rechazarse")
	}

	if _, _, _, err := c.parseEventTicket("basura-sin-punto"); err == nil {
		t.Error("un boleto mal formado debe rechazarse")
	}
}
