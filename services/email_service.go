package services

import (
	"fmt"
	"time"

	"github.com/SeraphMX/grupofinancial-hub-sub000/config"
	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"gopkg.in/gomail.v2"
)

// EmailService provee métodos para enviar correos de notificación
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	config *config.Config
}

// NewEmailService crea una nueva instancia de EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
		config: cfg,
	}
}

// SendEmail envía un correo
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("error al enviar correo: %v", err)
	}

	return nil
}

// SendRequestCreatedNotification notifica la creación de una solicitud
func (s *EmailService) SendRequestCreatedNotification(to, folio string, amount float64, termMonths int) error {
	subject := "Hemos recibido tu solicitud de crédito"
	body := fmt.Sprintf(`
		<h2>Solicitud recibida</h2>
		<p>Folio: %s</p>
		<p>Monto solicitado: $%.2f</p>
		<p>Plazo: %d meses</p>
		<p>Fecha: %s</p>
		<p>Un asesor revisará tu solicitud y te pediremos la documentación necesaria.</p>
	`, folio, amount, termMonths, time.Now().Format("02/01/2006 15:04"))

	return s.SendEmail(to, subject, body)
}

// SendRequestStatusNotification notifica un cambio de estado de la solicitud
func (s *EmailService) SendRequestStatusNotification(to, folio string, status models.RequestStatus) error {
	statusText := map[models.RequestStatus]string{
		models.RequestStatusEnRevision:    "en revisión",
		models.RequestStatusDocumentacion: "en espera de documentación",
		models.RequestStatusAprobada:      "aprobada",
		models.RequestStatusRechazada:     "rechazada",
		models.RequestStatusCancelada:     "cancelada",
	}

	text, ok := statusText[status]
	if !ok {
		text = string(status)
	}

	subject := fmt.Sprintf("Tu solicitud %s está %s", folio, text)
	body := fmt.Sprintf(`
		<h2>Actualización de tu solicitud</h2>
		<p>Tu solicitud con folio <b>%s</b> ahora está <b>%s</b>.</p>
		<p>Puedes consultar el detalle en tu portal de cliente.</p>
	`, folio, text)

	return s.SendEmail(to, subject, body)
}

// SendDocumentRejectedNotification notifica el rechazo de un documento
func (s *EmailService) SendDocumentRejectedNotification(to, folio, documentName string, cause models.RejectCause) error {
	causeText := map[models.RejectCause]string{
		models.RejectCauseIlegible:   "el archivo es ilegible",
		models.RejectCauseIncompleto: "el documento está incompleto",
		models.RejectCauseVencido:    "el documento está vencido",
		models.RejectCauseIncorrecto: "el documento no corresponde",
		models.RejectCauseOtro:       "requiere correcciones",
	}

	text, ok := causeText[cause]
	if !ok {
		text = "requiere correcciones"
	}

	subject := "Un documento de tu solicitud fue rechazado"
	body := fmt.Sprintf(`
		<h2>Documento rechazado</h2>
		<p>Solicitud: %s</p>
		<p>Documento: %s</p>
		<p>Motivo: %s</p>
		<p>Por favor sube un nuevo archivo desde tu portal de cliente.</p>
	`, folio, documentName, text)

	return s.SendEmail(to, subject, body)
}
