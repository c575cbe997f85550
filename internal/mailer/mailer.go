package mailer

import (
	"context"
	"errors"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/drstein77/batterycatalog/internal/models"
)

// DateLayout formats the submission time in notification bodies.
const DateLayout = "2006-01-02 15:04:05"

var ErrNotConfigured = errors.New("mailer is not configured")

// Config holds the SMTP account and the notification addresses.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromEmail string
	FromName  string
	To        string
}

// Sender delivers composed messages.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends contact notifications over SMTP.
type Mailer struct {
	cfg    Config
	sender Sender
}

func New(cfg Config) *Mailer {
	return NewWithSender(cfg, gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password))
}

// NewWithSender builds a Mailer on top of a custom delivery backend.
func NewWithSender(cfg Config, sender Sender) *Mailer {
	return &Mailer{cfg: cfg, sender: sender}
}

// Enabled reports whether the SMTP host and both addresses are known.
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.FromEmail != "" && m.cfg.To != ""
}

// NotifyContact e-mails a stored contact message to the site owner.
func (m *Mailer) NotifyContact(ctx context.Context, msg models.ContactMessage) error {
	if !m.Enabled() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.sender.DialAndSend(m.compose(msg))
}

func (m *Mailer) compose(msg models.ContactMessage) *gomail.Message {
	gm := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	gm.SetAddressHeader("From", m.cfg.FromEmail, m.cfg.FromName)
	gm.SetHeader("To", m.cfg.To)
	if msg.Email != "" {
		gm.SetHeader("Reply-To", msg.Email)
	}
	gm.SetHeader("Subject", Subject(msg))
	gm.SetBody("text/plain", Body(msg))
	return gm
}

// Subject is the notification subject line.
func Subject(msg models.ContactMessage) string {
	return "Nuevo mensaje de contacto: " + msg.Subject
}

// Body renders the plain-text notification.
func Body(msg models.ContactMessage) string {
	phone := msg.Phone
	if phone == "" {
		phone = "No proporcionado"
	}

	var b strings.Builder
	b.WriteString("Has recibido un nuevo mensaje desde el formulario de contacto.\n\n")
	b.WriteString("Nombre: " + msg.Name + "\n")
	b.WriteString("Email: " + msg.Email + "\n")
	b.WriteString("Teléfono: " + phone + "\n")
	b.WriteString("Asunto: " + msg.Subject + "\n")
	b.WriteString("Mensaje:\n" + msg.Message + "\n\n")
	b.WriteString("IP: " + msg.IPAddress + "\n")
	b.WriteString("Fecha: " + msg.CreatedAt.Format(DateLayout) + "\n")
	b.WriteString("ID: " + models.FormatID(msg.ID) + "\n")
	return b.String()
}
