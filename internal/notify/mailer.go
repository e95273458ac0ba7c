package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/city_alert/internal/metrics"
)

// implicitTLSPort - SMTPS, TLS с первого байта. Для остальных портов используется STARTTLS.
const implicitTLSPort = 465

var (
	ErrNotConfigured = errors.New("smtp settings are incomplete")
	ErrAuthFailed    = errors.New("smtp authentication failed")
)

// SMTPConfig - параметры подключения к SMTP-релею
type SMTPConfig struct {
	Server      string
	Port        int
	Username    string
	Password    string
	SenderEmail string
	SenderName  string
	Timeout     time.Duration
}

// Complete сообщает, что заданы все параметры, без которых письмо не отправить
func (c SMTPConfig) Complete() bool {
	return c.Server != "" && c.Port != 0 && c.Username != "" && c.Password != "" && c.SenderEmail != ""
}

// UseImplicitTLS - единственное место, где решается, как шифровать соединение
func UseImplicitTLS(port int) bool {
	return port == implicitTLSPort
}

// Message - письмо из текстовой и HTML-частей
type Message struct {
	Template string
	To       string
	Subject  string
	Text     string
	HTML     string
}

type sendFunc func(ctx context.Context, cfg SMTPConfig, to string, body []byte) error

// Mailer отправляет письма. Ошибки не пробрасываются: Send возвращает только признак успеха.
type Mailer struct {
	cfg    SMTPConfig
	logger *logrus.Logger
	send   sendFunc
}

func NewMailer(cfg SMTPConfig, logger *logrus.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: logger,
		send:   sendSMTP,
	}
}

// Send отправляет письмо; false при неполной конфигурации или любой ошибке
func (m *Mailer) Send(ctx context.Context, msg Message) bool {
	log := m.logger.WithFields(logrus.Fields{
		"component": "mailer",
		"template":  msg.Template,
		"recipient": msg.To,
	})

	if !m.cfg.Complete() {
		log.Error("Email configuration incomplete, missing required settings")
		metrics.EmailsSent.WithLabelValues(msg.Template, "not_configured").Inc()
		return false
	}

	body, err := buildMessage(m.cfg, msg)
	if err != nil {
		log.WithError(err).Error("Failed to build email message")
		metrics.EmailsSent.WithLabelValues(msg.Template, "error").Inc()
		return false
	}

	log.WithFields(logrus.Fields{
		"smtp_server":  m.cfg.Server,
		"smtp_port":    m.cfg.Port,
		"implicit_tls": UseImplicitTLS(m.cfg.Port),
	}).Debug("Sending email")

	if err := m.send(ctx, m.cfg, msg.To, body); err != nil {
		var protoErr *textproto.Error
		switch {
		case errors.Is(err, ErrAuthFailed):
			log.WithError(err).Error("SMTP authentication failed, check email credentials and app password")
			metrics.EmailsSent.WithLabelValues(msg.Template, "auth_failed").Inc()
		case errors.As(err, &protoErr):
			log.WithError(err).WithField("smtp_code", protoErr.Code).Error("SMTP error occurred")
			metrics.EmailsSent.WithLabelValues(msg.Template, "smtp_error").Inc()
		default:
			log.WithError(err).Error("Failed to send email")
			metrics.EmailsSent.WithLabelValues(msg.Template, "error").Inc()
		}
		return false
	}

	log.Info("Email sent successfully")
	metrics.EmailsSent.WithLabelValues(msg.Template, "sent").Inc()
	return true
}

func buildMessage(cfg SMTPConfig, msg Message) ([]byte, error) {
	from := mail.Address{Name: cfg.SenderName, Address: cfg.SenderEmail}
	boundary := "cityalert_" + uuid.NewString()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	parts := []struct {
		contentType string
		body        string
	}{
		{"text/plain", msg.Text},
		{"text/html", msg.HTML},
	}
	for _, part := range parts {
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Type: %s; charset=UTF-8\r\n", part.contentType)
		buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		qp := quotedprintable.NewWriter(&buf)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
		buf.WriteString("\r\n")
	}
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes(), nil
}

func sendSMTP(ctx context.Context, cfg SMTPConfig, to string, body []byte) error {
	addr := net.JoinHostPort(cfg.Server, strconv.Itoa(cfg.Port))
	tlsConfig := &tls.Config{
		ServerName: cfg.Server,
		MinVersion: tls.VersionTLS12,
	}
	dialer := &net.Dialer{Timeout: cfg.Timeout}

	var (
		conn net.Conn
		err  error
	)
	if UseImplicitTLS(cfg.Port) {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if cfg.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(cfg.Timeout))
	}

	client, err := smtp.NewClient(conn, cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if !UseImplicitTLS(cfg.Port) {
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Server)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	if err := client.Mail(cfg.SenderEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := writer.Write(body); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// Письмо уже принято сервером, ошибка QUIT ни на что не влияет
	_ = client.Quit()
	return nil
}
