package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
	"video-portal/config"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers one message and returns the Message-ID it was sent with.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type smtpMailer struct {
	dialer    *gomail.Dialer
	fromName  string
	fromEmail string
}

func NewSMTPMailer(cfg config.SMTP) Mailer {
	return &smtpMailer{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
	}
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) (string, error) {
	messageID := NewMessageID(m.fromEmail)

	gm := gomail.NewMessage()
	gm.SetHeader("From", gm.FormatAddress(m.fromEmail, m.fromName))
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetHeader("Message-ID", messageID)
	gm.SetBody("text/html", msg.HTML)

	if err := m.dialer.DialAndSend(gm); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("to", msg.To).Msg("smtp send failed")
		return "", err
	}
	return messageID, nil
}

// NewMessageID builds an RFC 5322 message id on the sender's domain.
func NewMessageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = from[i+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

var playlistEmail = template.Must(template.New("playlist").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#222;">
  <h2>Your demo playlist is ready</h2>
  <p>We put together a set of demo videos for you. Watch them in order at your own pace.</p>
  <p><a href="{{.Link}}" style="display:inline-block;padding:10px 20px;background-color:#007bff;color:#fff;text-decoration:none;border-radius:5px;">Open playlist</a></p>
  <p>If the button does not work, copy this link into your browser:<br>{{.Link}}</p>
</body>
</html>`))

var resetEmail = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#222;">
  <h2>Reset your password</h2>
  <p>Follow the link below to choose a new password. It expires in one hour.</p>
  <p><a href="{{.Link}}">{{.Link}}</a></p>
  <p>If you did not ask for a reset you can ignore this email.</p>
</body>
</html>`))

type MailService interface {
	SendEmail(ctx context.Context, to, subject, html string) (string, error)
	SendPlaylistLink(ctx context.Context, to, link string) (string, error)
	SendPasswordReset(ctx context.Context, to, link string) (string, error)
}

type mailService struct {
	mailer Mailer
}

func NewMailService(mailer Mailer) MailService {
	return &mailService{mailer: mailer}
}

func (s *mailService) SendEmail(ctx context.Context, to, subject, html string) (string, error) {
	if _, err := mail.ParseAddress(to); err != nil {
		return "", fmt.Errorf("%w: invalid recipient %q", ErrInvalidInput, to)
	}
	id, err := s.mailer.Send(ctx, Message{To: to, Subject: subject, HTML: html})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMailFailed, err)
	}
	zerolog.Ctx(ctx).Info().Str("message_id", id).Msg("email sent")
	return id, nil
}

func (s *mailService) SendPlaylistLink(ctx context.Context, to, link string) (string, error) {
	body, err := render(playlistEmail, link)
	if err != nil {
		return "", err
	}
	return s.SendEmail(ctx, to, "Your demo playlist", body)
}

func (s *mailService) SendPasswordReset(ctx context.Context, to, link string) (string, error) {
	body, err := render(resetEmail, link)
	if err != nil {
		return "", err
	}
	return s.SendEmail(ctx, to, "Reset your password", body)
}

func render(tmpl *template.Template, link string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Link string }{Link: link}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
