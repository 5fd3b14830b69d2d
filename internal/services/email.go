package services

import (
	"context"
	"fmt"
	"log/slog"

	"holidaymatch/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	siteURL  string
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
// siteURL is passed to templates to build links back to the app.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, siteURL string, logger *slog.Logger) domain.EmailService {
	if logger == nil {
		logger = slog.Default()
	}
	return &emailService{mailer: mailer, renderer: renderer, siteURL: siteURL, logger: logger}
}

// SendNotification renders the template named after the notification type and sends it.
func (s *emailService) SendNotification(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return fmt.Errorf("notification is nil")
	}
	if !n.Type.Valid() {
		return fmt.Errorf("unknown notification type %q", n.Type)
	}
	if n.To == "" {
		return fmt.Errorf("notification has no recipient")
	}
	data := &domain.NotificationEmailData{
		SenderName: n.SenderName,
		Date:       n.Date,
		SiteURL:    s.siteURL,
	}
	subject, htmlBody, textBody, err := s.renderer.Render(string(n.Type), data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", n.Type, err)
	}
	if err := s.mailer.Send(ctx, n.To, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", n.Type, err)
	}
	s.logger.InfoContext(ctx, "notification email sent", "type", string(n.Type), "to", n.To)
	return nil
}
