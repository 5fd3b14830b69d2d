package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// NotificationEmailData is the template data for notification emails.
type NotificationEmailData struct {
	SenderName string
	Date       HolidayDate
	SiteURL    string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendNotification(ctx context.Context, n *Notification) error
}
