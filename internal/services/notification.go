package services

import (
	"context"
	"errors"
	"log/slog"

	"holidaymatch/internal/domain"
)

// Notifier turns domain events into notifications for the dispatcher. It looks up
// the recipient's email and preferences and the sender's first name, and drops the
// event when any of them rule the email out. Failures are logged, never returned.
type Notifier struct {
	users      domain.UserRepository
	profiles   domain.ProfileRepository
	dispatcher domain.NotificationDispatcher
	logger     *slog.Logger
}

// NewNotifier returns a Notifier that hands accepted events to dispatcher.
func NewNotifier(users domain.UserRepository, profiles domain.ProfileRepository, dispatcher domain.NotificationDispatcher, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		users:      users,
		profiles:   profiles,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Notify emits a notification of type t from senderID to recipientID.
func (n *Notifier) Notify(ctx context.Context, t domain.NotificationType, recipientID, senderID string, date domain.HolidayDate) {
	if n == nil || n.dispatcher == nil {
		return
	}
	log := n.logger.With("type", string(t), "recipient_id", recipientID, "sender_id", senderID)

	recipient, err := n.users.GetByID(ctx, recipientID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.WarnContext(ctx, "notification skipped: recipient lookup failed", "err", err)
		}
		return
	}
	if recipient.Email == "" {
		return
	}

	prefs := domain.NotificationPreferences{}
	if profile, err := n.profiles.GetByUserID(ctx, recipientID); err == nil {
		prefs = profile.Notifications
	} else if !errors.Is(err, domain.ErrNotFound) {
		log.WarnContext(ctx, "notification skipped: recipient profile lookup failed", "err", err)
		return
	}
	if !prefs.Wants(t) {
		return
	}

	sender, err := n.profiles.GetByUserID(ctx, senderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.WarnContext(ctx, "notification skipped: sender profile lookup failed", "err", err)
		}
		return
	}

	notification := &domain.Notification{
		To:         recipient.Email,
		Type:       t,
		SenderName: sender.FirstName,
		Date:       date,
	}
	if err := n.dispatcher.Dispatch(ctx, notification); err != nil {
		log.WarnContext(ctx, "notification dispatch failed", "err", err)
	}
}
