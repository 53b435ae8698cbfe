package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/repository"

	"github.com/go-redis/redis/v8"
)

// NotificationSink receives sharing events addressed to a user. Sinks must
// not fail a mutation: delivery problems are theirs to log and swallow.
type NotificationSink interface {
	Notify(ctx context.Context, notification *models.Notification)
}

// RedisNotifier publishes notifications on a per-user Redis channel that the
// realtime gateway subscribes to.
type RedisNotifier struct {
	client *redis.Client
	logger *pkg.Logger
}

// NewRedisNotifier creates a Redis-backed notification sink
func NewRedisNotifier(client *redis.Client, logger *pkg.Logger) *RedisNotifier {
	return &RedisNotifier{
		client: client,
		logger: logger.WithPrefix("notify"),
	}
}

// Notify publishes the notification as JSON
func (n *RedisNotifier) Notify(ctx context.Context, notification *models.Notification) {
	notification.CreatedAt = time.Now()

	payload, err := json.Marshal(notification)
	if err != nil {
		n.logger.Error("failed to marshal notification", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	channel := fmt.Sprintf("notifications:%s", notification.UserID.Hex())
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		n.logger.Error("failed to publish notification", map[string]interface{}{
			"channel": channel,
			"error":   err.Error(),
		})
	}
}

// FanoutSink delivers each notification to every wrapped sink
type FanoutSink []NotificationSink

// NewFanoutSink combines sinks into one
func NewFanoutSink(sinks ...NotificationSink) FanoutSink {
	return FanoutSink(sinks)
}

// Notify forwards the notification to every sink
func (f FanoutSink) Notify(ctx context.Context, notification *models.Notification) {
	for _, sink := range f {
		sink.Notify(ctx, notification)
	}
}

// EmailSink mails sharing activity to the addressed user. Like every sink it
// logs and swallows failures so a mail outage never fails a share mutation.
type EmailSink struct {
	users  repository.UserRepository
	email  EmailService
	logger *pkg.Logger
}

// NewEmailSink creates an email-backed notification sink
func NewEmailSink(users repository.UserRepository, email EmailService, logger *pkg.Logger) *EmailSink {
	return &EmailSink{
		users:  users,
		email:  email,
		logger: logger.WithPrefix("notify"),
	}
}

// Notify resolves the user's address and sends the notification as plain text
func (s *EmailSink) Notify(ctx context.Context, notification *models.Notification) {
	user, err := s.users.GetByID(ctx, notification.UserID)
	if err != nil {
		s.logger.Error("failed to resolve notification recipient", map[string]interface{}{
			"userId": notification.UserID.Hex(),
			"error":  err.Error(),
		})
		return
	}

	if err := s.email.SendShareNotificationEmail(ctx, user.Email, emailSubject(notification.Type), notification.Message); err != nil {
		s.logger.Error("failed to send notification email", map[string]interface{}{
			"userId": notification.UserID.Hex(),
			"error":  err.Error(),
		})
	}
}

func emailSubject(t models.NotificationType) string {
	switch t {
	case models.NotificationFolderShareReceived:
		return "A folder was shared with you"
	case models.NotificationFolderShareAccepted:
		return "Your folder share was accepted"
	case models.NotificationFolderShareRejected:
		return "Your folder share was declined"
	case models.NotificationFolderShareRevoked:
		return "A folder share was revoked"
	case models.NotificationFileShareReceived:
		return "A file was shared with you"
	case models.NotificationFileShareAccepted:
		return "Your file share was accepted"
	case models.NotificationFileShareRejected:
		return "Your file share was declined"
	case models.NotificationFileShareRevoked:
		return "A file share was revoked"
	default:
		return "Sharing activity"
	}
}

// RecordingSink keeps notifications in memory. Used in tests.
type RecordingSink struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

// NewRecordingSink creates an empty recording sink
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Notify records the notification
func (r *RecordingSink) Notify(ctx context.Context, notification *models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *notification
	r.notifications = append(r.notifications, &clone)
}

// Notifications returns everything recorded so far
func (r *RecordingSink) Notifications() []*models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}
