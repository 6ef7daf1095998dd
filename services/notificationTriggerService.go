package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

const notifyTimeout = 30 * time.Second

// Notifier turns domain events into push and email notifications. Every
// method is safe to run on its own goroutine after the response is written.
type Notifier struct {
	db    *goqu.Database
	push  *PushNotificationService
	email *EmailService
}

func NewNotifier(db *goqu.Database, push *PushNotificationService, email *EmailService) *Notifier {
	return &Notifier{db: db, push: push, email: email}
}

// NotifyPrayerReceived tells the owner of a prayer request that someone prayed
// for it. Praying for your own request sends nothing.
func (n *Notifier) NotifyPrayerReceived(ownerID, prayerRequestID, title, actorID, actorName string) {
	if n == nil || ownerID == actorID || !n.push.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	payload := NotificationPayload{
		Title: "Someone prayed for you",
		Body:  fmt.Sprintf("%s prayed for \"%s\"", actorName, title),
		Data: map[string]string{
			"type":            "prayer_received",
			"prayerRequestId": prayerRequestID,
		},
		Sound: "default",
	}

	if err := n.push.SendNotificationToUser(ctx, ownerID, payload); err != nil {
		zap.L().Warn("Failed to send prayer notification",
			zap.String("user_id", ownerID),
			zap.String("prayer_request_id", prayerRequestID),
			zap.Error(err),
		)
	}
}

// NotifyCounselingResponse tells a requester their counseling request was
// answered, by push and by email.
func (n *Notifier) NotifyCounselingResponse(userID, requestID, subject, status, response string) {
	if n == nil || (!n.push.Enabled() && !n.email.Enabled()) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if n.push.Enabled() {
		payload := NotificationPayload{
			Title:    "Counseling update",
			Body:     fmt.Sprintf("Your request \"%s\" has a response", subject),
			Priority: "high",
			Data: map[string]string{
				"type":                "counseling_response",
				"counselingRequestId": requestID,
			},
		}
		if err := n.push.SendNotificationToUser(ctx, userID, payload); err != nil {
			zap.L().Warn("Failed to send counseling push notification", zap.String("user_id", userID), zap.Error(err))
		}
	}

	if !n.email.Enabled() {
		return
	}

	var recipient struct {
		Name  string `db:"name"`
		Email string `db:"email"`
	}
	found, err := n.db.From("users").
		Select("name", "email").
		Where(goqu.C("id").Eq(userID)).
		ScanStructContext(ctx, &recipient)
	if err == nil && !found {
		err = errors.New("user not found")
	}
	if err != nil {
		zap.L().Warn("Failed to load counseling requester", zap.String("user_id", userID), zap.Error(err))
		return
	}

	if err := n.email.SendCounselingResponseEmail(recipient.Email, recipient.Name, subject, status, response); err != nil {
		zap.L().Warn("Failed to send counseling email", zap.String("user_id", userID), zap.Error(err))
	}
}

// NotifyWelcome sends the welcome email to a new user.
func (n *Notifier) NotifyWelcome(email, name string) {
	if n == nil || !n.email.Enabled() {
		return
	}

	if err := n.email.SendWelcomeEmail(email, name); err != nil {
		zap.L().Warn("Failed to send welcome email", zap.Error(err))
	}
}
