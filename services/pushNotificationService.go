package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DevotionLoop/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const expoPushURL = "https://exp.host/--/api/v2/push/send"

var ErrPushDisabled = errors.New("push notifications are not configured")

type PushNotificationService struct {
	db         *goqu.Database
	fcmClient  *messaging.Client
	expoURL    string
	httpClient *http.Client
}

type NotificationPayload struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound,omitempty"`
	Badge    string            `json:"badge,omitempty"`
	Priority string            `json:"priority,omitempty"`
}

// NewPushNotificationService returns a service that reads device tokens from
// db. Nothing is sent until InitFCM succeeds.
func NewPushNotificationService(db *goqu.Database) *PushNotificationService {
	return &PushNotificationService{
		db:         db,
		expoURL:    expoPushURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// InitFCM connects the Firebase messaging client. An empty credentialsPath
// falls back to Application Default Credentials.
func (s *PushNotificationService) InitFCM(ctx context.Context, credentialsPath string) error {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize Firebase app, %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to get Firebase messaging client, %w", err)
	}

	s.fcmClient = client
	zap.L().Info("Push notification service initialized with FCM")
	return nil
}

func (s *PushNotificationService) Enabled() bool {
	return s != nil && s.fcmClient != nil
}

// SendNotificationToUser delivers payload to every device registered by userID.
// Failures on individual devices are logged and do not stop the others.
func (s *PushNotificationService) SendNotificationToUser(ctx context.Context, userID string, payload NotificationPayload) error {
	if !s.Enabled() {
		return ErrPushDisabled
	}

	var tokens []models.PushToken
	err := s.db.From("push_tokens").
		Where(goqu.C("user_id").Eq(userID)).
		ScanStructsContext(ctx, &tokens)
	if err != nil {
		return fmt.Errorf("failed to get push tokens for user %s, %w", userID, err)
	}

	if len(tokens) == 0 {
		return fmt.Errorf("no push tokens found for user %s", userID)
	}

	for _, token := range tokens {
		if err := s.sendToToken(ctx, token, payload); err != nil {
			zap.L().Warn("Failed to send push notification",
				zap.String("user_id", userID),
				zap.String("platform", token.Platform),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *PushNotificationService) sendToToken(ctx context.Context, token models.PushToken, payload NotificationPayload) error {
	if isExpoToken(token.Token) {
		return s.sendExpoNotification(ctx, token, payload)
	}

	id, err := s.fcmClient.Send(ctx, buildMessage(token, payload))
	if err != nil {
		return fmt.Errorf("failed to send FCM message, %w", err)
	}

	zap.L().Debug("Sent FCM notification", zap.String("message_id", id))
	return nil
}

func isExpoToken(token string) bool {
	return strings.HasPrefix(token, "ExponentPushToken[")
}

func buildMessage(token models.PushToken, payload NotificationPayload) *messaging.Message {
	message := &messaging.Message{
		Token: token.Token,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}

	switch token.Platform {
	case "ios":
		message.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: payload.Title,
						Body:  payload.Body,
					},
					Sound: payload.Sound,
				},
			},
		}

		if payload.Badge != "" {
			if badge, err := strconv.Atoi(payload.Badge); err == nil {
				message.APNS.Payload.Aps.Badge = &badge
			}
		}

		if payload.Priority == "high" {
			message.APNS.Headers = map[string]string{"apns-priority": "10"}
		}
	case "android":
		message.Android = &messaging.AndroidConfig{
			Priority: "normal",
			Notification: &messaging.AndroidNotification{
				Title: payload.Title,
				Body:  payload.Body,
				Sound: payload.Sound,
			},
		}

		if payload.Priority == "high" {
			message.Android.Priority = "high"
		}
	}

	return message
}

// sendExpoNotification goes through the Expo push API, used by Expo Go builds.
func (s *PushNotificationService) sendExpoNotification(ctx context.Context, token models.PushToken, payload NotificationPayload) error {
	body := map[string]any{
		"to":    token.Token,
		"title": payload.Title,
		"body":  payload.Body,
		"data":  payload.Data,
	}
	if payload.Sound != "" {
		body["sound"] = payload.Sound
	}
	if payload.Priority == "high" {
		body["priority"] = "high"
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal Expo message, %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.expoURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Expo notification, %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("expo push API returned status %d: %s", resp.StatusCode, msg)
	}

	return nil
}
