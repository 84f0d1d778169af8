package notification

import (
	"context"
	"fmt"
	"strings"

	"dokta/models"
	"dokta/services"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

func (s *DefaultNotificationService) RegisterToken(ctx context.Context, req models.RegisterTokenRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return services.NewValidationError("user_id", "user is required")
	}
	if strings.TrimSpace(req.ExpoToken) == "" {
		return services.NewValidationError("expo_token", "token is required")
	}
	if err := s.Users.SetFCMToken(ctx, req.UserID, req.ExpoToken, req.DeviceInfo.Platform); err != nil {
		return err
	}
	s.Logger.Info("push token registered",
		zap.String("userID", req.UserID),
		zap.String("platform", req.DeviceInfo.Platform),
		zap.String("device", req.DeviceInfo.DeviceName))
	return nil
}

// SendUserPushNotification looks up a user's token and sends a high-priority push.
func (s *DefaultNotificationService) SendUserPushNotification(
	ctx context.Context,
	userID, title, body string,
	data map[string]string,
) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		return ErrNoPushTarget
	}
	if s.FCM == nil {
		s.Logger.Debug("push delivery disabled", zap.String("userID", userID), zap.String("title", title))
		return nil
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "appointments",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	id, err := s.FCM.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: failed to send FCM message: %w", err)
	}
	s.Logger.Debug("push sent", zap.String("userID", userID), zap.String("messageID", id))
	return nil
}
