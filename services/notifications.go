package services

import (
	"context"

	"dripmateapi/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func stringMapToInterfaceMap(stringMap map[string]string) map[string]interface{} {
	interfaceMap := make(map[string]interface{})
	for key, value := range stringMap {
		interfaceMap[key] = value
	}
	return interfaceMap
}

// SendNotification pushes to every active token of the user. Tokens that FCM
// reports as unregistered are deactivated.
func SendNotification(ctx context.Context, fbApp *firebase.App, db *gorm.DB, logger *zap.Logger, userId uint, title string, message string, customData map[string]string) {
	if fbApp == nil {
		return
	}
	client, err := fbApp.Messaging(ctx)
	if err != nil {
		logger.Error("failed to init FCM client, push aborted", zap.String("title", title), zap.Error(err))
		return
	}

	var tokens []models.UserPushToken
	result := db.Model(models.UserPushToken{}).Where(
		"user_account_id = ? and active = ?", userId, true,
	).Find(&tokens)
	if result.Error != nil {
		logger.Error("failed to load push tokens", zap.Uint("user_id", userId), zap.Error(result.Error))
		return
	}
	if len(tokens) == 0 {
		return
	}

	var iosCustomData map[string]interface{}
	if customData != nil {
		iosCustomData = stringMapToInterfaceMap(customData)
	}

	messages := make([]*messaging.Message, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, &messaging.Message{
			Notification: &messaging.Notification{
				Title: title,
				Body:  message,
			},
			Data: customData,
			APNS: &messaging.APNSConfig{
				FCMOptions: &messaging.APNSFCMOptions{
					AnalyticsLabel: "dripmate",
				},
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						ContentAvailable: true,
						Alert: &messaging.ApsAlert{
							Title: title,
							Body:  message,
						},
						Sound: "default",
					},
					CustomData: iosCustomData,
				},
			},
			Android: &messaging.AndroidConfig{
				Notification: &messaging.AndroidNotification{
					Priority:  messaging.PriorityMax,
					ChannelID: "dripmate-high-priority",
				},
			},
			Token: token.Token,
		})
	}

	br, err := client.SendEach(ctx, messages)
	if err != nil {
		sentry.CaptureException(err)
		logger.Error("push send failed", zap.Uint("user_id", userId), zap.Error(err))
		return
	}

	for i, resp := range br.Responses {
		if resp == nil || resp.Success {
			continue
		}
		logger.Warn("push to token failed", zap.Uint("token_id", tokens[i].ID), zap.Error(resp.Error))
		if messaging.IsUnregistered(resp.Error) {
			db.Model(&tokens[i]).Update("active", false)
		}
	}
	logger.Info("notifications sent",
		zap.Uint("user_id", userId),
		zap.Int("success", br.SuccessCount),
		zap.Int("failed", br.FailureCount),
	)
}
