package utils

import (
	"context"

	"dokta/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var FCMClient *messaging.Client

// FirebaseInit initializes the Firebase App and Messaging client.
// Without a credentials file push delivery stays disabled.
func FirebaseInit() {
	logger := GetLogger()
	if config.AppConfig.FirebaseCredentialsFile == "" {
		logger.Warn("firebase: no credentials file configured, push notifications disabled")
		return
	}

	ctx := context.Background()
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsFile)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		logger.Fatal("firebase: error initializing app", zap.Error(err))
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		logger.Fatal("firebase: error getting Messaging client", zap.Error(err))
	}

	FCMClient = client
}
