package FirebaseMessaging

import (
	"context"
	"log"
	"time"

	"MindLine/Models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	app             *firebase.App
	messagingClient *messaging.Client
)

// Setup initializes the Firebase app from the configured service account
// path, falling back to application default credentials.
func Setup(serviceAccountPath string) {
	ctx := context.Background()
	var err error

	if serviceAccountPath != "" {
		opt := option.WithCredentialsFile(serviceAccountPath)
		app, err = firebase.NewApp(ctx, nil, opt)
	} else {
		log.Println("No Firebase service account path set, using application default credentials")
		app, err = firebase.NewApp(ctx, nil)
	}

	if err != nil {
		log.Printf("Failed to initialize Firebase app, push notifications disabled: %v", err)
		return
	}

	messagingClient, err = app.Messaging(ctx)
	if err != nil {
		log.Printf("Failed to initialize Firebase messaging client, push notifications disabled: %v", err)
		return
	}

	log.Println("Firebase messaging client initialized successfully")
}

// SendMessage pushes a notification to one or more staff devices.
func SendMessage(req Models.NotificationRequest) error {
	if messagingClient == nil || len(req.Tokens) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notification := &messaging.Notification{
		Title: req.Title,
		Body:  req.Body,
	}
	android := &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound:    "default",
			Priority: messaging.PriorityHigh,
		},
	}
	apns := &messaging.APNSConfig{
		Headers: map[string]string{
			"apns-priority": "10",
		},
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Alert: &messaging.ApsAlert{
					Title: req.Title,
					Body:  req.Body,
				},
				Sound: "default",
			},
		},
	}

	if len(req.Tokens) == 1 {
		message := &messaging.Message{
			Token:        req.Tokens[0],
			Notification: notification,
			Android:      android,
			APNS:         apns,
		}
		if _, err := messagingClient.Send(ctx, message); err != nil {
			log.Printf("Error sending message: %v", err)
			return err
		}
		return nil
	}

	_, err := messagingClient.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens:       req.Tokens,
		Notification: notification,
		Android:      android,
		APNS:         apns,
	})
	if err != nil {
		log.Printf("Error sending multicast message: %v", err)
		return err
	}
	return nil
}
