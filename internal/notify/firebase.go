//go:build firebase
// +build firebase

package notify

import (
	"context"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type FirebaseSender struct {
	client *messaging.Client
}

func NewFirebaseSender(ctx context.Context, credentialsFile string) (Sender, error) {
	if strings.TrimSpace(credentialsFile) == "" {
		return NoopSender{}, nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &FirebaseSender{client: client}, nil
}

func (s *FirebaseSender) Send(ctx context.Context, tokens []string, m Message) error {
	if s == nil || s.client == nil || len(tokens) == 0 {
		return nil
	}
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: m.Title,
			Body:  m.Body,
		},
		Data: m.Data,
	}
	return retry(ctx, 3, 300*time.Millisecond, func() error {
		_, err := s.client.SendEachForMulticast(ctx, msg)
		return err
	})
}
