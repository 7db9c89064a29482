package notify

import "context"

// Message is a push notification addressed to device tokens.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

type Sender interface {
	Send(ctx context.Context, tokens []string, msg Message) error
}

// TokenSource resolves the registered device tokens of users.
type TokenSource interface {
	TokensForUsers(ctx context.Context, userIDs []string) []string
}

// Notifier delivers messages to users through their registered devices.
type Notifier struct {
	tokens TokenSource
	sender Sender
}

func New(tokens TokenSource, sender Sender) *Notifier {
	if sender == nil {
		sender = NoopSender{}
	}
	return &Notifier{tokens: tokens, sender: sender}
}

func (n *Notifier) NotifyUsers(ctx context.Context, userIDs []string, msg Message) error {
	if n == nil || len(userIDs) == 0 {
		return nil
	}
	tokens := n.tokens.TokensForUsers(ctx, userIDs)
	if len(tokens) == 0 {
		return nil
	}
	return n.sender.Send(ctx, tokens, msg)
}
