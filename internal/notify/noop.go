package notify

import "context"

type NoopSender struct{}

func (NoopSender) Send(_ context.Context, _ []string, _ Message) error {
	return nil
}
