package auth

import "context"

// Claims is the identity asserted by an external token provider.
type Claims struct {
	UID   string
	Email string
	Name  string
}

// Provider verifies identity tokens issued outside this service.
type Provider interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
