package auth

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// DevProvider accepts tokens of the form dev:<email>[:<name>] for local testing.
type DevProvider struct{}

func (DevProvider) Verify(_ context.Context, token string) (Claims, error) {
	if token == "" {
		return Claims{}, errors.New("missing token")
	}
	if !strings.HasPrefix(token, "dev:") {
		return Claims{}, errors.New("invalid dev token")
	}

	parts := strings.SplitN(token, ":", 3)
	claims := Claims{UID: "dev-user"}
	if len(parts) >= 2 && parts[1] != "" {
		claims.Email = strings.ToLower(parts[1])
		claims.UID = "dev:" + claims.Email
	}
	if len(parts) == 3 {
		claims.Name = parts[2]
	}
	if claims.Email == "" {
		return Claims{}, errors.New("dev token missing email")
	}
	return claims, nil
}
