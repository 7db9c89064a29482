package store

import (
	"context"

	"schoolhub/backend/internal/models"
)

func (s *Store) DeviceTokens(ctx context.Context, userID string) []models.DeviceToken {
	tokens, _ := s.loadDeviceTokens(ctx, userID)
	return tokens
}

func (s *Store) loadDeviceTokens(ctx context.Context, userID string) ([]models.DeviceToken, error) {
	tokens, _, err := Load[[]models.DeviceToken](ctx, s, DeviceTokensKey(userID))
	if err != nil || tokens == nil {
		return []models.DeviceToken{}, err
	}
	return tokens, nil
}

// UpsertDeviceToken registers token for the user, replacing the platform if it
// was already registered.
func (s *Store) UpsertDeviceToken(ctx context.Context, userID string, token models.DeviceToken) error {
	tokens, err := s.loadDeviceTokens(ctx, userID)
	if err != nil {
		return err
	}
	for i := range tokens {
		if tokens[i].Token == token.Token {
			tokens[i].Platform = token.Platform
			return s.Set(ctx, DeviceTokensKey(userID), tokens)
		}
	}
	return s.Set(ctx, DeviceTokensKey(userID), append(tokens, token))
}

// TokensForUsers flattens the registered tokens of every listed user.
func (s *Store) TokensForUsers(ctx context.Context, userIDs []string) []string {
	var out []string
	for _, userID := range userIDs {
		for _, token := range s.DeviceTokens(ctx, userID) {
			out = append(out, token.Token)
		}
	}
	return out
}
