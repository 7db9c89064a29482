package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub/backend/internal/models"
)

type users map[string]models.User

func (u users) FindUserByUsername(_ context.Context, username string) (*models.User, bool) {
	user, ok := u[strings.ToLower(username)]
	if !ok {
		return nil, false
	}
	return &user, true
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	hash, err := HashPassword(pw)
	require.NoError(t, err)
	return hash
}

func TestAuthenticator_Login(t *testing.T) {
	a := Authenticator{Users: users{
		"ann":   {ID: "1", Username: "ann", PasswordHash: mustHash(t, "secret1"), Role: models.RoleStudent},
		"bob":   {ID: "2", Username: "bob", PasswordHash: mustHash(t, "secret2"), Role: models.RoleStudent, Banned: true},
		"carol": {ID: "3", Username: "carol", PasswordHash: mustHash(t, "secret3"), Role: models.RoleTeacher},
		"dan":   {ID: "4", Username: "dan", PasswordHash: mustHash(t, "secret4"), Role: models.RoleTeacher, Approved: true},
	}}
	ctx := context.Background()

	user, err := a.Login(ctx, " ann ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "1", user.ID)

	_, err = a.Login(ctx, "ann", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = a.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = a.Login(ctx, "bob", "secret2")
	assert.ErrorIs(t, err, ErrBanned)
	_, err = a.Login(ctx, "bob", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = a.Login(ctx, "carol", "secret3")
	assert.ErrorIs(t, err, ErrNotApproved)

	_, err = a.Login(ctx, "dan", "secret4")
	assert.NoError(t, err)
}

func TestDevProvider(t *testing.T) {
	claims, err := DevProvider{}.Verify(context.Background(), "dev:Ann@School.org:Ann")
	require.NoError(t, err)
	assert.Equal(t, "ann@school.org", claims.Email)
	assert.Equal(t, "Ann", claims.Name)

	_, err = DevProvider{}.Verify(context.Background(), "bearer-xyz")
	assert.Error(t, err)
}
