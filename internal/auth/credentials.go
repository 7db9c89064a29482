package auth

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"schoolhub/backend/internal/models"
)

var (
	ErrBadCredentials = errors.New("invalid username or password")
	ErrBanned         = errors.New("this account has been banned")
	ErrNotApproved    = errors.New("teacher account is awaiting admin approval")
)

const MinPasswordLength = 6

type UserFinder interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, bool)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type Authenticator struct {
	Users UserFinder
}

// Login matches the stored credentials and rejects accounts that may not hold
// a session. Ban and approval state are only revealed after the password matches.
func (a Authenticator) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, ok := a.Users.FindUserByUsername(ctx, strings.TrimSpace(username))
	if !ok || !CheckPassword(user.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	if err := CanHoldSession(*user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginWithClaims resolves an externally verified identity by email/username.
func (a Authenticator) LoginWithClaims(ctx context.Context, claims Claims) (*models.User, error) {
	user, ok := a.Users.FindUserByUsername(ctx, claims.Email)
	if !ok {
		return nil, ErrBadCredentials
	}
	if err := CanHoldSession(*user); err != nil {
		return nil, err
	}
	return user, nil
}

func CanHoldSession(user models.User) error {
	if user.Banned {
		return ErrBanned
	}
	if user.Role == models.RoleTeacher && !user.Approved {
		return ErrNotApproved
	}
	return nil
}
