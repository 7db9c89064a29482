//go:build !firebase
// +build !firebase

package kv

import (
	"context"

	"github.com/pkg/errors"
)

func NewFirestore(_ context.Context, _, _ string) (Backend, error) {
	return nil, errors.New("firestore backend unavailable in this build; compile backend with -tags firebase")
}
