//go:build firebase
// +build firebase

package kv

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const firestoreCollection = "kv_documents"

type Firestore struct {
	client *firestore.Client
}

func NewFirestore(ctx context.Context, projectID, credentialsFile string) (Backend, error) {
	if strings.TrimSpace(credentialsFile) == "" {
		return nil, errors.New("firebase credentials file is required")
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, err
	}
	return &Firestore{client: client}, nil
}

func (f *Firestore) docs() *firestore.CollectionRef {
	return f.client.Collection(firestoreCollection)
}

func (f *Firestore) Get(ctx context.Context, key string) ([]byte, error) {
	snap, err := f.docs().Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "kv: firestore get %s", key)
	}
	value, _ := snap.Data()["value"].([]byte)
	return value, nil
}

func (f *Firestore) Set(ctx context.Context, key string, value []byte) error {
	_, err := f.docs().Doc(key).Set(ctx, map[string]interface{}{
		"key":   key,
		"value": value,
	})
	if err != nil {
		return errors.Wrapf(err, "kv: firestore set %s", key)
	}
	return nil
}

func (f *Firestore) Delete(ctx context.Context, key string) error {
	if _, err := f.docs().Doc(key).Delete(ctx); err != nil {
		return errors.Wrapf(err, "kv: firestore delete %s", key)
	}
	return nil
}

func (f *Firestore) Scan(ctx context.Context, prefix string) ([]Pair, error) {
	iter := f.docs().
		Where("key", ">=", prefix).
		Where("key", "<", prefix+"\uf8ff").
		OrderBy("key", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	pairs := []Pair{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "kv: firestore scan %s", prefix)
		}
		data := snap.Data()
		key, _ := data["key"].(string)
		value, _ := data["value"].([]byte)
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	return pairs, nil
}

func (f *Firestore) Ping(ctx context.Context) error {
	_, err := f.docs().Limit(1).Documents(ctx).GetAll()
	return err
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
