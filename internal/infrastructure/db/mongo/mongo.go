package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

const (
	collectionPrincipals = "principals"
	collectionProfiles   = "profiles"
	collectionThoughts   = "thoughts"
	collectionPeople     = "people_want_to_talk"

	indexEmail     = "email_unique"
	indexUsername  = "username_unique"
	indexPrincipal = "principal_unique"
	indexTimeline  = "profile_created"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the unique indexes the registry relies on and the
// timeline index of both entry collections.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := func(field, name string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(name),
		}
	}

	if _, err := db.Collection(collectionPrincipals).Indexes().CreateOne(ctx, unique("email", indexEmail)); err != nil {
		return fmt.Errorf("principals indexes: %w", err)
	}
	if _, err := db.Collection(collectionProfiles).Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique("username", indexUsername),
		unique("principal_id", indexPrincipal),
	}); err != nil {
		return fmt.Errorf("profiles indexes: %w", err)
	}

	timeline := mongo.IndexModel{
		Keys:    bson.D{{Key: "profile_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName(indexTimeline),
	}
	for _, name := range []string{collectionThoughts, collectionPeople} {
		if _, err := db.Collection(name).Indexes().CreateOne(ctx, timeline); err != nil {
			return fmt.Errorf("%s indexes: %w", name, err)
		}
	}
	return nil
}

// duplicateOn reports whether err is a duplicate key error raised by index.
func duplicateOn(err error, index string) bool {
	if !mongo.IsDuplicateKeyError(err) {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if strings.Contains(e.Message, index) {
				return true
			}
		}
		return false
	}
	return strings.Contains(err.Error(), index)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func unavailable(op string, err error) error {
	return domain.Unavailable("mongo "+op, err)
}
