package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

var _ ports.EntryRepository = (*EntryRepository)(nil)

// EntryRepository keeps each stream in its own collection: "thoughts" and
// "people_want_to_talk".
type EntryRepository struct {
	db *mongo.Database
}

func NewEntryRepository(db *mongo.Database) *EntryRepository {
	return &EntryRepository{db: db}
}

type entryDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ProfileID string             `bson:"profile_id"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *EntryRepository) collection(stream domain.Stream) (*mongo.Collection, error) {
	switch stream {
	case domain.StreamThought:
		return r.db.Collection(collectionThoughts), nil
	case domain.StreamPeople:
		return r.db.Collection(collectionPeople), nil
	}
	return nil, domain.ErrInvalidStream
}

func (r *EntryRepository) Append(ctx context.Context, e *domain.Entry) (*domain.Entry, error) {
	coll, err := r.collection(e.Stream)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := entryDoc{
		ID:        primitive.NewObjectID(),
		ProfileID: e.ProfileID,
		Content:   e.Content,
		CreatedAt: e.CreatedAt.UTC(),
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return nil, unavailable("insert "+string(e.Stream), err)
	}
	return doc.toDomain(e.Stream), nil
}

// ListByProfile returns entries newest first; _id breaks timestamp ties.
func (r *EntryRepository) ListByProfile(ctx context.Context, profileID string, stream domain.Stream) ([]*domain.Entry, error) {
	coll, err := r.collection(stream)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := coll.Find(ctx, bson.M{"profile_id": profileID}, opts)
	if err != nil {
		return nil, unavailable("list "+string(stream), err)
	}
	var docs []entryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("decode "+string(stream), err)
	}

	out := make([]*domain.Entry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain(stream))
	}
	return out, nil
}

func (d entryDoc) toDomain(stream domain.Stream) *domain.Entry {
	return &domain.Entry{
		ID:        d.ID.Hex(),
		ProfileID: d.ProfileID,
		Stream:    stream,
		Content:   d.Content,
		CreatedAt: d.CreatedAt.UTC(),
	}
}
