package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

var _ ports.ProfileRepository = (*ProfileRepository)(nil)

// ProfileRepository stores profiles with unique indexes on the canonical
// username and on the owning principal.
type ProfileRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{coll: db.Collection(collectionProfiles), now: time.Now}
}

type profileDoc struct {
	ID              string    `bson:"_id"`
	PrincipalID     string    `bson:"principal_id"`
	PrincipalEmail  string    `bson:"principal_email"`
	Username        string    `bson:"username"`
	DisplayUsername string    `bson:"display_username"`
	DisplayName     string    `bson:"display_name,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := profileDoc{
		ID:              p.ID,
		PrincipalID:     p.PrincipalID,
		PrincipalEmail:  p.PrincipalEmail,
		Username:        p.Username,
		DisplayUsername: p.DisplayUsername,
		DisplayName:     p.DisplayName,
		CreatedAt:       p.CreatedAt.UTC(),
		UpdatedAt:       p.UpdatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		switch {
		case duplicateOn(err, indexPrincipal):
			return nil, domain.ErrPrincipalRegistered
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrUsernameTaken
		}
		return nil, unavailable("insert profile", err)
	}
	return doc.toDomain(), nil
}

func (r *ProfileRepository) FindByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *ProfileRepository) FindByPrincipal(ctx context.Context, principalID string) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"principal_id": principalID})
}

// Rename rewrites the username of one profile document. Entries reference the
// immutable profile id, so nothing else moves.
func (r *ProfileRepository) Rename(ctx context.Context, profileID, username, displayUsername string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"username":         username,
		"display_username": displayUsername,
		"updated_at":       r.now().UTC(),
	}}
	res, err := r.coll.UpdateByID(ctx, profileID, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, unavailable("rename profile", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrProfileNotFound
	}
	return r.findOne(ctx, bson.M{"_id": profileID})
}

func (r *ProfileRepository) findOne(ctx context.Context, filter bson.M) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc profileDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, unavailable("find profile", err)
	}
	return doc.toDomain(), nil
}

func (d profileDoc) toDomain() *domain.Profile {
	return &domain.Profile{
		ID:              d.ID,
		PrincipalID:     d.PrincipalID,
		PrincipalEmail:  d.PrincipalEmail,
		Username:        d.Username,
		DisplayUsername: d.DisplayUsername,
		DisplayName:     d.DisplayName,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}
