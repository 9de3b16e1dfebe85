package blacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"caregate/internal/lifecycle/models"
	id "caregate/pkg/domain"
	"caregate/pkg/platform/sentinel"
)

// MongoStore persists blacklist entries as documents, one per entry.
type MongoStore struct {
	collection *mongo.Collection
}

type entryDocument struct {
	ID         string     `bson:"_id"`
	Email      string     `bson:"email,omitempty"`
	Phone      string     `bson:"phone,omitempty"`
	Licenses   []string   `bson:"licenses,omitempty"`
	Reason     string     `bson:"reason"`
	OriginType string     `bson:"origin_type"`
	OriginID   string     `bson:"origin_id,omitempty"`
	OriginName string     `bson:"origin_name,omitempty"`
	Active     bool       `bson:"active"`
	ExpiresAt  *time.Time `bson:"expires_at,omitempty"`
	CreatedAt  time.Time  `bson:"created_at"`
	CreatedBy  string     `bson:"created_by,omitempty"`
}

// NewMongo binds the store to a collection and ensures its lookup indexes.
func NewMongo(ctx context.Context, db *mongo.Database, collection string) (*MongoStore, error) {
	coll := db.Collection(collection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "phone", Value: 1}, {Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "licenses", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("create blacklist indexes: %w", err)
	}
	return &MongoStore{collection: coll}, nil
}

func (s *MongoStore) Add(ctx context.Context, entry *models.BlacklistEntry) error {
	if entry == nil {
		return fmt.Errorf("blacklist entry is required")
	}
	if _, err := s.collection.InsertOne(ctx, toDocument(entry)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("add blacklist entry: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, entryID id.BlacklistEntryID) (*models.BlacklistEntry, error) {
	var doc entryDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": entryID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get blacklist entry: %w", err)
	}
	return fromDocument(doc)
}

func (s *MongoStore) List(ctx context.Context, includeInactive bool) ([]*models.BlacklistEntry, error) {
	filter := bson.M{}
	if !includeInactive {
		filter["active"] = true
	}
	return s.find(ctx, "list blacklist entries", filter)
}

func (s *MongoStore) FindCandidates(ctx context.Context, creds models.CredentialSet) ([]*models.BlacklistEntry, error) {
	var or bson.A
	if creds.Email != "" {
		or = append(or, bson.M{"email": creds.Email})
	}
	if creds.Phone != "" {
		or = append(or, bson.M{"phone": creds.Phone})
	}
	if len(creds.Licenses) > 0 {
		or = append(or, bson.M{"licenses": bson.M{"$in": creds.Licenses}})
	}
	if len(or) == 0 {
		return nil, nil
	}
	return s.find(ctx, "find blacklist entries", bson.M{"active": true, "$or": or})
}

func (s *MongoStore) Deactivate(ctx context.Context, entryID id.BlacklistEntryID) (bool, error) {
	var before entryDocument
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": entryID.String()},
		bson.M{"$set": bson.M{"active": false}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, sentinel.ErrNotFound
		}
		return false, fmt.Errorf("deactivate blacklist entry: %w", err)
	}
	return before.Active, nil
}

func (s *MongoStore) Delete(ctx context.Context, entryID id.BlacklistEntryID) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": entryID.String()})
	if err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.collection.UpdateMany(ctx,
		bson.M{"active": true, "expires_at": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"active": false}},
	)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired blacklist entries: %w", err)
	}
	return int(res.ModifiedCount), nil
}

func (s *MongoStore) find(ctx context.Context, op string, filter bson.M) ([]*models.BlacklistEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	var docs []entryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]*models.BlacklistEntry, 0, len(docs))
	for _, doc := range docs {
		e, err := fromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func toDocument(e *models.BlacklistEntry) entryDocument {
	return entryDocument{
		ID:         e.ID.String(),
		Email:      e.Fingerprint.Email,
		Phone:      e.Fingerprint.Phone,
		Licenses:   e.Fingerprint.Licenses,
		Reason:     string(e.Reason),
		OriginType: string(e.Origin.EntityType),
		OriginID:   e.Origin.EntityID,
		OriginName: e.Origin.DisplayName,
		Active:     e.Active,
		ExpiresAt:  e.ExpiresAt,
		CreatedAt:  e.CreatedAt,
		CreatedBy:  e.CreatedBy,
	}
}

func fromDocument(doc entryDocument) (*models.BlacklistEntry, error) {
	entryID, err := id.ParseBlacklistEntryID(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("decode blacklist entry id %q: %w", doc.ID, err)
	}
	e := &models.BlacklistEntry{
		ID: entryID,
		Fingerprint: models.CredentialSet{
			Email:    doc.Email,
			Phone:    doc.Phone,
			Licenses: doc.Licenses,
		},
		Reason: models.BlacklistReason(doc.Reason),
		Origin: models.Origin{
			EntityType:  models.EntityType(doc.OriginType),
			EntityID:    doc.OriginID,
			DisplayName: doc.OriginName,
		},
		Active:    doc.Active,
		CreatedAt: doc.CreatedAt,
		CreatedBy: doc.CreatedBy,
	}
	if doc.ExpiresAt != nil {
		t := doc.ExpiresAt.UTC()
		e.ExpiresAt = &t
	}
	return e, nil
}
