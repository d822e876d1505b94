package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "users"

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name"`
	Password  string             `bson:"password"`
	IsAdmin   bool               `bson:"isAdmin"`
	Token     string             `bson:"token,omitempty"`
	LastLogin *time.Time         `bson:"lastLogin,omitempty"`
	Roles     []string           `bson:"roles,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt *time.Time         `bson:"updatedAt,omitempty"`
}

func (d userDoc) toModel() *models.User {
	return &models.User{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Name:      d.Name,
		Password:  d.Password,
		IsAdmin:   d.IsAdmin,
		Token:     d.Token,
		LastLogin: d.LastLogin,
		Roles:     d.Roles,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes makes email unique and token lookups indexed. The token
// index is sparse so users without a session do not collide.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) FindByToken(ctx context.Context, token string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"token": token})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) SetToken(ctx context.Context, userID, token string, at time.Time) error {
	return r.updateByID(ctx, userID, bson.M{"$set": bson.M{"token": token, "lastLogin": at}})
}

func (r *MongoRepository) UnsetToken(ctx context.Context, userID string) error {
	err := r.updateByID(ctx, userID, bson.M{"$unset": bson.M{"token": ""}})
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return err
}

func (r *MongoRepository) UpdatePassword(ctx context.Context, userID, digest string, at time.Time) error {
	return r.updateByID(ctx, userID, bson.M{"$set": bson.M{"password": digest, "updatedAt": at}})
}

func (r *MongoRepository) updateByID(ctx context.Context, userID string, update bson.M) error {
	id, err := objectid.Parse(userID)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) UpsertAdmin(ctx context.Context, email, name, digest string, at time.Time) (*models.User, error) {
	update := bson.M{
		"$set": bson.M{
			"name":      name,
			"password":  digest,
			"isAdmin":   true,
			"roles":     bson.A{models.RoleAdmin},
			"updatedAt": at,
		},
		"$setOnInsert": bson.M{"createdAt": at},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc userDoc
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"email": email}, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}
