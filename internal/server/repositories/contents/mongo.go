package contents

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "contents"

type contentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Type      string             `bson:"type"`
	Category  string             `bson:"category"`
	Body      string             `bson:"body"`
	Summary   *string            `bson:"summary,omitempty"`
	Author    string             `bson:"author,omitempty"`
	Images    []string           `bson:"images,omitempty"`
	Date      time.Time          `bson:"date"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt *time.Time         `bson:"updatedAt,omitempty"`
}

func (d contentDoc) toModel() models.Content {
	return models.Content{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Type:      models.ContentType(d.Type),
		Category:  models.Category(d.Category),
		Body:      d.Body,
		Summary:   d.Summary,
		Author:    d.Author,
		Images:    d.Images,
		Date:      d.Date,
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

// EnsureIndexes creates the indexes used by listings and search.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "type", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "body", Value: "text"}, {Key: "summary", Value: "text"}}},
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, c *models.Content) (*models.Content, error) {
	doc := contentDoc{
		ID:        objectid.New(),
		Title:     c.Title,
		Type:      string(c.Type),
		Category:  string(c.Category),
		Body:      c.Body,
		Summary:   c.Summary,
		Author:    c.Author,
		Images:    c.Images,
		Date:      c.Date,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	c.ID = doc.ID.Hex()
	return c, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id objectid.ID) (*models.Content, error) {
	var doc contentDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	m := doc.toModel()
	return &m, nil
}

func (r *MongoRepository) List(ctx context.Context, q Query) ([]models.Content, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip(int64(q.Skip))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := r.coll.Find(ctx, buildFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]models.Content, 0)
	for cur.Next(ctx) {
		var doc contentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (r *MongoRepository) Count(ctx context.Context, q Query) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, buildFilter(q))
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *MongoRepository) Update(ctx context.Context, id objectid.ID, upd models.ContentUpdate, now time.Time) (bool, error) {
	set := bson.M{"updatedAt": now}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Type != nil {
		set["type"] = string(*upd.Type)
	}
	if upd.Category != nil {
		set["category"] = string(*upd.Category)
	}
	if upd.Body != nil {
		set["body"] = *upd.Body
	}
	if upd.Summary != nil {
		set["summary"] = *upd.Summary
	}
	if upd.Author != nil {
		set["author"] = *upd.Author
	}
	if upd.Images != nil {
		set["images"] = []string(*upd.Images)
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id objectid.ID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func buildFilter(q Query) bson.M {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = string(q.Category)
	}
	if q.Type != "" {
		filter["type"] = string(q.Type)
	}
	if q.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"body": re},
			bson.M{"summary": re},
		}
	}
	return filter
}
