package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taxportal/internal/logging"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/contents"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepositoryManager vends repositories over one MongoDB database.
type MongoRepositoryManager struct {
	client   *mongo.Client
	contents *contents.MongoRepository
	contacts *contacts.MongoRepository
	users    *users.MongoRepository
}

// mongoConnect is a seam for tests.
var mongoConnect = func(ctx context.Context, uri string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

// OpenMongo connects, pings the primary and creates indexes. Index creation
// failures are logged and do not prevent startup.
func OpenMongo(ctx context.Context, uri, database string, logger logging.Logger) (*MongoRepositoryManager, error) {
	client, err := mongoConnect(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m := NewMongoRepositoryManager(client, client.Database(database))
	if err := m.EnsureIndexes(ctx); err != nil {
		logger.Warn(ctx, "index creation failed", "database", database, "error", err)
	}

	logger.Info(ctx, "connected to MongoDB", "database", database)
	return m, nil
}

func NewMongoRepositoryManager(client *mongo.Client, db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		client:   client,
		contents: contents.NewMongoRepository(db),
		contacts: contacts.NewMongoRepository(db),
		users:    users.NewMongoRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection, stopping at the
// first failure.
func (m *MongoRepositoryManager) EnsureIndexes(ctx context.Context) error {
	if err := m.contents.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("%s: %w", contents.CollectionName, err)
	}
	if err := m.contacts.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("%s: %w", contacts.CollectionName, err)
	}
	if err := m.users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("%s: %w", users.CollectionName, err)
	}
	return nil
}

func (m *MongoRepositoryManager) Contents() contents.Repository { return m.contents }
func (m *MongoRepositoryManager) Contacts() contacts.Repository { return m.contacts }
func (m *MongoRepositoryManager) Users() users.Repository       { return m.users }

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
