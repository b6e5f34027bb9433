package auditRepo

import (
	"context"
	"fmt"
	"time"

	"taskpilot/database"
	"taskpilot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Filter narrows audit listings.
type Filter struct {
	UserID     string
	EntityType string
	Limit      int64
}

// AuditRepository defines methods for the append-only audit log.
type AuditRepository interface {
	// Insert appends an audit entry.
	Insert(entry *models.AuditEntry) error
	// List retrieves entries matching the filter, newest first.
	List(filter Filter) ([]models.AuditEntry, error)
}

// MongoAuditRepo implements AuditRepository using MongoDB.
type MongoAuditRepo struct {
	coll *mongo.Collection
}

// NewMongoAuditRepo creates a new instance of AuditRepository using MongoDB.
func NewMongoAuditRepo() AuditRepository {
	coll := database.DB().Collection("audit_logs")
	repo := &MongoAuditRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create audit indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoAuditRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "entityType", Value: 1}, {Key: "entityId", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Insert appends an audit entry.
func (r *MongoAuditRepo) Insert(entry *models.AuditEntry) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	entry.CreatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// List retrieves entries matching the filter, newest first.
func (r *MongoAuditRepo) List(filter Filter) ([]models.AuditEntry, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	query := bson.M{}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	if filter.EntityType != "" {
		query["entityType"] = filter.EntityType
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.AuditEntry
	for cursor.Next(ctx) {
		var e models.AuditEntry
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, cursor.Err()
}
