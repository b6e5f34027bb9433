package sessionRepo

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

// MongoSessionRepo implements SessionRepository using MongoDB.
type MongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo creates a new instance of SessionRepository using MongoDB.
func NewMongoSessionRepo() SessionRepository {
	coll := database.DB().Collection("work_sessions")
	repo := &MongoSessionRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create session indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// Create inserts a new open session. The partial unique index on accountId
// (open sessions only) turns a racing duplicate into a key violation here.
func (r *MongoSessionRepo) Create(session *models.WorkSession) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	session.Open = true
	session.CreatedAt = now
	session.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrActiveExists
		}
		return fmt.Errorf("failed to create work session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by its unique ID.
func (r *MongoSessionRepo) GetByID(id string) (*models.WorkSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var session models.WorkSession
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch session with id %s: %w", id, err)
	}
	return &session, nil
}

// Close transitions an open session to closed in a single conditional
// update; a second concurrent stop finds no open document to match.
func (r *MongoSessionRepo) Close(id string, endTime time.Time, totalHours, totalPayment float64) (*models.WorkSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "open": true}
	update := bson.M{"$set": bson.M{
		"endTime":      endTime,
		"totalHours":   totalHours,
		"totalPayment": totalPayment,
		"open":         false,
		"updatedAt":    time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var session models.WorkSession
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAlreadyClosed
		}
		return nil, fmt.Errorf("failed to close session with id %s: %w", id, err)
	}
	return &session, nil
}

// List retrieves sessions matching the filter, most recent start first.
func (r *MongoSessionRepo) List(filter Filter) ([]models.WorkSession, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	query := bson.M{}
	if filter.TaskerID != "" {
		query["taskerId"] = filter.TaskerID
	}
	if filter.AccountID != "" {
		query["accountId"] = filter.AccountID
	}
	switch filter.Status {
	case StatusActive:
		query["open"] = true
	case StatusCompleted:
		query["open"] = false
	}
	if filter.From != nil || filter.To != nil {
		timeRange := bson.M{}
		if filter.From != nil {
			timeRange["$gte"] = *filter.From
		}
		if filter.To != nil {
			timeRange["$lte"] = *filter.To
		}
		query["startTime"] = timeRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.WorkSession
	for cursor.Next(ctx) {
		var s models.WorkSession
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, cursor.Err()
}
