package submissionRepo

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

// MongoSubmissionRepo implements SubmissionRepository using MongoDB.
type MongoSubmissionRepo struct {
	coll *mongo.Collection
}

// NewMongoSubmissionRepo creates a new instance of SubmissionRepository using MongoDB.
func NewMongoSubmissionRepo() SubmissionRepository {
	coll := database.DB().Collection("task_submissions")
	repo := &MongoSubmissionRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create submission indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// Create inserts a new submission document.
func (r *MongoSubmissionRepo) Create(submission *models.TaskSubmission) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	submission.CreatedAt = now
	submission.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, submission); err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// GetByID retrieves a submission by its unique ID.
func (r *MongoSubmissionRepo) GetByID(id string) (*models.TaskSubmission, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var submission models.TaskSubmission
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&submission); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch submission with id %s: %w", id, err)
	}
	return &submission, nil
}

// Review transitions PENDING -> APPROVED|REJECTED in a single conditional
// update; a second concurrent review finds no pending document to match.
func (r *MongoSubmissionRepo) Review(id, status, reviewedBy, reviewNotes string, reviewedAt time.Time) (*models.TaskSubmission, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.SubmissionPending}
	update := bson.M{"$set": bson.M{
		"status":      status,
		"reviewedBy":  reviewedBy,
		"reviewNotes": reviewNotes,
		"reviewedAt":  reviewedAt,
		"updatedAt":   time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var submission models.TaskSubmission
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&submission); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to review submission with id %s: %w", id, err)
	}
	return &submission, nil
}

// List retrieves submissions matching the filter, newest first.
func (r *MongoSubmissionRepo) List(filter Filter) ([]models.TaskSubmission, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	query := bson.M{}
	if filter.TaskerID != "" {
		query["taskerId"] = filter.TaskerID
	}
	if filter.AccountID != "" {
		query["accountId"] = filter.AccountID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.From != nil || filter.To != nil {
		timeRange := bson.M{}
		if filter.From != nil {
			timeRange["$gte"] = *filter.From
		}
		if filter.To != nil {
			timeRange["$lte"] = *filter.To
		}
		query["submittedAt"] = timeRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve submissions: %w", err)
	}
	defer cursor.Close(ctx)

	var submissions []models.TaskSubmission
	for cursor.Next(ctx) {
		var s models.TaskSubmission
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode submission: %w", err)
		}
		submissions = append(submissions, s)
	}
	return submissions, cursor.Err()
}
