package paymentRepo

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

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	coll *mongo.Collection
}

// NewMongoPaymentRepo creates a new instance of PaymentRepository using MongoDB.
func NewMongoPaymentRepo() PaymentRepository {
	coll := database.DB().Collection("payment_records")
	repo := &MongoPaymentRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create payment indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// Create inserts a new record. The compound unique index on
// (taskerId, periodStart, periodEnd) turns a racing duplicate into a key
// violation here.
func (r *MongoPaymentRepo) Create(record *models.PaymentRecord) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePeriod
		}
		return fmt.Errorf("failed to create payment record: %w", err)
	}
	return nil
}

// GetByID retrieves a record by its unique ID.
func (r *MongoPaymentRepo) GetByID(id string) (*models.PaymentRecord, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var record models.PaymentRecord
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&record); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch payment record with id %s: %w", id, err)
	}
	return &record, nil
}

// GetByPeriod retrieves the record for an exact period triple.
func (r *MongoPaymentRepo) GetByPeriod(taskerID string, periodStart, periodEnd time.Time) (*models.PaymentRecord, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"taskerId":    taskerID,
		"periodStart": periodStart,
		"periodEnd":   periodEnd,
	}
	var record models.PaymentRecord
	if err := r.coll.FindOne(ctx, filter).Decode(&record); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch payment record for tasker %s: %w", taskerID, err)
	}
	return &record, nil
}

// MarkPaid transitions PENDING -> PAID in a single conditional update.
func (r *MongoPaymentRepo) MarkPaid(id string, paidAt time.Time, paidBy string, notes *string) (*models.PaymentRecord, error) {
	set := bson.M{
		"status":    models.PaymentPaid,
		"paidAt":    paidAt,
		"paidBy":    paidBy,
		"updatedAt": time.Now(),
	}
	if notes != nil {
		set["notes"] = *notes
	}
	return r.transition(id, set)
}

// Cancel transitions PENDING -> CANCELLED in a single conditional update.
func (r *MongoPaymentRepo) Cancel(id string, notes *string) (*models.PaymentRecord, error) {
	set := bson.M{
		"status":    models.PaymentCancelled,
		"updatedAt": time.Now(),
	}
	if notes != nil {
		set["notes"] = *notes
	}
	return r.transition(id, set)
}

func (r *MongoPaymentRepo) transition(id string, set bson.M) (*models.PaymentRecord, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.PaymentPending}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record models.PaymentRecord
	if err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&record); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotPending
		}
		return nil, fmt.Errorf("failed to update payment record with id %s: %w", id, err)
	}
	return &record, nil
}

// List retrieves records matching the filter.
func (r *MongoPaymentRepo) List(filter Filter) ([]models.PaymentRecord, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	query := bson.M{}
	if filter.TaskerID != "" {
		query["taskerId"] = filter.TaskerID
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
		query["periodStart"] = timeRange
	}

	sort := bson.D{{Key: "periodStart", Value: -1}}
	if filter.SortPeriodEndAsc {
		sort = bson.D{{Key: "periodEnd", Value: 1}}
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.PaymentRecord
	for cursor.Next(ctx) {
		var p models.PaymentRecord
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode payment record: %w", err)
		}
		records = append(records, p)
	}
	return records, cursor.Err()
}
