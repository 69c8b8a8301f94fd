package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/authstack/identity-service/internal/core/domain"
)

const activitiesCollection = "activities"

// ActivityRepository persists the audit trail. Documents are only ever
// inserted; the single delete path removes a user's records in bulk.
type ActivityRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{db: db, coll: db.Collection(activitiesCollection)}
}

type activityDoc struct {
	ID        int64     `bson:"_id"`
	UserID    int64     `bson:"user_id"`
	Action    string    `bson:"action"`
	Details   string    `bson:"details,omitempty"`
	IPAddress string    `bson:"ip_address,omitempty"`
	UserAgent string    `bson:"user_agent,omitempty"`
	Timestamp time.Time `bson:"timestamp"`
}

func (d activityDoc) toDomain() domain.Activity {
	return domain.Activity{
		ID:        d.ID,
		UserID:    d.UserID,
		Action:    domain.Action(d.Action),
		Details:   d.Details,
		IPAddress: d.IPAddress,
		UserAgent: d.UserAgent,
		Timestamp: d.Timestamp,
	}
}

func (r *ActivityRepository) Append(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	id, err := nextID(ctx, r.db, "activities")
	if err != nil {
		return nil, err
	}

	doc := activityDoc{
		ID:        id,
		UserID:    activity.UserID,
		Action:    string(activity.Action),
		Details:   activity.Details,
		IPAddress: activity.IPAddress,
		UserAgent: activity.UserAgent,
		Timestamp: activity.Timestamp.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	out := doc.toDomain()
	return &out, nil
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID int64, page, perPage int) ([]domain.Activity, error) {
	return r.list(ctx, bson.M{"user_id": userID}, page, perPage)
}

func (r *ActivityRepository) ListAll(ctx context.Context, page, perPage int) ([]domain.Activity, error) {
	return r.list(ctx, bson.M{}, page, perPage)
}

// list returns newest records first.
func (r *ActivityRepository) list(ctx context.Context, filter bson.M, page, perPage int) ([]domain.Activity, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Activity
	for cur.Next(ctx) {
		var doc activityDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode activity: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return out, nil
}

func (r *ActivityRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete activities: %w", err)
	}
	return nil
}
