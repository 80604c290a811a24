package repository

import (
	"context"
	"regexp"
	"strings"
	"time"

	"feedback-backend/internal/database"
	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type FeedbackRepo struct {
	collection *mongo.Collection
}

func NewFeedbackRepo(db *mongo.Database) *FeedbackRepo {
	return &FeedbackRepo{
		collection: db.Collection(database.FeedbackCollection),
	}
}

// liveFilter matches records without a deletion timestamp. A null comparison
// also matches documents where the field is missing.
func liveFilter() bson.M {
	return bson.M{"deleted_at": nil}
}

func scopeFilter(includeDeleted bool) bson.M {
	if includeDeleted {
		return bson.M{}
	}
	return liveFilter()
}

// emailPatternFilter matches live records whose email is one of emails
// (case-insensitive) or ends with "@"+domain for one of domains.
func emailPatternFilter(emails, domains []string) bson.M {
	var or bson.A
	for _, e := range emails {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		or = append(or, bson.M{"email": bson.Regex{Pattern: "^" + regexp.QuoteMeta(e) + "$", Options: "i"}})
	}
	for _, d := range domains {
		d = strings.TrimPrefix(strings.TrimSpace(d), "@")
		if d == "" {
			continue
		}
		or = append(or, bson.M{"email": bson.Regex{Pattern: "@" + regexp.QuoteMeta(d) + "$", Options: "i"}})
	}
	if len(or) == 0 {
		return nil
	}
	return bson.M{"$and": bson.A{liveFilter(), bson.M{"$or": or}}}
}

// maxPrealloc bounds result preallocation. Limits come from query strings, so
// a huge one must not turn into a huge allocation before any row is read.
const maxPrealloc = 100

func capacityHint(limit int64) int64 {
	if limit < 0 {
		return 0
	}
	return min(limit, maxPrealloc)
}

func (r *FeedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	result, err := r.collection.InsertOne(ctx, feedback)
	if err != nil {
		return err
	}
	feedback.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

// ListLive returns live records, newest first.
func (r *FeedbackRepo) ListLive(ctx context.Context, skip, limit int64) ([]models.Feedback, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, liveFilter(), opts)
	if err != nil {
		return nil, err
	}
	feedbacks := make([]models.Feedback, 0, capacityHint(limit))
	if err := cursor.All(ctx, &feedbacks); err != nil {
		return nil, err
	}
	return feedbacks, nil
}

func (r *FeedbackRepo) Count(ctx context.Context, includeDeleted bool) (int64, error) {
	return r.collection.CountDocuments(ctx, scopeFilter(includeDeleted))
}

// Averages computes the mean of every rating dimension. With no matching
// records every average is nil.
func (r *FeedbackRepo) Averages(ctx context.Context, includeDeleted bool) (models.RatingAverages, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: scopeFilter(includeDeleted)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "tool_build_quality", Value: bson.D{{Key: "$avg", Value: "$tool_build_quality"}}},
			{Key: "packaging", Value: bson.D{{Key: "$avg", Value: "$packaging"}}},
			{Key: "on_time_delivery", Value: bson.D{{Key: "$avg", Value: "$on_time_delivery"}}},
			{Key: "after_sales_support", Value: bson.D{{Key: "$avg", Value: "$after_sales_support"}}},
			{Key: "product_usability", Value: bson.D{{Key: "$avg", Value: "$product_usability"}}},
			{Key: "recommendation_score", Value: bson.D{{Key: "$avg", Value: "$recommendation_score"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingAverages{}, err
	}
	var rows []models.RatingAverages
	if err := cursor.All(ctx, &rows); err != nil {
		return models.RatingAverages{}, err
	}
	if len(rows) == 0 {
		return models.RatingAverages{}, nil
	}
	return rows[0], nil
}

// Recent returns the n most recently created records.
func (r *FeedbackRepo) Recent(ctx context.Context, n int64, includeDeleted bool) ([]models.FeedbackSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(n).
		SetProjection(bson.M{
			"contact_name":         1,
			"company_name":         1,
			"recommendation_score": 1,
			"created_at":           1,
		})

	cursor, err := r.collection.Find(ctx, scopeFilter(includeDeleted), opts)
	if err != nil {
		return nil, err
	}
	recent := make([]models.FeedbackSummary, 0, capacityHint(n))
	if err := cursor.All(ctx, &recent); err != nil {
		return nil, err
	}
	return recent, nil
}

// FindLiveByEmail previews the live records a soft delete by email pattern would touch.
func (r *FeedbackRepo) FindLiveByEmail(ctx context.Context, emails, domains []string) ([]models.Feedback, error) {
	filter := emailPatternFilter(emails, domains)
	if filter == nil {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var feedbacks []models.Feedback
	if err := cursor.All(ctx, &feedbacks); err != nil {
		return nil, err
	}
	return feedbacks, nil
}

// SoftDeleteByEmail stamps deleted_at on live records matching the patterns.
func (r *FeedbackRepo) SoftDeleteByEmail(ctx context.Context, emails, domains []string, at time.Time) (int64, error) {
	filter := emailPatternFilter(emails, domains)
	if filter == nil {
		return 0, nil
	}
	result, err := r.collection.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{"deleted_at": at},
	})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// EnsureIndexes creates necessary indexes for the feedbacks collection
func (r *FeedbackRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "deleted_at", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
