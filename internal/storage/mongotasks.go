package storage

import (
	"context"
	"fmt"
	"regexp"

	"github.com/valter-silva-au/skillpulse/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoTaskStore keeps tasks as documents in a MongoDB collection. The task
// ID is the document _id.
type mongoTaskStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoTaskStore connects to MongoDB and returns a TaskStore over the
// configured collection. It creates the (userId, timestamp) index used by
// paginated reads.
func NewMongoTaskStore(ctx context.Context, cfg models.MongoConfig) (TaskStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("creating task index: %w", err)
	}

	return &mongoTaskStore{client: client, coll: coll}, nil
}

func (s *mongoTaskStore) Find(ctx context.Context, q models.TaskQuery) ([]models.Task, error) {
	cur, err := s.coll.Find(ctx, findFilter(q), findOptions(q))
	if err != nil {
		return nil, fmt.Errorf("finding tasks: %w", err)
	}

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}
	return tasks, nil
}

func (s *mongoTaskStore) Insert(ctx context.Context, task models.Task) error {
	if _, err := s.coll.InsertOne(ctx, task); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("inserting task: task %s %w", task.ID, ErrDuplicate)
		}
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (s *mongoTaskStore) Update(ctx context.Context, userID, id string, fields models.TaskFields) error {
	res, err := s.coll.UpdateOne(ctx, ownedFilter(userID, id), bson.M{"$set": bson.M{
		"description": fields.Description,
		"startTime":   fields.StartTime,
		"endTime":     fields.EndTime,
	}})
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("updating task: task %s %w", id, ErrNotFound)
	}
	return nil
}

func (s *mongoTaskStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.coll.DeleteOne(ctx, ownedFilter(userID, id))
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("deleting task: task %s %w", id, ErrNotFound)
	}
	return nil
}

func (s *mongoTaskStore) IDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	cur, err := s.coll.Find(ctx, prefixFilter(prefix), options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("listing task IDs: %w", err)
	}

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding task IDs: %w", err)
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func (s *mongoTaskStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting from mongodb: %w", err)
	}
	return nil
}

func findFilter(q models.TaskQuery) bson.M {
	filter := bson.M{"userId": q.UserID}
	if q.After != "" {
		filter["timestamp"] = bson.M{"$lt": q.After}
	}
	return filter
}

func findOptions(q models.TaskQuery) *options.FindOptions {
	limit := q.Limit
	if limit <= 0 {
		limit = models.DefaultPageLimit
	}
	return options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
}

func ownedFilter(userID, id string) bson.M {
	return bson.M{"_id": id, "userId": userID}
}

func prefixFilter(prefix string) bson.M {
	return bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
}
