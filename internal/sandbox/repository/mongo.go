package repository

import (
	"context"
	"errors"
	"time"

	"bulkdelete/internal/sandbox/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	Resources *mongo.Collection
}

func NewMongoRepository(db *mongo.Database, collectionName string) *MongoRepository {
	return &MongoRepository{
		Resources: db.Collection(collectionName),
	}
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	idxResourceUnique := mongo.IndexModel{
		Keys:    bson.D{{Key: "resource_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_resource_id"),
	}
	_, err := r.Resources.Indexes().CreateOne(ctx, idxResourceUnique)
	return err
}

func (r *MongoRepository) Seed(ctx context.Context, ids []string, locked bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	now := time.Now()
	models := make([]mongo.WriteModel, 0, len(ids))
	for _, id := range ids {
		// Soft-deleted records are revived. A live record does not match, so its
		// upsert collides with the unique index and is ignored below.
		filter := bson.M{
			"resource_id": id,
			"deleted_at":  bson.M{"$ne": nil},
		}
		update := bson.M{
			"$set": bson.M{
				"resource_id": id,
				"locked":      locked,
				"created_at":  now,
			},
			"$unset": bson.M{
				"deleted_at": "",
			},
		}
		models = append(models, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
	}

	res, err := r.Resources.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if res == nil {
		return 0, err
	}
	created := int(res.UpsertedCount + res.ModifiedCount)
	if err != nil && !onlyDuplicateKeyErrors(err) {
		return created, err
	}
	return created, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*model.Resource, error) {
	filter := bson.M{
		"resource_id": id,
		"deleted_at":  nil,
	}
	var res model.Resource
	err := r.Resources.FindOne(ctx, filter).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	filter := bson.M{
		"resource_id": id,
		"locked":      bson.M{"$ne": true},
		"deleted_at":  nil,
	}
	update := bson.M{
		"$set": bson.M{"deleted_at": time.Now()},
	}

	res, err := r.Resources.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Distinguish a locked live record from a missing one.
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return ErrLocked
}

// onlyDuplicateKeyErrors reports whether a bulk write failed solely because
// some ids were already live.
func onlyDuplicateKeyErrors(err error) bool {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return false
	}
	if bwe.WriteConcernError != nil {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != 11000 {
			return false
		}
	}
	return true
}
