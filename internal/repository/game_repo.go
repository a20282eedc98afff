package repository

import (
	"amiai/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GameRepo archives completed games
type GameRepo interface {
	Insert(ctx context.Context, record *model.GameRecord) error
	ListRecent(ctx context.Context, limit int) ([]model.GameRecord, error)
}

type gameRepo struct {
	collection *mongo.Collection
}

// NewGameRepo creates a Mongo-backed game archive
func NewGameRepo(client *mongo.Client) GameRepo {
	db := client.Database("amiai")
	return &gameRepo{
		collection: db.Collection("games"),
	}
}

func (r *gameRepo) Insert(ctx context.Context, record *model.GameRecord) error {
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *gameRepo) ListRecent(ctx context.Context, limit int) ([]model.GameRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "endedAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []model.GameRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
