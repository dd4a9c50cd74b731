package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// slotDocument документ коллекции слотов; ключ слота хранится в _id
type slotDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type mongoSlotRepository struct {
	collection *mongo.Collection
}

// NewMongoSlotRepository создает хранилище слотов в MongoDB
// Уникальность ключа обеспечивается _id, дополнительные индексы не нужны
func NewMongoSlotRepository(db *mongo.Database) SlotRepository {
	return &mongoSlotRepository{
		collection: db.Collection("storage_slots"),
	}
}

// Get читает значение слота
func (r *mongoSlotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var doc slotDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to get slot %s: %w", key, err)
	}

	return doc.Value, nil
}

// Set заменяет документ слота целиком (upsert)
func (r *mongoSlotRepository) Set(ctx context.Context, key string, value []byte) error {
	doc := slotDocument{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", key, err)
	}

	return nil
}

// Delete удаляет слот; отсутствие слота ошибкой не считается
func (r *mongoSlotRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

func (r *mongoSlotRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}

func (r *mongoSlotRepository) Driver() string {
	return DriverMongo
}
