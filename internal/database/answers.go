package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"AnamBot/bot/chat"
	"AnamBot/entity"
)

// Append inserts a new answer record and returns its id. The store does not
// deduplicate; idempotency is the caller's discipline.
func (m *MongoDB) Append(ctx context.Context, rec *entity.AnswerRecord) (string, error) {
	connection, err := m.connect()
	if err != nil {
		return "", err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(answersCollection)

	stored := *rec
	stored.ID = uuid.NewString()
	stored.Token = uuid.NewString()
	stored.CreatedAt = time.Now()

	if _, err = collection.InsertOne(ctx, stored); err != nil {
		return "", fmt.Errorf("mongodb insert error: %w", err)
	}
	return stored.ID, nil
}

// Update overwrites an answer record when the expected concurrency token
// still matches; otherwise chat.ErrConcurrency.
func (m *MongoDB) Update(ctx context.Context, id string, rec *entity.AnswerRecord, expectedToken string) (string, error) {
	connection, err := m.connect()
	if err != nil {
		return "", err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(answersCollection)
	token := uuid.NewString()

	filter := bson.D{{Key: "_id", Value: id}, {Key: "token", Value: expectedToken}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "gender", Value: rec.Gender},
		{Key: "question", Value: rec.Question},
		{Key: "answer", Value: rec.Answer},
		{Key: "destiny", Value: rec.Destiny},
		{Key: "age", Value: rec.Age},
		{Key: "symptoms", Value: rec.Symptoms},
		{Key: "token", Value: token},
	}}}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return "", fmt.Errorf("mongodb update error: %w", err)
	}
	if result.MatchedCount == 0 {
		return "", chat.ErrConcurrency
	}
	return token, nil
}

// List returns captured answer records, newest first.
func (m *MongoDB) List(ctx context.Context, limit int64) ([]entity.AnswerRecord, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(answersCollection)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	defer cursor.Close(ctx)

	var records []entity.AnswerRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("mongodb decode error: %w", err)
	}
	return records, nil
}
