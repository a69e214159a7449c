package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"AnamBot/bot/chat"
)

type stateDoc struct {
	ConversationKey string    `bson:"conversation_key"`
	Slot            string    `bson:"slot"`
	Payload         []byte    `bson:"payload"`
	Version         string    `bson:"version"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// Get loads one state slot. Absent slots return a nil payload and no error.
func (m *MongoDB) Get(ctx context.Context, conversationKey, slot string) ([]byte, string, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, "", err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(stateCollection)
	filter := bson.D{{Key: "conversation_key", Value: conversationKey}, {Key: "slot", Value: slot}}

	var doc stateDoc
	err = collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", nil
		}
		return nil, "", m.findError(err)
	}
	return doc.Payload, doc.Version, nil
}

// Put writes one state slot under optimistic concurrency. An empty expected
// version inserts (the unique slot index turns a duplicate first-writer into
// a conflict); otherwise the stored version must match or the write is
// rejected with chat.ErrConcurrency.
func (m *MongoDB) Put(ctx context.Context, conversationKey, slot string, payload []byte, expectedVersion string) (string, error) {
	connection, err := m.connect()
	if err != nil {
		return "", err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(stateCollection)
	version := uuid.NewString()

	if expectedVersion == "" {
		_, err = collection.InsertOne(ctx, stateDoc{
			ConversationKey: conversationKey,
			Slot:            slot,
			Payload:         payload,
			Version:         version,
			UpdatedAt:       time.Now(),
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return "", chat.ErrConcurrency
			}
			return "", fmt.Errorf("mongodb insert error: %w", err)
		}
		return version, nil
	}

	filter := bson.D{
		{Key: "conversation_key", Value: conversationKey},
		{Key: "slot", Value: slot},
		{Key: "version", Value: expectedVersion},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "payload", Value: payload},
		{Key: "version", Value: version},
		{Key: "updated_at", Value: time.Now()},
	}}}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return "", fmt.Errorf("mongodb update error: %w", err)
	}
	if result.MatchedCount == 0 {
		return "", chat.ErrConcurrency
	}
	return version, nil
}
