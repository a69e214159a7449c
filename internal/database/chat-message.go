package repository

import (
	"context"
	"fmt"

	"AnamBot/entity"
)

// SaveChatMessage appends one transcript message.
func (m *MongoDB) SaveChatMessage(ctx context.Context, msg entity.ChatMessage) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)
	if _, err := collection.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("mongodb insert error: %w", err)
	}
	return nil
}
