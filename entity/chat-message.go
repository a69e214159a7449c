package entity

import "time"

// ChatMessage represents a single message in an interview transcript.
type ChatMessage struct {
	Channel        string    `json:"channel" bson:"channel"`
	ConversationID string    `json:"conversation_id" bson:"conversation_id"`
	Direction      string    `json:"direction" bson:"direction"` // "incoming" | "outgoing"
	Sender         string    `json:"sender" bson:"sender"`       // "user" | "bot"
	Text           string    `json:"text" bson:"text"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}
