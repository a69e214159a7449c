package entity

// ActivityKind classifies an inbound conversational event.
type ActivityKind string

const (
	KindMessage            ActivityKind = "message"
	KindConversationUpdate ActivityKind = "conversationUpdate"
	KindOther              ActivityKind = "other"
)

// ChannelAccount identifies a participant on a channel.
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Activity is one inbound conversational event, normalized across transports.
// The transport guarantees at-least-once delivery and never runs two turns for
// the same conversation concurrently.
type Activity struct {
	Kind           ActivityKind     `json:"kind" validate:"required,oneof=message conversationUpdate other"`
	Channel        string           `json:"channel" validate:"required"`
	ConversationID string           `json:"conversation_id" validate:"required"`
	SenderID       string           `json:"sender_id"`
	SenderName     string           `json:"sender_name"`
	RecipientID    string           `json:"recipient_id"`
	Text           string           `json:"text,omitempty"`
	MembersAdded   []ChannelAccount `json:"members_added,omitempty"`
}

// ConversationKey returns the key scoping all state for this conversation.
func (a Activity) ConversationKey() string {
	return a.Channel + ":" + a.ConversationID
}
