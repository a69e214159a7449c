package entity

import "time"

// AnswerRecord is one captured question/answer pair. Immutable once written,
// except through the token-guarded update path of the answer store.
type AnswerRecord struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Gender    string    `json:"gender" bson:"gender"`
	Question  string    `json:"question" bson:"question"`
	Answer    string    `json:"answer" bson:"answer"`
	Destiny   string    `json:"destiny" bson:"destiny"`
	Age       int       `json:"age" bson:"age"`
	Symptoms  []string  `json:"symptoms" bson:"symptoms"`
	Token     string    `json:"token" bson:"token"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
