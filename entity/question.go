package entity

// QuestionState is the persisted progress of one role-play scenario being
// interviewed. Prompts are embedded at synthesis time so the interview can be
// resumed from storage alone, without re-contacting the scenario source.
type QuestionState struct {
	Question    string   `json:"question" bson:"question"`
	Destiny     string   `json:"destiny" bson:"destiny"`
	Relation    string   `json:"relation" bson:"relation"`
	Gender      string   `json:"gender" bson:"gender"`
	Age         int      `json:"age" bson:"age"`
	Symptoms    []string `json:"symptoms" bson:"symptoms"`
	Prompts     []string `json:"prompts" bson:"prompts"`
	PromptIndex int      `json:"prompt_index" bson:"prompt_index"`
}

// Exhausted reports whether every scripted prompt of the scenario was answered.
func (q *QuestionState) Exhausted() bool {
	return q.PromptIndex >= len(q.Prompts)
}
