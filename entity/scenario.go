package entity

// Scenario is one role-play interview topic: the role attributes used to
// phrase the prompts and the ordered prompt sequence itself.
type Scenario struct {
	Destiny  string   `json:"destiny"`
	Relation string   `json:"relation"`
	Gender   string   `json:"gender"`
	Age      int      `json:"age"`
	Prompts  []string `json:"prompts"`
}

// QuestionState builds the initial persisted interview state for the scenario.
func (s *Scenario) QuestionState() *QuestionState {
	question := ""
	if len(s.Prompts) > 0 {
		question = s.Prompts[0]
	}
	return &QuestionState{
		Question: question,
		Destiny:  s.Destiny,
		Relation: s.Relation,
		Gender:   s.Gender,
		Age:      s.Age,
		Symptoms: []string{},
		Prompts:  s.Prompts,
	}
}
