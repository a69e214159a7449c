package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarioQuestionState(t *testing.T) {
	s := Scenario{
		Destiny:  "triagem",
		Relation: "paciente",
		Gender:   "feminino",
		Age:      34,
		Prompts:  []string{"Quais sintomas você está sentindo?", "Há quanto tempo?"},
	}

	qs := s.QuestionState()
	require.Equal(t, "Quais sintomas você está sentindo?", qs.Question)
	require.Equal(t, "triagem", qs.Destiny)
	require.Zero(t, qs.PromptIndex)
	require.NotNil(t, qs.Symptoms)
	require.Empty(t, qs.Symptoms)
	require.False(t, qs.Exhausted())
}

func TestQuestionStateExhausted(t *testing.T) {
	qs := QuestionState{Prompts: []string{"a", "b"}}

	qs.PromptIndex = 1
	require.False(t, qs.Exhausted())

	qs.PromptIndex = 2
	require.True(t, qs.Exhausted())

	empty := QuestionState{}
	require.True(t, empty.Exhausted())
}

func TestActivityConversationKey(t *testing.T) {
	act := Activity{Channel: "telegram", ConversationID: "42"}
	require.Equal(t, "telegram:42", act.ConversationKey())
}
