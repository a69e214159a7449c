package scenario

import (
	"context"
	"math/rand"
	"sync"

	"AnamBot/entity"
)

// Script is the deterministic scenario source: a fixed set of role-play
// scenarios with scripted prompt sequences. A scenario is exhausted when all
// of its prompts were answered; there is no other termination rule.
type Script struct {
	mu        sync.Mutex
	rnd       *rand.Rand
	scenarios []entity.Scenario
}

func NewScript(seed int64) *Script {
	return &Script{
		rnd:       rand.New(rand.NewSource(seed)),
		scenarios: scriptedScenarios,
	}
}

// NewScenario returns a copy of one scripted scenario.
func (s *Script) NewScenario(_ context.Context) (*entity.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	picked := s.scenarios[s.rnd.Intn(len(s.scenarios))]
	picked.Prompts = append([]string(nil), picked.Prompts...)
	return &picked, nil
}

var scriptedScenarios = []entity.Scenario{
	{
		Destiny:  "triagem",
		Relation: "paciente",
		Gender:   "feminino",
		Age:      34,
		Prompts: []string{
			"Quais sintomas você está sentindo?",
			"Há quanto tempo os sintomas começaram?",
			"Você sente mais algum sintoma?",
		},
	},
	{
		Destiny:  "clinica-geral",
		Relation: "paciente",
		Gender:   "masculino",
		Age:      58,
		Prompts: []string{
			"O que trouxe você à consulta hoje?",
			"A dor piora em algum momento do dia?",
			"Você já tomou algum medicamento para isso?",
		},
	},
	{
		Destiny:  "pediatria",
		Relation: "responsável",
		Gender:   "feminino",
		Age:      7,
		Prompts: []string{
			"O que a criança está sentindo?",
			"Ela está se alimentando normalmente?",
		},
	},
}
