package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"AnamBot/entity"
	"AnamBot/internal/lib/sl"
)

const systemPrompt = `Você cria cenários de treino de anamnese. Responda apenas com JSON:
{"destiny": "...", "relation": "...", "gender": "...", "age": 0, "prompts": ["...", "..."]}
destiny é o encaminhamento (ex.: triagem), relation o papel (ex.: paciente),
prompts são de 2 a 4 perguntas abertas sobre sintomas, em português.`

// Generator composes fresh scenarios with OpenAI, falling back to the static
// script on any failure so the interview never blocks on the API.
type Generator struct {
	client   *openai.Client
	model    string
	fallback *Script
	log      *slog.Logger
}

func NewGenerator(apiKey, model string, fallback *Script, log *slog.Logger) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("scenario generator: api key is empty")
	}
	if fallback == nil {
		return nil, fmt.Errorf("scenario generator: fallback script is nil")
	}
	return &Generator{
		client:   openai.NewClient(apiKey),
		model:    model,
		fallback: fallback,
		log:      log.With(sl.Module("scenario.generator")),
	}, nil
}

func (g *Generator) NewScenario(ctx context.Context) (*entity.Scenario, error) {
	scenario, err := g.generate(ctx)
	if err != nil {
		g.log.Warn("falling back to scripted scenario", sl.Err(err))
		return g.fallback.NewScenario(ctx)
	}
	return scenario, nil
}

func (g *Generator) generate(ctx context.Context) (*entity.Scenario, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Gere um novo cenário."},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	var scenario entity.Scenario
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &scenario); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if len(scenario.Prompts) == 0 || scenario.Destiny == "" {
		return nil, fmt.Errorf("generated scenario is incomplete")
	}
	return &scenario, nil
}
