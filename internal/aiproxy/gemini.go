package aiproxy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const systemPrompt = "You are a specialized financial assistant for the MoneyWise app. " +
	"Your goal is to help users with budgeting, savings, and personal finance questions. " +
	"Be concise, polite, and helpful. Do not give investment advice. " +
	"Focus on budgeting, saving money, tracking expenses, and financial planning."

// Turn is one prior message of the conversation as supplied by the caller.
// The proxy is stateless: the relevant history arrives on every request.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces a reply to a message given the preceding conversation.
type Generator interface {
	Generate(ctx context.Context, message string, history []Turn) (string, error)
}

// Gemini is the Generator backed by the Google generative-language API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, message string, history []Turn) (string, error) {
	session := g.model.StartChat()
	session.History = toContents(history)

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", errors.New("empty response from model")
	}

	return text, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

// toContents maps caller roles onto the API's user/model roles. Anything that
// is not a user turn came from the assistant.
func toContents(history []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := "model"
		if turn.Role == "user" {
			role = "user"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}
	return contents
}

func extractText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	return sb.String()
}
