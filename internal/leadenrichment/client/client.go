// Package client runs the extraction agent against the configured
// chat completions provider.
package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/jadu-codes/flow-layer-2/platform/ai/chatcompletion"
	"github.com/jadu-codes/flow-layer-2/platform/config"
)

const appName = "lead-contact-extractor"

// Client sends one prompt per session to the extraction agent.
type Client struct {
	agent          agent.Agent
	runner         *runner.Runner
	sessionService session.Service
}

// New creates an extraction agent without tools. The model is asked for a
// single JSON object per reply.
func New(cfg config.LLMConfig) (*Client, error) {
	llm := chatcompletion.NewModel(chatcompletion.Config{
		APIKey:   cfg.GetLLMAPIKey(),
		BaseURL:  cfg.GetLLMBaseURL(),
		Model:    cfg.GetLLMModel(),
		Timeout:  cfg.GetLLMTimeout(),
		JSONMode: true,
	})

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "LeadContactExtractor",
		Model:       llm,
		Description: "Extracts caller contact details and budget from phone call summaries.",
		Instruction: systemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction runner: %w", err)
	}

	return &Client{
		agent:          adkAgent,
		runner:         r,
		sessionService: sessionService,
	}, nil
}

// Complete runs prompt in a throwaway session and returns the reply text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	sessionID := uuid.NewString()
	userID := "lead-intake"

	_, err := c.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("extraction: create session: %w", err)
	}
	defer func() {
		_ = c.sessionService.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   appName,
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	userMessage := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}
	runConfig := agent.RunConfig{StreamingMode: agent.StreamingModeNone}

	var output strings.Builder
	for event, err := range c.runner.Run(ctx, userID, sessionID, userMessage, runConfig) {
		if err != nil {
			return "", fmt.Errorf("extraction: run failed: %w", err)
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			output.WriteString(part.Text)
		}
	}

	return strings.TrimSpace(output.String()), nil
}

const systemPrompt = `You extract structured contact data from real estate phone call notes.
Reply with ONLY a JSON object with exactly these keys:
{"first_name": string|null, "last_name": string|null, "email": string|null,
 "location": string|null, "budget_min": number|null, "budget_max": number|null}
Rules:
- Use null for anything the caller did not clearly state. Never guess.
- location is the city, neighbourhood or area the caller wants to buy, sell or rent in.
- Budgets are plain numbers in the caller's currency without symbols or thousands separators.
- If only one budget figure is given, use it for budget_max.
- Do not add commentary, markdown or extra keys.`
