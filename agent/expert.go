package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Sender sends a message in a chat session. *genai.Chat implements it.
type Sender interface {
	Send(ctx context.Context, parts ...*genai.Part) (*genai.GenerateContentResponse, error)
}

// Expert represent a chat with a model that can call the functions of its
// Toolbox.
type Expert struct {
	Name      string
	ModelName string
	Config    *genai.GenerateContentConfig
	Tools     Toolbox
	Log       *zap.Logger
	chat      Sender
}

// Start opens the chat session.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	cfg := e.Config
	if cfg == nil {
		cfg = &genai.GenerateContentConfig{}
	}
	if len(e.Tools) > 0 {
		cfg.Tools = append(cfg.Tools, &genai.Tool{FunctionDeclarations: e.Tools.Declarations()})
	}
	chat, err := client.Chats.Create(ctx, e.ModelName, cfg, nil)
	if err != nil {
		return fmt.Errorf("could not start chat with %s: %w", e.ModelName, err)
	}
	e.chat = chat
	return nil
}

// maxCalls bounds the number of function calls answering a single question.
const maxCalls = 8

// Ask sends parts and returns the expert's answer, performing the function
// calls it requests on the way.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	if e.chat == nil {
		return nil, fmt.Errorf("expert %s is not started", e.Name)
	}
	for range maxCalls {
		resp, err := e.chat.Send(ctx, parts...)
		if err != nil {
			return nil, err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return nil, fmt.Errorf("no response from expert %s", e.Name)
		}
		content := resp.Candidates[0].Content

		var calls []*genai.Part
		for _, p := range content.Parts {
			if p.FunctionCall == nil {
				continue
			}
			e.logger().Debug("function call", zap.String("name", p.FunctionCall.Name), zap.Any("args", p.FunctionCall.Args))
			calls = append(calls, &genai.Part{FunctionResponse: e.Tools.Call(ctx, p.FunctionCall)})
		}
		if len(calls) == 0 {
			return content, nil
		}
		// Ask again the expert with the responses it asked for, until we
		// have a real answer.
		parts = calls
	}
	return nil, fmt.Errorf("expert %s made too many function calls", e.Name)
}

func (e *Expert) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// text concatenates the text parts of content.
func text(content *genai.Content) string {
	var s string
	for _, p := range content.Parts {
		s += p.Text
	}
	return s
}
